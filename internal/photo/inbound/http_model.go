package inbound

import "time"

type UploadPhotoResponse struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
}

func (UploadPhotoResponse) Message() string { return "Photo uploaded successfully" }

type PhotoResponse struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	FilePath   string    `json:"file_path"`
	URL        string    `json:"url,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UploadDate time.Time `json:"upload_date"`
}

type ListPhotosResponse []PhotoResponse

func (ListPhotosResponse) Message() string { return "Photos fetched successfully" }
