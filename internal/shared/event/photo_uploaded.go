package event

import "time"

const PhotoUploadedDestination string = "photo.uploaded"
const PhotoUploadedConsumerIdentity string = "photo.uploaded.identity"

// PhotoUploadedMessage is published once a photo is stored and recorded.
type PhotoUploadedMessage struct {
	PhotoID    string    `json:"photo_id"`
	UserEmail  string    `json:"user_email"`
	FilePath   string    `json:"file_path"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UploadDate time.Time `json:"upload_date"`
}
