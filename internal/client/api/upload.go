package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"time"
)

// File is an upload read from r.
type File struct {
	Name   string
	Reader io.Reader
}

type Photo struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	FilePath   string    `json:"file_path"`
	URL        string    `json:"url,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	UploadDate time.Time `json:"upload_date"`
}

type UploadedPhoto struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
}

func (c *Client) UploadProfilePic(ctx context.Context, token string, f File) (string, error) {
	var out struct {
		ProfilePicURL string `json:"profile_pic_url"`
	}
	_, err := c.postMultipart(ctx, "/api/upload-profile-pic", token, "profilePic", f, nil, &out)
	return out.ProfilePicURL, err
}

func (c *Client) UploadPhoto(ctx context.Context, token string, f File, lat, lng float64) (UploadedPhoto, error) {
	var out UploadedPhoto
	fields := map[string]string{
		"latitude":  strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(lng, 'f', -1, 64),
	}
	_, err := c.postMultipart(ctx, "/api/upload-photo", token, "photo", f, fields, &out)
	return out, err
}

func (c *Client) ListPhotos(ctx context.Context, token string) ([]Photo, error) {
	var out []Photo
	_, err := c.get(ctx, "/api/get-photos", token, nil, &out)
	return out, err
}

func (c *Client) postMultipart(
	ctx context.Context,
	path, token, field string,
	f File,
	fields map[string]string,
	out any,
) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}

	head, err := io.ReadAll(io.LimitReader(f.Reader, 512))
	if err != nil {
		return "", fmt.Errorf("api: read %s: %w", f.Name, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filepath.Base(f.Name)))
	h.Set("Content-Type", contentType(f.Name, head))

	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, io.MultiReader(bytes.NewReader(head), f.Reader)); err != nil {
		return "", fmt.Errorf("api: read %s: %w", f.Name, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req, token, out)
}

func contentType(name string, head []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(head)
}
