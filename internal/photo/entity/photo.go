package entity

import (
	"time"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

// Photo is a geotagged report uploaded by a user. FilePath is the object key
// in the photo bucket.
type Photo struct {
	ID         string
	UserEmail  string
	FilePath   string
	Latitude   float64
	Longitude  float64
	UploadDate time.Time
}

var ErrUnauthorized = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
