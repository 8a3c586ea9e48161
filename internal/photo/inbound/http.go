package inbound

import (
	"context"

	"github.com/shandysiswandi/safestreet/internal/photo/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
)

const (
	PermPhotos   = "photos"
	PermActRead  = "read"
	PermActWrite = "write"
)

type uc interface {
	UploadPhoto(ctx context.Context, in usecase.UploadPhotoInput) (*usecase.UploadPhotoOutput, error)
	ListPhotos(ctx context.Context) (*usecase.ListPhotosOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, cfg config.Config, uc uc) {
	end := &HTTPEndpoint{uc: uc, cfg: cfg}

	// need authenticated & authorization
	r.POST("/api/upload-photo", end.UploadPhoto, r.Authorize(PermPhotos, PermActWrite))
	r.GET("/api/get-photos", end.ListPhotos, r.Authorize(PermPhotos, PermActRead))
}
