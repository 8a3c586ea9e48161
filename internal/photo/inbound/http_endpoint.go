package inbound

import (
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/safestreet/internal/photo/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc  uc
	cfg config.Config
}

// UploadPhoto stores a geotagged photo for the caller.
// @Summary Upload photo
// @Description Stores the image, records its coordinates and publishes photo.uploaded.
// @Tags Photo
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo"
// @Param latitude formData number true "Latitude in [-90, 90]"
// @Param longitude formData number true "Longitude in [-180, 180]"
// @Success 200 {object} router.successResponse{data=UploadPhotoResponse} "Photo uploaded"
// @Failure 400 {object} router.errorResponse "Missing file or invalid coordinates"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Failed to upload photo"
// @Router /api/upload-photo [post]
func (h *HTTPEndpoint) UploadPhoto(r *router.Request) (any, error) {
	ctx := r.Context()

	if err := r.ParseMultipart(int64(h.cfg.GetInt("modules.photo.max_bytes"))); err != nil {
		return nil, err
	}

	file, err := r.FormFile("photo")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	resp, err := h.uc.UploadPhoto(ctx, usecase.UploadPhotoInput{
		File:        file,
		Size:        file.Size,
		ContentType: file.ContentType,
		Latitude:    r.FormString("latitude"),
		Longitude:   r.FormString("longitude"),
	})
	if err != nil {
		return nil, err
	}

	return UploadPhotoResponse{ID: resp.ID, FilePath: resp.FilePath}, nil
}

// ListPhotos returns every photo with a temporary download URL.
// @Summary List photos
// @Description Returns all photos, newest first.
// @Tags Photo
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=[]PhotoResponse} "Photos"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/get-photos [get]
func (h *HTTPEndpoint) ListPhotos(r *router.Request) (any, error) {
	resp, err := h.uc.ListPhotos(r.Context())
	if err != nil {
		return nil, err
	}

	return ListPhotosResponse(lo.Map(resp.Photos, func(p usecase.PhotoItem, _ int) PhotoResponse {
		return PhotoResponse{
			ID:         p.ID,
			UserEmail:  p.UserEmail,
			FilePath:   p.FilePath,
			URL:        p.URL,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			UploadDate: p.UploadDate,
		}
	})), nil
}
