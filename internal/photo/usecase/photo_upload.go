package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
)

//nolint:gochecknoglobals // lookup table
var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type (
	UploadPhotoInput struct {
		File        io.Reader `json:"-" validate:"-"`
		Size        int64     `json:"-"`
		ContentType string    `json:"-"`
		Latitude    string    `json:"latitude" validate:"required,latitude"`
		Longitude   string    `json:"longitude" validate:"required,longitude"`
	}

	UploadPhotoOutput struct {
		ID       string
		FilePath string
	}
)

// UploadPhoto stores the image, records it and announces it on the broker.
// A failed publish is logged only; the photo is already saved.
func (s *Usecase) UploadPhoto(ctx context.Context, in UploadPhotoInput) (*UploadPhotoOutput, error) {
	ctx, span := s.startSpan(ctx, "UploadPhoto")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, entity.ErrUnauthorized
	}

	in.Latitude = strings.TrimSpace(in.Latitude)
	in.Longitude = strings.TrimSpace(in.Longitude)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "photo", "photo is required")
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := photoExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "photo", "photo must be a JPEG, PNG or WebP image")
	}

	lat, lerr := strconv.ParseFloat(in.Latitude, 64)
	lng, gerr := strconv.ParseFloat(in.Longitude, 64)
	if lerr != nil || gerr != nil {
		return nil, goerror.NewInvalidFormat()
	}

	email := clm.Email()
	id := s.uuid.Generate()
	bucket := s.cfg.GetString("modules.photo.bucket")
	key := fmt.Sprintf("photos/%s/%s%s", email, id, ext)

	if _, err := s.storage.Put(ctx, bucket, key, in.File, storage.PutOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata:    map[string]string{"email": email, "photo_id": id},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store photo", "email", email, "error", err)
		return nil, goerror.NewServer(err, "Failed to upload photo")
	}

	photo := entity.Photo{
		ID:         id,
		UserEmail:  email,
		FilePath:   key,
		Latitude:   lat,
		Longitude:  lng,
		UploadDate: s.clock.Now(),
	}

	if err := s.repoDB.CreatePhoto(ctx, photo); err != nil {
		slog.ErrorContext(ctx, "failed to repo create photo", "email", email, "error", err)
		if derr := s.storage.Delete(context.WithoutCancel(ctx), bucket, key); derr != nil {
			slog.WarnContext(ctx, "failed to delete orphan photo", "key", key, "error", derr)
		}
		return nil, goerror.NewServer(err, "Failed to upload photo")
	}

	if err := s.repoMessaging.PublishPhotoUploaded(ctx, photo); err != nil {
		slog.ErrorContext(ctx, "failed to publish photo uploaded", "photo_id", id, "error", err)
	}

	return &UploadPhotoOutput{ID: id, FilePath: key}, nil
}
