package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

type (
	PhotoItem struct {
		entity.Photo
		URL string
	}

	ListPhotosOutput struct {
		Photos []PhotoItem
	}
)

// ListPhotos returns all photos, newest first, each with a presigned read
// URL. A photo whose URL cannot be signed is returned without one.
func (s *Usecase) ListPhotos(ctx context.Context) (*ListPhotosOutput, error) {
	ctx, span := s.startSpan(ctx, "ListPhotos")
	defer span.End()

	photos, err := s.repoDB.ListPhotos(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list photos", "error", err)
		return nil, goerror.NewServer(err)
	}

	bucket := s.cfg.GetString("modules.photo.bucket")
	expiry := s.cfg.GetMinute("modules.photo.url_ttl")

	items := make([]PhotoItem, 0, len(photos))
	for _, p := range photos {
		url, err := s.storage.PresignGet(ctx, bucket, p.FilePath, expiry)
		if err != nil {
			slog.WarnContext(ctx, "failed to presign photo url", "photo_id", p.ID, "error", err)
		}
		items = append(items, PhotoItem{Photo: p, URL: url})
	}

	return &ListPhotosOutput{Photos: items}, nil
}
