package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

type PhotoUploadedInput struct {
	PhotoID string
	Email   string
}

// ConsumePhotoUploaded counts an upload for its owner. Unknown owners are
// skipped; store failures are returned so the broker redelivers.
func (s *Usecase) ConsumePhotoUploaded(ctx context.Context, in PhotoUploadedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePhotoUploaded")
	defer span.End()

	email := normalizeEmail(in.Email)
	if email == "" {
		slog.WarnContext(ctx, "photo uploaded event without email", "photo_id", in.PhotoID)
		return nil
	}

	err := s.repoDB.IncrementUploads(ctx, email, 1)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "photo uploaded by unknown user", "email", email, "photo_id", in.PhotoID)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo increment uploads", "email", email, "photo_id", in.PhotoID, "error", err)
		return err
	}

	return nil
}
