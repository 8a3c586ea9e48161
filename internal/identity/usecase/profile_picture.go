package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
)

//nolint:gochecknoglobals // lookup table
var profilePicExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type (
	UploadProfilePicInput struct {
		File        io.Reader
		Size        int64
		ContentType string
	}

	UploadProfilePicOutput struct {
		ProfilePicURL string
	}
)

func (s *Usecase) UploadProfilePic(ctx context.Context, in UploadProfilePicInput) (*UploadProfilePicOutput, error) {
	ctx, span := s.startSpan(ctx, "UploadProfilePic")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, entity.ErrUnauthorized
	}

	if in.File == nil {
		return nil, goerror.NewInvalidInput(nil, "profilePic", "profilePic is required")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := profilePicExt[contentType]
	if !ok {
		return nil, goerror.NewInvalidInput(nil, "profilePic", "profilePic must be a JPEG, PNG, WebP or GIF image")
	}

	email := clm.Email()
	if _, err := s.getUser(ctx, email); err != nil {
		return nil, err
	}

	bucket := s.cfg.GetString("modules.identity.avatar_bucket")
	key := fmt.Sprintf("profile/%s/%s%s", email, s.uuid.Generate(), ext)

	if _, err := s.storage.Put(ctx, bucket, key, in.File, storage.PutOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata:    map[string]string{"email": email},
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store profile picture", "email", email, "error", err)
		return nil, goerror.NewServer(err, "Failed to upload profile picture")
	}

	url := key
	if base := strings.TrimRight(s.cfg.GetString("modules.identity.avatar_base_url"), "/"); base != "" {
		url = base + "/" + key
	}

	if err := s.repoDB.UpdateProfilePic(ctx, email, url); err != nil {
		slog.ErrorContext(ctx, "failed to repo update profile picture", "email", email, "error", err)
		if derr := s.storage.Delete(context.WithoutCancel(ctx), bucket, key); derr != nil {
			slog.WarnContext(ctx, "failed to delete orphan profile picture", "key", key, "error", derr)
		}
		return nil, goerror.NewServer(err, "Failed to upload profile picture")
	}

	return &UploadProfilePicOutput{ProfilePicURL: url}, nil
}
