package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
)

const (
	PermUsers   = "users"
	PermActRead = "read"
)

type (
	UserDetailInput struct {
		Email string `json:"email" validate:"required"`
	}

	UserDetailOutput struct {
		User entity.User
	}
)

// UserDetail returns a user record. Callers read their own record freely;
// reading someone else's needs the users:read permission.
func (s *Usecase) UserDetail(ctx context.Context, in UserDetailInput) (*UserDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, entity.ErrUnauthorized
	}

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Email != clm.Email() {
		ok, err := s.enforcer.Enforce(clm.Role, PermUsers, PermActRead)
		if err != nil {
			slog.ErrorContext(ctx, "failed to enforce policy", "role", clm.Role, "error", err)
			return nil, goerror.NewServer(err)
		}
		if !ok {
			slog.WarnContext(ctx, "user detail denied", "caller", clm.Email(), "email", in.Email)
			return nil, entity.ErrForbidden
		}
	}

	user, err := s.getUser(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	return &UserDetailOutput{User: *user}, nil
}
