package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/lock"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateOTP writes both fields of the slot, replacing any previous code.
	UpdateOTP(ctx context.Context, email string, slot entity.OTPSlot) error
	// ClearOTP empties the slot only while it still holds code and reports
	// whether it did.
	ClearOTP(ctx context.Context, email, code string) (bool, error)
	UpdateProfilePic(ctx context.Context, email, url string) error
	IncrementUploads(ctx context.Context, email string, n int) error
}

type repoMail interface {
	SendOTP(ctx context.Context, email, code string) error
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB    repoDB
	repoMail  repoMail
	locker    lock.Locker
	validator validator.Validator
	cfg       config.Config
	storage   storage.Storage
	uuid      uid.StringID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
	enforcer  enforcer
	random    io.Reader
}

type Dependency struct {
	RepoDB     repoDB
	RepoMail   repoMail
	Locker     lock.Locker
	Validator  validator.Validator
	Config     config.Config
	Storage    storage.Storage
	UUID       uid.StringID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Enforcer   enforcer

	// Random feeds OTP generation. Defaults to crypto/rand.
	Random io.Reader
}

func New(dep Dependency) *Usecase {
	random := dep.Random
	if random == nil {
		random = rand.Reader
	}
	locker := dep.Locker
	if locker == nil {
		locker = lock.Noop{}
	}

	return &Usecase{
		repoDB:    dep.RepoDB,
		repoMail:  dep.RepoMail,
		locker:    locker,
		validator: dep.Validator,
		cfg:       dep.Config,
		storage:   dep.Storage,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
		enforcer:  dep.Enforcer,
		random:    random,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// getUser maps a missing row to ErrUserNotFound and anything else to a
// server error.
func (s *Usecase) getUser(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "email", email)
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}
	return user, nil
}

// withOTPLock serializes OTP mutations of one email. Errors from fn are
// returned unchanged.
func (s *Usecase) withOTPLock(ctx context.Context, email string, fn func(ctx context.Context) error) error {
	var (
		ran   bool
		fnErr error
	)
	err := s.locker.WithLock(ctx, "otp:"+email, func(ctx context.Context) error {
		ran = true
		fnErr = fn(ctx)
		return fnErr
	})
	switch {
	case ran && fnErr != nil:
		return fnErr
	case ran && err != nil:
		// fn already succeeded; an unreleased key expires on its own
		slog.WarnContext(ctx, "failed to release otp lock", "email", email, "error", err)
		return nil
	case errors.Is(err, lock.ErrNotAcquired):
		slog.WarnContext(ctx, "otp lock is busy", "email", email)
		return entity.ErrOTPBusy
	case err != nil:
		slog.ErrorContext(ctx, "failed to acquire otp lock", "email", email, "error", err)
		return goerror.NewServer(err)
	}
	return nil
}
