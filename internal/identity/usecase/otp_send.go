package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

type SendOTPInput struct {
	Email string `json:"email" validate:"required"`
}

// SendOTP issues a fresh code for a registered user and emails it. Only a
// missing email is rejected up front; any other address that is not on record,
// malformed or not, is reported as not found. The code replaces any previous one. When the email cannot be delivered the new code
// is withdrawn again.
func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) error {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	return s.withOTPLock(ctx, in.Email, func(ctx context.Context) error {
		return s.sendOTP(ctx, in.Email)
	})
}

func (s *Usecase) sendOTP(ctx context.Context, email string) error {
	if _, err := s.getUser(ctx, email); err != nil {
		return err
	}

	code, err := generateOTP(s.random)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	slot := entity.OTPSlot{Code: code, ExpiresAt: s.clock.Now().Add(otpTTL)}
	if err := s.repoDB.UpdateOTP(ctx, email, slot); err != nil {
		slog.ErrorContext(ctx, "failed to repo update otp", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMail.SendOTP(ctx, email, code); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", email, "error", err)

		if _, cerr := s.repoDB.ClearOTP(context.WithoutCancel(ctx), email, code); cerr != nil {
			slog.ErrorContext(ctx, "failed to withdraw undelivered otp", "email", email, "error", cerr)
		}
		return goerror.NewServer(err, "Failed to send OTP")
	}

	slog.InfoContext(ctx, "otp sent", "email", email, "expires_at", slot.ExpiresAt)
	return nil
}
