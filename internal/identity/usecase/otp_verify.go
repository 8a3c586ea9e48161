package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
)

type (
	VerifyOTPInput struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}

	VerifyOTPOutput struct {
		AccessToken string
		TokenType   string
		ExpiresIn   int64
	}
)

// VerifyOTP consumes the user's code. The code is compared verbatim; an
// expired code is reported only when it matches.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if in.Email == "" || in.OTP == "" {
		return nil, goerror.NewInvalidFormat("Email and OTP are required")
	}

	var token jwt.Token
	err := s.withOTPLock(ctx, in.Email, func(ctx context.Context) error {
		var err error
		token, err = s.consumeOTP(ctx, in.Email, in.OTP)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &VerifyOTPOutput{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int64(token.ExpiresAt.Sub(s.clock.Now()).Seconds()),
	}, nil
}

// consumeOTP signs the access token before clearing the slot, so a signing
// failure leaves the code usable.
func (s *Usecase) consumeOTP(ctx context.Context, email, code string) (jwt.Token, error) {
	user, err := s.getUser(ctx, email)
	if err != nil {
		return jwt.Token{}, err
	}

	if !user.OTP.Matches(code) {
		slog.WarnContext(ctx, "otp mismatch", "email", email)
		return jwt.Token{}, entity.ErrOTPInvalid
	}
	if user.OTP.ExpiredAt(s.clock.Now()) {
		slog.WarnContext(ctx, "otp expired", "email", email, "expires_at", user.OTP.ExpiresAt)
		return jwt.Token{}, entity.ErrOTPExpired
	}

	token, err := s.jwt.Generate(jwt.Identity{
		Email:  user.Email,
		Mobile: user.Mobile,
		Role:   user.Role.String(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "email", email, "error", err)
		return jwt.Token{}, goerror.NewServer(err)
	}

	cleared, err := s.repoDB.ClearOTP(ctx, email, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo clear otp", "email", email, "error", err)
		return jwt.Token{}, goerror.NewServer(err)
	}
	if !cleared {
		slog.WarnContext(ctx, "otp consumed concurrently", "email", email)
		return jwt.Token{}, entity.ErrOTPInvalid
	}

	return token, nil
}
