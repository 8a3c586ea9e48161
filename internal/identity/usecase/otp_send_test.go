package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/lock"
)

const santhosh = "damerasanthosh2005@gmail.com"

func TestSendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("issues code and emails it", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.SendOTP(ctx, SendOTPInput{Email: "  DameraSanthosh2005@Gmail.com "})
		require.NoError(t, err)

		slot := f.repo.slot(santhosh)
		assert.Equal(t, "100000", slot.Code)
		assert.Equal(t, testNow.Add(otpTTL), slot.ExpiresAt)
		assert.Equal(t, slot.Code, f.mail.sent[santhosh])
	})

	t.Run("overwrites previous code", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.repo.UpdateOTP(ctx, santhosh, entity.OTPSlot{Code: "999999", ExpiresAt: testNow.Add(-otpTTL)}))

		require.NoError(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}))
		assert.Equal(t, "100000", f.repo.slot(santhosh).Code)
		assert.Equal(t, testNow.Add(otpTTL), f.repo.slot(santhosh).ExpiresAt)
	})

	t.Run("malformed email is not found", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.SendOTP(ctx, SendOTPInput{Email: "not-an-email"})
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
		assert.Zero(t, f.mail.calls)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newFixture(t)
		requireCode(t, f.uc.SendOTP(ctx, SendOTPInput{Email: "   "}), goerror.CodeInvalidInput)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.SendOTP(ctx, SendOTPInput{Email: "ghost@example.com"})
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
		assert.Zero(t, f.mail.calls)
	})

	t.Run("delivery failure withdraws code", func(t *testing.T) {
		f := newFixture(t)
		f.mail.err = errors.New("smtp: 421 service not available")

		err := f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh})
		gerr := requireCode(t, err, goerror.CodeInternal)
		assert.Equal(t, "Failed to send OTP", gerr.Msg())
		assert.False(t, f.repo.slot(santhosh).IsSet())
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.updateErr = errors.New("connection reset")

		requireCode(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}), goerror.CodeInternal)
		assert.Zero(t, f.mail.calls)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.getErr = errors.New("timeout")

		requireCode(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}), goerror.CodeInternal)
	})

	t.Run("lock busy", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Locker = lockerFunc(func(context.Context, string, func(context.Context) error) error {
				return lock.ErrNotAcquired
			})
		})

		err := f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh})
		assert.ErrorIs(t, err, entity.ErrOTPBusy)
		assert.Zero(t, f.mail.calls)
	})

	t.Run("lock keyed by email", func(t *testing.T) {
		var key string
		f := newFixture(t, func(d *Dependency) {
			d.Locker = lockerFunc(func(ctx context.Context, k string, fn func(context.Context) error) error {
				key = k
				return fn(ctx)
			})
		})

		require.NoError(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}))
		assert.Equal(t, "otp:"+santhosh, key)
	})

	t.Run("lock backend down", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Locker = lockerFunc(func(context.Context, string, func(context.Context) error) error {
				return errors.New("redis: connection refused")
			})
		})

		requireCode(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}), goerror.CodeInternal)
	})

	t.Run("release failure after success", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Locker = lockerFunc(func(ctx context.Context, _ string, fn func(context.Context) error) error {
				if err := fn(ctx); err != nil {
					return err
				}
				return errors.New("redis: release failed")
			})
		})

		assert.NoError(t, f.uc.SendOTP(ctx, SendOTPInput{Email: santhosh}))
	})
}

func TestUnknownEmail_SendAndVerifyAgree(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
	}{
		{"unregistered", "ghost@example.com"},
		{"no at sign", "ghost"},
		{"no domain", "ghost@"},
		{"spaces inside", "gh ost@example.com"},
		{"trailing dot", "ghost@example.com."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			sendErr := f.uc.SendOTP(ctx, SendOTPInput{Email: tt.email})
			_, verifyErr := f.uc.VerifyOTP(ctx, VerifyOTPInput{Email: tt.email, OTP: "123456"})

			assert.ErrorIs(t, sendErr, entity.ErrUserNotFound)
			assert.ErrorIs(t, verifyErr, entity.ErrUserNotFound)
			requireCode(t, sendErr, goerror.CodeNotFound)
			requireCode(t, verifyErr, goerror.CodeNotFound)
			assert.Zero(t, f.mail.calls)
		})
	}
}
