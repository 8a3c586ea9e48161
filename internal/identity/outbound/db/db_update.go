package db

import (
	"context"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
)

const (
	queryUpdateOTP        = `UPDATE users SET otp_code = $2, otp_expires_at = $3 WHERE email = $1`
	queryClearOTP         = `UPDATE users SET otp_code = NULL, otp_expires_at = NULL WHERE email = $1 AND otp_code = $2`
	queryUpdateProfilePic = `UPDATE users SET profile_pic_url = $2 WHERE email = $1`
	queryIncrementUploads = `UPDATE users SET total_uploads = total_uploads + $2 WHERE email = $1`
)

func (s *DB) UpdateOTP(ctx context.Context, email string, slot entity.OTPSlot) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateOTP")
	defer func() { s.endSpan(span, err) }()

	var (
		code    any
		expires any
	)
	if slot.IsSet() {
		code, expires = slot.Code, slot.ExpiresAt
	}

	return s.affected(s.conn.Exec(ctx, queryUpdateOTP, email, code, expires))
}

// ClearOTP is a compare-and-clear: it only empties the slot while it still
// holds code.
func (s *DB) ClearOTP(ctx context.Context, email, code string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ClearOTP")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryClearOTP, email, code)
	if err != nil {
		return false, s.mapError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *DB) UpdateProfilePic(ctx context.Context, email, url string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProfilePic")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, queryUpdateProfilePic, email, url))
}

func (s *DB) IncrementUploads(ctx context.Context, email string, n int) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementUploads")
	defer func() { s.endSpan(span, err) }()

	return s.affected(s.conn.Exec(ctx, queryIncrementUploads, email, n))
}
