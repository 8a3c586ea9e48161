package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/safestreet/internal/identity/entity"
)

const queryGetUserByEmail = `
SELECT email, mobile, name, role, created_at, total_uploads, profile_pic_url, otp_code, otp_expires_at
FROM users
WHERE email = $1`

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var (
		u       entity.User
		role    string
		code    pgtype.Text
		expires pgtype.Timestamptz
	)
	err = s.conn.QueryRow(ctx, queryGetUserByEmail, email).Scan(
		&u.Email, &u.Mobile, &u.Name, &role, &u.CreatedAt, &u.TotalUploads, &u.ProfilePicURL, &code, &expires,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	u.Role = entity.Role(role)
	if code.Valid && expires.Valid {
		u.OTP = entity.OTPSlot{Code: code.String, ExpiresAt: expires.Time}
	}
	return &u, nil
}
