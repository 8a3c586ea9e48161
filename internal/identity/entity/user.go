package entity

import (
	"crypto/subtle"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string { return string(r) }

// OTPSlot is the single outstanding code of a user. Code and ExpiresAt are
// both set or both zero.
type OTPSlot struct {
	Code      string
	ExpiresAt time.Time
}

func (s OTPSlot) IsSet() bool {
	return s.Code != "" && !s.ExpiresAt.IsZero()
}

// Matches reports exact equality with the stored code.
func (s OTPSlot) Matches(code string) bool {
	if !s.IsSet() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Code), []byte(code)) == 1
}

// ExpiredAt reports whether now is past the expiry. The expiry instant
// itself is still valid.
func (s OTPSlot) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type User struct {
	Email         string
	Mobile        string
	Name          string
	Role          Role
	CreatedAt     time.Time
	TotalUploads  int
	ProfilePicURL string
	OTP           OTPSlot
}
