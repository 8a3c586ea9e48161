package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: invalid signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

// Identity is what a token vouches for.
type Identity struct {
	Email  string
	Mobile string
	Role   string
}

// Token is a signed token and the moment it stops being valid.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// JWT generates and verifies access tokens.
type JWT interface {
	Generate(id Identity) (Token, error)
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config builds a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Claims are the registered claims plus the session fields the client
// persists. Subject holds the email.
type Claims struct {
	jwt.RegisteredClaims
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
}

// Email returns the subject.
func (c Claims) Email() string { return c.Subject }

type authKey struct{}

// SetAuth stores verified claims in ctx.
func SetAuth(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, authKey{}, c)
}

// GetAuth returns the claims stored by SetAuth, or nil.
func GetAuth(ctx context.Context) *Claims {
	c, ok := ctx.Value(authKey{}).(Claims)
	if !ok {
		return nil
	}
	return &c
}
