package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	pkgjwt "github.com/shandysiswandi/safestreet/internal/pkg/jwt"
)

func authAs(email, role string) context.Context {
	return pkgjwt.SetAuth(context.Background(), pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		Role:             role,
	})
}

func TestUserDetail(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.UserDetail(context.Background(), UserDetailInput{Email: santhosh})
		assert.ErrorIs(t, err, entity.ErrUnauthorized)
	})

	t.Run("own record", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.uc.UserDetail(authAs(santhosh, "user"), UserDetailInput{Email: "DameraSanthosh2005@gmail.com"})
		require.NoError(t, err)
		assert.Equal(t, "Santhosh", out.User.Name)
		assert.Equal(t, "7330985017", out.User.Mobile)
	})

	t.Run("other record without permission", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.UserDetail(authAs(santhosh, "user"), UserDetailInput{Email: "admin@safestreet.app"})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("admin reads anyone", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.uc.UserDetail(authAs("admin@safestreet.app", "admin"), UserDetailInput{Email: santhosh})
		require.NoError(t, err)
		assert.Equal(t, santhosh, out.User.Email)
	})

	t.Run("admin reads unknown", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.UserDetail(authAs("admin@safestreet.app", "admin"), UserDetailInput{Email: "ghost@example.com"})
		assert.ErrorIs(t, err, entity.ErrUserNotFound)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.UserDetail(authAs(santhosh, "user"), UserDetailInput{})
		requireCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("policy error", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Enforcer = enforceFunc(func(...any) (bool, error) { return false, errors.New("adapter down") })
		})
		_, err := f.uc.UserDetail(authAs(santhosh, "user"), UserDetailInput{Email: "admin@safestreet.app"})
		requireCode(t, err, goerror.CodeInternal)
	})
}
