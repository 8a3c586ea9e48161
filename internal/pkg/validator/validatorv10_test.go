package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Email     string  `json:"email" validate:"required,email"`
	Mobile    string  `json:"mobile" validate:"required,mobile"`
	Latitude  float64 `form:"latitude" validate:"latitude"`
	UserAgent string  `validate:"omitempty,max=3"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(loginForm{Email: "user@example.com", Mobile: "+917330985017", Latitude: 17.38}))
	})

	t.Run("field names follow tags", func(t *testing.T) {
		err := v.Validate(loginForm{Mobile: "12", Latitude: 123, UserAgent: "curl/8"})

		var verr V10ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "email is a required field", verr.Values()["email"])
		assert.Equal(t, "mobile must be a mobile number of 10 to 15 digits", verr.Values()["mobile"])
		assert.Contains(t, verr.Values(), "latitude")
		assert.Contains(t, verr.Values(), "user_agent")
		assert.Contains(t, verr.Error(), `"email"`)
	})

	t.Run("non struct", func(t *testing.T) {
		assert.Error(t, v.Validate("nope"))
	})
}

func TestV10ValidationError_Empty(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
}
