package app

import (
	"testing"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	rules, err := parseRules([]string{"admin, users, read", " user,photos,* "}, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"admin", "users", "read"}, {"user", "photos", "*"}}, rules)

	_, err = parseRules([]string{"admin, users"}, 3)
	assert.ErrorContains(t, err, "want 3 fields")

	_, err = parseRules([]string{"admin, , read"}, 3)
	assert.ErrorContains(t, err, "empty field")

	rules, err = parseRules(nil, 2)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRBACModel(t *testing.T) {
	m, err := model.NewModelFromString(rbacModel)
	require.NoError(t, err)
	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)

	policies, err := parseRules([]string{"admin, *, *", "user, photos, read", "user, photos, write"}, 3)
	require.NoError(t, err)
	_, err = e.AddPolicies(policies)
	require.NoError(t, err)

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"admin", "users", "read", true},
		{"user", "photos", "write", true},
		{"user", "users", "read", false},
		{"guest", "photos", "read", false},
	}
	for _, tt := range tests {
		ok, err := e.Enforce(tt.sub, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "%s %s %s", tt.sub, tt.obj, tt.act)
	}
}
