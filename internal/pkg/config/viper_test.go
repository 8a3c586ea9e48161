package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: safestreet
  server:
    cors: "http://localhost:8081, https://safestreet.app,"
modules:
  identity:
    enabled: true
    otp_ttl: 10
    otp_expiry: 600
jwt:
  secret: c2VjcmV0
casbin:
  policies:
    - admin, users, read
    - user, photos, write
storage:
  buckets: "profile:avatars,photo:photos"
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "safestreet", cfg.GetString("app.name"))
	assert.True(t, cfg.GetBool("modules.identity.enabled"))
	assert.Equal(t, 10*time.Minute, cfg.GetMinute("modules.identity.otp_ttl"))
	assert.Equal(t, 600*time.Second, cfg.GetSecond("modules.identity.otp_expiry"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("jwt.secret"))
	assert.Equal(t, []string{"http://localhost:8081", "https://safestreet.app"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"admin, users, read", "user, photos, write"}, cfg.GetArray("casbin.policies"))
	assert.Equal(t, map[string]string{"profile": "avatars", "photo": "photos"}, cfg.GetMap("storage.buckets"))
	assert.Nil(t, cfg.GetArray("missing.key"))
	assert.Empty(t, cfg.GetString("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestViperFromBytes_Errors(t *testing.T) {
	_, err := NewViperFromBytes("", []byte(sample))
	assert.Error(t, err)

	_, err = NewViperFromBytes("yaml", []byte("app: [unterminated"))
	assert.Error(t, err)
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("APP_NAME", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GetString("app.name"))
}

func TestNewViper_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := NewViper(path)
	require.NoError(t, err)
	assert.Equal(t, "safestreet", cfg.GetString("app.name"))

	cfg.SetDefault("app.server.port", 8080)
	assert.Equal(t, 8080, cfg.GetInt("app.server.port"))

	_, err = NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
