package cli

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
)

type Config struct {
	ServerURL   string
	SessionDB   string
	HTTPTimeout time.Duration
}

// LoadConfig reads path when it exists, then the environment (a local .env
// file included). Environment values win.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	var (
		v   *config.Viper
		err error
	)
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		v, err = config.NewViper(path)
	} else {
		v, err = config.NewViperFromBytes("yaml", []byte("{}"))
	}
	if err != nil {
		return Config{}, err
	}

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_db", "safestreet-session.db")
	v.SetDefault("http_timeout", 15)

	return Config{
		ServerURL:   v.GetString("server_url"),
		SessionDB:   v.GetString("session_db"),
		HTTPTimeout: v.GetSecond("http_timeout"),
	}, nil
}
