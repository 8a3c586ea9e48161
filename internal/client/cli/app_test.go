package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/safestreet/internal/client/api"
	"github.com/shandysiswandi/safestreet/internal/client/otpflow"
	"github.com/shandysiswandi/safestreet/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []string
	verified []string
	tokens   []string
	uploads  []float64
	userErr  error
}

func (f *fakeAPI) SendOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	if email == "ghost@b.co" {
		return &api.Error{Status: http.StatusNotFound, Message: "User not found"}
	}
	return nil
}

func (f *fakeAPI) VerifyOTP(_ context.Context, _, otp string) (api.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, otp)
	if otp != "123456" {
		return api.Token{}, &api.Error{Status: http.StatusBadRequest, Message: "Invalid OTP"}
	}
	return api.Token{AccessToken: "jwt", TokenType: "Bearer", ExpiresIn: 86400}, nil
}

func (f *fakeAPI) GetUser(_ context.Context, token, email string) (api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.userErr != nil {
		return api.User{}, f.userErr
	}
	return api.User{Email: email, Mobile: "+919876543210", Name: "Santhosh", Role: "user", TotalUploads: 2}, nil
}

func (f *fakeAPI) UploadProfilePic(context.Context, string, api.File) (string, error) {
	return "https://cdn.example/p.jpg", nil
}

func (f *fakeAPI) UploadPhoto(_ context.Context, _ string, _ api.File, lat, lng float64) (api.UploadedPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, lat, lng)
	return api.UploadedPhoto{ID: "photo-1"}, nil
}

func (f *fakeAPI) ListPhotos(context.Context, string) ([]api.Photo, error) {
	return []api.Photo{{ID: "photo-1", UserEmail: "a@b.co", Latitude: 17.385, Longitude: 78.4867, UploadDate: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)}}, nil
}

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func newApp(t *testing.T, fa *fakeAPI, input string) (*App, *session.Manager, *bytes.Buffer) {
	t.Helper()

	store, err := session.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sessions := session.NewManager(store)
	out := &bytes.Buffer{}
	app := New(Options{
		API:       fa,
		Sessions:  sessions,
		In:        strings.NewReader(input),
		Out:       out,
		NewTicker: func(time.Duration) otpflow.Ticker { return idleTicker{} },
	})
	return app, sessions, out
}

func TestRun_LoginVerifyLogout(t *testing.T) {
	fa := &fakeAPI{}
	app, sessions, out := newApp(t, fa, strings.Join([]string{
		"a@b.co", "+919876543210",
		"111111",
		"verify 123456",
		"logout",
		"exit",
	}, "\n")+"\n")

	require.NoError(t, app.Run(context.Background()))

	text := out.String()
	assert.Equal(t, []string{"a@b.co"}, fa.sent)
	assert.Equal(t, []string{"111111", "123456"}, fa.verified)
	assert.Contains(t, text, "Error: Invalid OTP")
	assert.Contains(t, text, "OTP verified successfully")
	assert.Contains(t, text, "Name:    Santhosh")
	assert.Contains(t, text, "Logged out.")
	assert.Contains(t, text, "Bye!")
	assert.Equal(t, []string{"jwt"}, fa.tokens)

	_, ok := sessions.Current()
	assert.False(t, ok)
}

type readOnlyStore struct{}

func (readOnlyStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (readOnlyStore) Set(context.Context, string, string) error         { return errors.New("disk I/O error") }
func (readOnlyStore) Remove(context.Context, string) error              { return nil }

func TestRun_SessionNotSavedOffersResend(t *testing.T) {
	fa := &fakeAPI{}
	out := &bytes.Buffer{}
	app := New(Options{
		API:       fa,
		Sessions:  session.NewManager(readOnlyStore{}),
		In:        strings.NewReader("a@b.co\n+919876543210\n123456\n123456\nresend\nexit\n"),
		Out:       out,
		NewTicker: func(time.Duration) otpflow.Ticker { return idleTicker{} },
	})

	require.NoError(t, app.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "The code was accepted but your session could not be saved. Type 'resend' for a new code.")
	assert.NotContains(t, text, "OTP verified successfully")
	assert.Equal(t, []string{"123456"}, fa.verified)
	assert.Equal(t, []string{"a@b.co", "a@b.co"}, fa.sent)
	assert.Contains(t, text, "OTP sent successfully. Check your inbox.")
}

func TestRun_PersistedSessionSkipsLogin(t *testing.T) {
	fa := &fakeAPI{}
	app, sessions, out := newApp(t, fa, "photos\nexit\n")
	require.NoError(t, sessions.Login(context.Background(), session.Auth{Email: "a@b.co", Mobile: "+91", Token: "stored"}))

	require.NoError(t, app.Run(context.Background()))

	assert.Empty(t, fa.sent)
	assert.Equal(t, []string{"stored"}, fa.tokens)
	assert.Contains(t, out.String(), "Uploads: 2")
	assert.Contains(t, out.String(), "2026-01-02 03:04  a@b.co  (17.38500, 78.48670)")
	assert.NotContains(t, out.String(), "Log in with")
}

func TestRun_LoginRequiresEmailAndMobile(t *testing.T) {
	fa := &fakeAPI{}
	app, _, out := newApp(t, fa, "a@b.co\n\nexit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Email and mobile are required")
	assert.Empty(t, fa.sent)
}

func TestRun_SendFailureStaysOnLogin(t *testing.T) {
	fa := &fakeAPI{}
	app, _, out := newApp(t, fa, "ghost@b.co\n+1\nexit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Error: User not found")
	assert.NotContains(t, out.String(), "otp ")
}

func TestRun_BackReturnsToLogin(t *testing.T) {
	fa := &fakeAPI{}
	app, sessions, out := newApp(t, fa, "a@b.co\n+91\nresend\nback\nexit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Log in with"))
	assert.Contains(t, out.String(), "You can request a new code in 1:00.")
	assert.Equal(t, []string{"a@b.co"}, fa.sent)
	assert.Empty(t, fa.verified)
	_, ok := sessions.Current()
	assert.False(t, ok)
}

func TestRun_ExpiredTokenLogsOut(t *testing.T) {
	fa := &fakeAPI{userErr: &api.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}}
	app, sessions, out := newApp(t, fa, "exit\n")
	require.NoError(t, sessions.Login(context.Background(), session.Auth{Email: "a@b.co", Mobile: "+91", Token: "old"}))

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Your session has expired")
	_, ok, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRun_Upload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "street.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff"), 0o600))

	fa := &fakeAPI{}
	app, sessions, out := newApp(t, fa, "upload "+path+"\nupload "+path+" 17.385 78.4867\navatar "+path+"\nexit\n")
	require.NoError(t, sessions.Login(context.Background(), session.Auth{Email: "a@b.co", Mobile: "+91", Token: "jwt"}))

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Usage: upload <file> <latitude> <longitude>")
	assert.Contains(t, out.String(), "Photo uploaded successfully (photo-1)")
	assert.Contains(t, out.String(), "Profile picture uploaded: https://cdn.example/p.jpg")
	assert.Equal(t, []float64{17.385, 78.4867}, fa.uploads)
}

func TestRun_EOF(t *testing.T) {
	app, _, out := newApp(t, &fakeAPI{}, "")

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Bye!")
}

func TestOnTick(t *testing.T) {
	out := &bytes.Buffer{}
	a := &App{out: &lockedWriter{w: out}}

	a.onTick(30)
	assert.Empty(t, out.String())

	a.tty = true
	a.onTick(30)
	assert.Contains(t, out.String(), "otp 0:30 > ")

	a.onTick(0)
	assert.Contains(t, out.String(), "The code has expired")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: http://api.test\nhttp_timeout: 3\n"), 0o600))
	t.Setenv("SESSION_DB", "/tmp/s.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{ServerURL: "http://api.test", SessionDB: "/tmp/s.db", HTTPTimeout: 3 * time.Second}, cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
}
