package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/lock"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
)

var testNow = time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	getErr    error
	updateErr error
	clearErr  error
	picErr    error
	incErr    error

	clearMiss bool
}

func newFakeRepo(users ...entity.User) *fakeRepo {
	r := &fakeRepo{users: map[string]*entity.User{}}
	for i := range users {
		u := users[i]
		r.users[u.Email] = &u
	}
	return r
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) UpdateOTP(_ context.Context, email string, slot entity.OTPSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[email]
	if !ok {
		return goerror.ErrNotFound
	}
	u.OTP = slot
	return nil
}

func (r *fakeRepo) ClearOTP(_ context.Context, email, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clearErr != nil {
		return false, r.clearErr
	}
	if r.clearMiss {
		return false, nil
	}
	u, ok := r.users[email]
	if !ok || u.OTP.Code != code {
		return false, nil
	}
	u.OTP = entity.OTPSlot{}
	return true, nil
}

func (r *fakeRepo) UpdateProfilePic(_ context.Context, email, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.picErr != nil {
		return r.picErr
	}
	r.users[email].ProfilePicURL = url
	return nil
}

func (r *fakeRepo) IncrementUploads(_ context.Context, email string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	u, ok := r.users[email]
	if !ok {
		return goerror.ErrNotFound
	}
	u.TotalUploads += n
	return nil
}

func (r *fakeRepo) slot(email string) entity.OTPSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[email].OTP
}

type fakeMail struct {
	mu    sync.Mutex
	err   error
	sent  map[string]string
	calls int
}

func (m *fakeMail) SendOTP(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[email] = code
	return nil
}

type enforceFunc func(rvals ...any) (bool, error)

func (f enforceFunc) Enforce(rvals ...any) (bool, error) { return f(rvals...) }

type lockerFunc func(ctx context.Context, key string, fn func(context.Context) error) error

func (f lockerFunc) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	return f(ctx, key, fn)
}

type fixture struct {
	uc      *Usecase
	repo    *fakeRepo
	mail    *fakeMail
	clock   *clock.Manual
	jwt     *jwt.Symmetric
	storage *storage.Memory
}

type fixtureOption func(*Dependency)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  identity:
    avatar_bucket: avatars
    avatar_base_url: https://cdn.safestreet.test/
`))
	require.NoError(t, err)

	clk := clock.NewManual(testNow)
	signer, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("s", 64)),
		Issuer: "safestreet",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)

	f := &fixture{
		repo: newFakeRepo(
			entity.User{Email: "damerasanthosh2005@gmail.com", Mobile: "7330985017", Name: "Santhosh", Role: entity.RoleUser},
			entity.User{Email: "admin@safestreet.app", Mobile: "9000000000", Name: "Admin", Role: entity.RoleAdmin},
		),
		mail:    &fakeMail{},
		clock:   clk,
		jwt:     signer,
		storage: storage.NewMemory(),
	}

	dep := Dependency{
		RepoDB:     f.repo,
		RepoMail:   f.mail,
		Locker:     lock.Noop{},
		Validator:  v,
		Config:     cfg,
		Storage:    f.storage,
		UUID:       uid.NewUUID(),
		Clock:      clk,
		JWT:        signer,
		Instrument: instrument.NewNoop(),
		Enforcer: enforceFunc(func(rvals ...any) (bool, error) {
			return rvals[0] == "admin" && rvals[1] == PermUsers && rvals[2] == PermActRead, nil
		}),
		Random: bytes.NewReader(make([]byte, 1024)),
	}
	for _, opt := range opts {
		opt(&dep)
	}
	f.uc = New(dep)
	return f
}

func requireCode(t *testing.T, err error, want goerror.Code) *goerror.Error {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "want *goerror.Error, got %v", err)
	require.Equal(t, want, gerr.Code())
	return gerr
}
