package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	pkgjwt "github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
)

const santhosh = "damerasanthosh2005@gmail.com"

var testNow = time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	photos    []entity.Photo
	createErr error
	listErr   error
}

func (r *fakeRepo) CreatePhoto(_ context.Context, p entity.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.photos = append(r.photos, p)
	return nil
}

func (r *fakeRepo) ListPhotos(context.Context) ([]entity.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]entity.Photo(nil), r.photos...), nil
}

type fakePublisher struct {
	err       error
	published []entity.Photo
}

func (p *fakePublisher) PublishPhotoUploaded(_ context.Context, photo entity.Photo) error {
	p.published = append(p.published, photo)
	return p.err
}

type seqID struct{ n int }

func (s *seqID) Generate() string {
	s.n++
	return "photo-" + strconv.Itoa(s.n)
}

type failingStorage struct {
	storage.Storage
	presignErr error
}

func (f failingStorage) PresignGet(context.Context, string, string, time.Duration) (string, error) {
	return "", f.presignErr
}

type fixture struct {
	uc      *Usecase
	repo    *fakeRepo
	pub     *fakePublisher
	clock   *clock.Manual
	storage *storage.Memory
}

func newFixture(t *testing.T, opts ...func(*Dependency)) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  photo:
    bucket: photos
    url_ttl: 15
`))
	require.NoError(t, err)

	f := &fixture{
		repo:    &fakeRepo{},
		pub:     &fakePublisher{},
		clock:   clock.NewManual(testNow),
		storage: storage.NewMemory(),
	}

	dep := Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.pub,
		Validator:     v,
		Config:        cfg,
		Storage:       f.storage,
		UUID:          &seqID{},
		Clock:         f.clock,
		Instrument:    instrument.NewNoop(),
	}
	for _, opt := range opts {
		opt(&dep)
	}
	f.uc = New(dep)
	return f
}

func authAs(email string) context.Context {
	return pkgjwt.SetAuth(context.Background(), pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
		Role:             "user",
	})
}

func requireCode(t *testing.T, err error, want goerror.Code) *goerror.Error {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "want *goerror.Error, got %v", err)
	require.Equal(t, want, gerr.Code())
	return gerr
}
