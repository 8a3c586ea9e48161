package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
)

func TestListPhotos(t *testing.T) {
	t.Run("presigns each photo", func(t *testing.T) {
		f := newFixture(t)
		f.repo.photos = []entity.Photo{
			{ID: "b", FilePath: "photos/b.jpg", UploadDate: testNow.Add(time.Hour)},
			{ID: "a", FilePath: "photos/a.jpg", UploadDate: testNow},
		}

		out, err := f.uc.ListPhotos(context.Background())
		require.NoError(t, err)
		require.Len(t, out.Photos, 2)
		assert.Equal(t, "b", out.Photos[0].ID)
		assert.Equal(t, "memory://photos/photos/b.jpg?expires=15m0s", out.Photos[0].URL)
		assert.Equal(t, "memory://photos/photos/a.jpg?expires=15m0s", out.Photos[1].URL)
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.uc.ListPhotos(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, out.Photos)
		assert.Empty(t, out.Photos)
	})

	t.Run("unsignable photo keeps its record", func(t *testing.T) {
		f := newFixture(t, func(d *Dependency) {
			d.Storage = failingStorage{Storage: storage.NewMemory(), presignErr: storage.ErrMissingSigner}
		})
		f.repo.photos = []entity.Photo{{ID: "a", FilePath: "photos/a.jpg"}}

		out, err := f.uc.ListPhotos(context.Background())
		require.NoError(t, err)
		require.Len(t, out.Photos, 1)
		assert.Empty(t, out.Photos[0].URL)
	})

	t.Run("repo failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.listErr = errors.New("db down")

		_, err := f.uc.ListPhotos(context.Background())
		requireCode(t, err, goerror.CodeInternal)
	})
}
