package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const seeded = "damerasanthosh2005@gmail.com"

func newTestDB(t *testing.T) (*DB, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("safestreet"),
		tcpostgres.WithUsername("safestreet"),
		tcpostgres.WithPassword("safestreet"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	sqlDB := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = migration.Up(ctx, sqlDB, goose.DialectPostgres, migration.Postgres())
	require.NoError(t, err)

	return NewDB(pool, instrument.NewNoop()), pool
}

func TestDB_Postgres(t *testing.T) {
	repo, pool := newTestDB(t)
	ctx := context.Background()

	t.Run("seeded user without otp", func(t *testing.T) {
		u, err := repo.GetUserByEmail(ctx, seeded)
		require.NoError(t, err)
		assert.Equal(t, "7330985017", u.Mobile)
		assert.Equal(t, "Santhosh", u.Name)
		assert.Equal(t, entity.RoleUser, u.Role)
		assert.False(t, u.OTP.IsSet())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, goerror.ErrNotFound)

		err = repo.UpdateOTP(ctx, "nobody@example.com", entity.OTPSlot{Code: "123456", ExpiresAt: time.Now()})
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("write then compare-and-clear", func(t *testing.T) {
		exp := time.Date(2025, 4, 10, 9, 10, 0, 0, time.UTC)
		require.NoError(t, repo.UpdateOTP(ctx, seeded, entity.OTPSlot{Code: "482913", ExpiresAt: exp}))

		u, err := repo.GetUserByEmail(ctx, seeded)
		require.NoError(t, err)
		assert.Equal(t, "482913", u.OTP.Code)
		assert.True(t, exp.Equal(u.OTP.ExpiresAt))

		ok, err := repo.ClearOTP(ctx, seeded, "000000")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.ClearOTP(ctx, seeded, "482913")
		require.NoError(t, err)
		assert.True(t, ok)

		u, err = repo.GetUserByEmail(ctx, seeded)
		require.NoError(t, err)
		assert.False(t, u.OTP.IsSet())
	})

	t.Run("clear is single use under concurrency", func(t *testing.T) {
		require.NoError(t, repo.UpdateOTP(ctx, seeded, entity.OTPSlot{Code: "111222", ExpiresAt: time.Now().Add(time.Minute)}))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.ClearOTP(ctx, seeded, "111222")
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("half slot is rejected by the schema", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE users SET otp_code = '123456' WHERE email = $1`, seeded)
		assert.Error(t, err)
	})

	t.Run("profile pic and uploads", func(t *testing.T) {
		require.NoError(t, repo.UpdateProfilePic(ctx, seeded, "https://cdn.safestreet.test/profile/a.png"))
		require.NoError(t, repo.IncrementUploads(ctx, seeded, 1))
		require.NoError(t, repo.IncrementUploads(ctx, seeded, 2))

		u, err := repo.GetUserByEmail(ctx, seeded)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.safestreet.test/profile/a.png", u.ProfilePicURL)
		assert.Equal(t, 3, u.TotalUploads)

		assert.ErrorIs(t, repo.IncrementUploads(ctx, "nobody@example.com", 1), goerror.ErrNotFound)
	})
}
