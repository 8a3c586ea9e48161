package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
)

func TestDB_mapError(t *testing.T) {
	s := NewDB(nil, instrument.NewNoop())
	boom := errors.New("boom")

	assert.NoError(t, s.mapError(nil))
	assert.ErrorIs(t, s.mapError(pgx.ErrNoRows), goerror.ErrNotFound)
	assert.ErrorIs(t, s.mapError(&pgconn.PgError{Code: "23505"}), goerror.ErrConflict)
	assert.ErrorIs(t, s.mapError(boom), boom)

	check := &pgconn.PgError{Code: "23514"}
	assert.Equal(t, check, s.mapError(check))
}

func TestDB_affected(t *testing.T) {
	s := NewDB(nil, instrument.NewNoop())

	assert.NoError(t, s.affected(pgconn.NewCommandTag("UPDATE 1"), nil))
	assert.ErrorIs(t, s.affected(pgconn.NewCommandTag("UPDATE 0"), nil), goerror.ErrNotFound)
	assert.ErrorIs(t, s.affected(pgconn.CommandTag{}, pgx.ErrNoRows), goerror.ErrNotFound)
}
