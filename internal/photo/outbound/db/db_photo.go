package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/safestreet/internal/photo/entity"
)

const (
	queryCreatePhoto = `
INSERT INTO photos (id, user_email, file_path, latitude, longitude, upload_date)
VALUES ($1, $2, $3, $4, $5, $6)`

	queryListPhotos = `
SELECT id, user_email, file_path, latitude, longitude, upload_date
FROM photos
ORDER BY upload_date DESC, id`
)

func (s *DB) CreatePhoto(ctx context.Context, p entity.Photo) (err error) {
	ctx, span := s.startSpan(ctx, "CreatePhoto")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreatePhoto, p.ID, p.UserEmail, p.FilePath, p.Latitude, p.Longitude, p.UploadDate)
	return s.mapError(err)
}

func (s *DB) ListPhotos(ctx context.Context) (_ []entity.Photo, err error) {
	ctx, span := s.startSpan(ctx, "ListPhotos")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, queryListPhotos)
	if err != nil {
		return nil, s.mapError(err)
	}

	photos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Photo, error) {
		var p entity.Photo
		err := row.Scan(&p.ID, &p.UserEmail, &p.FilePath, &p.Latitude, &p.Longitude, &p.UploadDate)
		return p, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return photos, nil
}
