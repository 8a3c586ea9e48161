package inbound

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/photo/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
)

type fakeUC struct {
	uploadIn  usecase.UploadPhotoInput
	body      []byte
	uploadErr error
	list      []usecase.PhotoItem
	listErr   error
}

func (f *fakeUC) UploadPhoto(_ context.Context, in usecase.UploadPhotoInput) (*usecase.UploadPhotoOutput, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, err := io.ReadAll(in.File)
	if err != nil {
		return nil, err
	}
	f.uploadIn, f.body = in, b
	return &usecase.UploadPhotoOutput{ID: "p-1", FilePath: "photos/p-1.jpg"}, nil
}

func (f *fakeUC) ListPhotos(context.Context) (*usecase.ListPhotosOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &usecase.ListPhotosOutput{Photos: f.list}, nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (jwt.Claims, error) {
	c := jwt.Claims{Role: token}
	c.Subject = "damerasanthosh2005@gmail.com"
	return c, nil
}

type stubEnforcer struct{}

func (stubEnforcer) Enforce(rvals ...any) (bool, error) {
	return rvals[0] == "user", nil
}

type stubID string

func (s stubID) Generate() string { return string(s) }

func newServer(t *testing.T, f *fakeUC) http.Handler {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  photo:\n    max_bytes: 2048\n"))
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: stubID("cid"), JWT: stubVerifier{}, Enforcer: stubEnforcer{}})
	RegisterHTTPEndpoint(r, cfg, f)
	return r
}

func uploadRequest(t *testing.T, role string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if photo != nil {
		part, err := w.CreateFormFile("photo", "pothole.jpg")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-photo", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+role)
	return req
}

func TestUploadPhoto(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 32)...)
	coords := map[string]string{"latitude": " 17.385 ", "longitude": "78.4867"}

	t.Run("ok", func(t *testing.T) {
		f := &fakeUC{}
		rec := httptest.NewRecorder()
		newServer(t, f).ServeHTTP(rec, uploadRequest(t, "user", coords, jpeg))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"message":"Photo uploaded successfully","data":{"id":"p-1","file_path":"photos/p-1.jpg"}}`, rec.Body.String())
		assert.Equal(t, jpeg, f.body)
		assert.Equal(t, "image/jpeg", f.uploadIn.ContentType)
		assert.Equal(t, "17.385", f.uploadIn.Latitude)
		assert.Equal(t, "78.4867", f.uploadIn.Longitude)
	})

	t.Run("missing photo", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServer(t, &fakeUC{}).ServeHTTP(rec, uploadRequest(t, "user", coords, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Validation error","fields":{"photo":"photo is required"}}`, rec.Body.String())
	})

	t.Run("usecase validation error", func(t *testing.T) {
		f := &fakeUC{uploadErr: goerror.NewInvalidInput(nil, "latitude", "latitude must contain valid latitude coordinates")}
		rec := httptest.NewRecorder()
		newServer(t, f).ServeHTTP(rec, uploadRequest(t, "user", map[string]string{"latitude": "91", "longitude": "0"}, jpeg))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("forbidden role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newServer(t, &fakeUC{}).ServeHTTP(rec, uploadRequest(t, "guest", coords, jpeg))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListPhotos(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := &fakeUC{list: []usecase.PhotoItem{{
			Photo: entity.Photo{
				ID:         "p-1",
				UserEmail:  "damerasanthosh2005@gmail.com",
				FilePath:   "photos/p-1.jpg",
				Latitude:   17.385,
				Longitude:  78.4867,
				UploadDate: time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC),
			},
			URL: "https://bucket/p-1.jpg?sig",
		}}}

		req := httptest.NewRequest(http.MethodGet, "/api/get-photos", nil)
		req.Header.Set("Authorization", "Bearer user")
		rec := httptest.NewRecorder()
		newServer(t, f).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Photos fetched successfully","data":[{
			"id":"p-1","user_email":"damerasanthosh2005@gmail.com","file_path":"photos/p-1.jpg",
			"url":"https://bucket/p-1.jpg?sig","latitude":17.385,"longitude":78.4867,
			"upload_date":"2025-04-10T09:00:00Z"}]}`, rec.Body.String())
	})

	t.Run("empty list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-photos", nil)
		req.Header.Set("Authorization", "Bearer user")
		rec := httptest.NewRecorder()
		newServer(t, &fakeUC{list: []usecase.PhotoItem{}}).ServeHTTP(rec, req)

		assert.JSONEq(t, `{"message":"Photos fetched successfully","data":[]}`, rec.Body.String())
	})

	t.Run("server error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/get-photos", nil)
		req.Header.Set("Authorization", "Bearer user")
		rec := httptest.NewRecorder()
		newServer(t, &fakeUC{listErr: goerror.NewServer(errors.New("db down"))}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})
}
