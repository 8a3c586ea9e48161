package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestPhotoRecord_entity(t *testing.T) {
	at := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	oid := bson.NewObjectID()

	tests := []struct {
		name string
		id   any
		want string
	}{
		{"uuid written by this service", "8b1f7c52-0c7e-4c55-9a43-0d3c1f0b6a11", "8b1f7c52-0c7e-4c55-9a43-0d3c1f0b6a11"},
		{"object id written by another client", oid, oid.Hex()},
		{"unsupported id type", int32(7), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.D{
				{Key: "_id", Value: tt.id},
				{Key: "userEmail", Value: "a@b.co"},
				{Key: "filePath", Value: "photos/a.jpg"},
				{Key: "latitude", Value: 17.4},
				{Key: "longitude", Value: 78.5},
				{Key: "uploadDate", Value: at},
				{Key: "__v", Value: int32(0)},
			})
			require.NoError(t, err)

			var rec photoRecord
			require.NoError(t, bson.Unmarshal(raw, &rec))

			p := rec.entity()
			assert.Equal(t, tt.want, p.ID)
			assert.Equal(t, "a@b.co", p.UserEmail)
			assert.Equal(t, "photos/a.jpg", p.FilePath)
			assert.InDelta(t, 17.4, p.Latitude, 1e-9)
			assert.InDelta(t, 78.5, p.Longitude, 1e-9)
			assert.True(t, at.Equal(p.UploadDate))
		})
	}
}

func TestPhotoDoc_fieldNames(t *testing.T) {
	raw, err := bson.Marshal(photoDoc{ID: "x", UserEmail: "a@b.co", FilePath: "photos/x.jpg"})
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	for _, k := range []string{"_id", "userEmail", "filePath", "latitude", "longitude", "uploadDate"} {
		assert.Contains(t, m, k)
	}
}
