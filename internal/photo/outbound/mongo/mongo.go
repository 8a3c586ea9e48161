package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const CollectionPhotos = "photos"

// photoDoc is written with the UUID as _id. Documents created elsewhere carry
// an ObjectId instead, so reads go through photoRecord.
type photoDoc struct {
	ID         string    `bson:"_id"`
	UserEmail  string    `bson:"userEmail"`
	FilePath   string    `bson:"filePath"`
	Latitude   float64   `bson:"latitude"`
	Longitude  float64   `bson:"longitude"`
	UploadDate time.Time `bson:"uploadDate"`
}

type photoRecord struct {
	ID         bson.RawValue `bson:"_id"`
	UserEmail  string        `bson:"userEmail"`
	FilePath   string        `bson:"filePath"`
	Latitude   float64       `bson:"latitude"`
	Longitude  float64       `bson:"longitude"`
	UploadDate time.Time     `bson:"uploadDate"`
}

func (r photoRecord) id() string {
	if oid, ok := r.ID.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if s, ok := r.ID.StringValueOK(); ok {
		return s
	}
	return ""
}

func (r photoRecord) entity() entity.Photo {
	return entity.Photo{
		ID:         r.id(),
		UserEmail:  r.UserEmail,
		FilePath:   r.FilePath,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		UploadDate: r.UploadDate,
	}
}

type Mongo struct {
	photos *mongo.Collection
	ins    instrument.Instrumentation
}

func NewMongo(db *mongo.Database, ins instrument.Instrumentation) *Mongo {
	return &Mongo{photos: db.Collection(CollectionPhotos), ins: ins}
}

func (s *Mongo) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("photo.outbound.mongo").Start(ctx, name)
}

func (s *Mongo) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Mongo) CreatePhoto(ctx context.Context, p entity.Photo) (err error) {
	ctx, span := s.startSpan(ctx, "CreatePhoto")
	defer func() { s.endSpan(span, err) }()

	_, err = s.photos.InsertOne(ctx, photoDoc{
		ID:         p.ID,
		UserEmail:  p.UserEmail,
		FilePath:   p.FilePath,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		UploadDate: p.UploadDate,
	})
	if mongo.IsDuplicateKeyError(err) {
		return goerror.ErrConflict
	}
	return err
}

func (s *Mongo) ListPhotos(ctx context.Context) (_ []entity.Photo, err error) {
	ctx, span := s.startSpan(ctx, "ListPhotos")
	defer func() { s.endSpan(span, err) }()

	cur, err := s.photos.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var recs []photoRecord
	if err = cur.All(ctx, &recs); err != nil {
		return nil, err
	}

	return lo.Map(recs, func(r photoRecord, _ int) entity.Photo { return r.entity() }), nil
}
