// Package mongo stores users in a MongoDB collection. Documents keep the
// driver-generated ObjectId in _id and are looked up by the unique email field,
// so collections written by other SafeStreet services are read as is.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const CollectionUsers = "users"

const (
	fieldEmail        = "email"
	fieldOTP          = "otp"
	fieldOTPExpiry    = "otpExpiry"
	fieldTotalUploads = "totalUploads"
	fieldProfilePic   = "profilePicUrl"
)

type userDoc struct {
	Email         string     `bson:"email"`
	Mobile        string     `bson:"mobile"`
	Name          string     `bson:"name"`
	Role          string     `bson:"role"`
	CreatedAt     time.Time  `bson:"createdAt"`
	TotalUploads  int        `bson:"totalUploads"`
	ProfilePicURL string     `bson:"profilePicUrl,omitempty"`
	OTPCode       *string    `bson:"otp"`
	OTPExpiresAt  *time.Time `bson:"otpExpiry"`
}

func (d userDoc) entity() *entity.User {
	u := &entity.User{
		Email:         d.Email,
		Mobile:        d.Mobile,
		Name:          d.Name,
		Role:          entity.Role(d.Role),
		CreatedAt:     d.CreatedAt,
		TotalUploads:  d.TotalUploads,
		ProfilePicURL: d.ProfilePicURL,
	}
	if d.OTPCode != nil && d.OTPExpiresAt != nil {
		u.OTP = entity.OTPSlot{Code: *d.OTPCode, ExpiresAt: *d.OTPExpiresAt}
	}
	return u
}

type Mongo struct {
	users *mongo.Collection
	ins   instrument.Instrumentation
}

func NewMongo(db *mongo.Database, ins instrument.Instrumentation) *Mongo {
	return &Mongo{users: db.Collection(CollectionUsers), ins: ins}
}

func byEmail(email string) bson.D {
	return bson.D{{Key: fieldEmail, Value: email}}
}

// EnsureIndexes creates the unique email index every lookup relies on.
func (s *Mongo) EnsureIndexes(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "EnsureIndexes")
	defer func() { s.endSpan(span, err) }()

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: fieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	return err
}

func (s *Mongo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return goerror.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return goerror.ErrConflict
	}
	return err
}

func (s *Mongo) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.mongo").Start(ctx, name)
}

func (s *Mongo) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Mongo) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var doc userDoc
	if err = s.users.FindOne(ctx, byEmail(email)).Decode(&doc); err != nil {
		return nil, s.mapError(err)
	}
	return doc.entity(), nil
}

func (s *Mongo) UpdateOTP(ctx context.Context, email string, slot entity.OTPSlot) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateOTP")
	defer func() { s.endSpan(span, err) }()

	set := bson.D{{Key: fieldOTP, Value: nil}, {Key: fieldOTPExpiry, Value: nil}}
	if slot.IsSet() {
		set = bson.D{{Key: fieldOTP, Value: slot.Code}, {Key: fieldOTPExpiry, Value: slot.ExpiresAt}}
	}

	return s.updateOne(ctx, byEmail(email), bson.D{{Key: "$set", Value: set}})
}

// ClearOTP matches on both the email and the stored code, so only one caller
// can consume a given code.
func (s *Mongo) ClearOTP(ctx context.Context, email, code string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ClearOTP")
	defer func() { s.endSpan(span, err) }()

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: fieldEmail, Value: email}, {Key: fieldOTP, Value: code}},
		bson.D{{Key: "$set", Value: bson.D{{Key: fieldOTP, Value: nil}, {Key: fieldOTPExpiry, Value: nil}}}},
	)
	if err != nil {
		return false, s.mapError(err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *Mongo) UpdateProfilePic(ctx context.Context, email, url string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProfilePic")
	defer func() { s.endSpan(span, err) }()

	return s.updateOne(ctx,
		byEmail(email),
		bson.D{{Key: "$set", Value: bson.D{{Key: fieldProfilePic, Value: url}}}},
	)
}

func (s *Mongo) IncrementUploads(ctx context.Context, email string, n int) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementUploads")
	defer func() { s.endSpan(span, err) }()

	return s.updateOne(ctx,
		byEmail(email),
		bson.D{{Key: "$inc", Value: bson.D{{Key: fieldTotalUploads, Value: n}}}},
	)
}

func (s *Mongo) updateOne(ctx context.Context, filter, update bson.D) error {
	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return s.mapError(err)
	}
	if res.MatchedCount == 0 {
		return goerror.ErrNotFound
	}
	return nil
}
