package mongo

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/safestreet/internal/identity/entity"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var seedCreatedAt = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

// SeedUsers is the initial user set, shared with the Postgres seed migration.
var SeedUsers = []entity.User{
	{Email: "damerasanthosh2005@gmail.com", Mobile: "7330985017", Name: "Santhosh"},
	{Email: "saiganeshsaga1706@gmail.com", Mobile: "8688129380", Name: "Ganesh"},
	{Email: "manikada306@gmail.com", Mobile: "9133828047", Name: "Manikanta"},
	{Email: "shivaprasadreddyerri@gmail.com", Mobile: "9666892362", Name: "Shiva"},
	{Email: "omkargonnela@mail.com", Mobile: "9347589519", Name: "Omkar"},
}

// Seed upserts users with $setOnInsert so existing documents, including their
// OTP slot and counters, are left alone.
func (s *Mongo) Seed(ctx context.Context, users []entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "Seed")
	defer func() { s.endSpan(span, err) }()

	models := lo.Map(users, func(u entity.User, _ int) mongo.WriteModel {
		role := u.Role
		if role == "" {
			role = entity.RoleUser
		}
		created := u.CreatedAt
		if created.IsZero() {
			created = seedCreatedAt
		}

		return mongo.NewUpdateOneModel().
			SetFilter(byEmail(u.Email)).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: bson.D{
				{Key: "mobile", Value: u.Mobile},
				{Key: "name", Value: u.Name},
				{Key: "role", Value: role.String()},
				{Key: "createdAt", Value: created},
				{Key: fieldTotalUploads, Value: 0},
				{Key: fieldOTP, Value: nil},
				{Key: fieldOTPExpiry, Value: nil},
			}}}).
			SetUpsert(true)
	})
	if len(models) == 0 {
		return nil
	}

	res, err := s.users.BulkWrite(ctx, models)
	if err != nil {
		return s.mapError(err)
	}

	slog.InfoContext(ctx, "seeded users collection", "upserted", res.UpsertedCount, "total", len(users))
	return nil
}
