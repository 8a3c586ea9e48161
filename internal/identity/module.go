package identity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/safestreet/internal/identity/inbound"
	"github.com/shandysiswandi/safestreet/internal/identity/outbound/db"
	"github.com/shandysiswandi/safestreet/internal/identity/outbound/email"
	"github.com/shandysiswandi/safestreet/internal/identity/outbound/mongo"
	"github.com/shandysiswandi/safestreet/internal/identity/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goroutine"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/lock"
	"github.com/shandysiswandi/safestreet/internal/pkg/mail"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
)

// Dependency wires the identity module. Exactly one of DBConn and MongoDB
// backs the user store.
type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required_without=MongoDB"`
	MongoDB    *mongodrv.Database         `validate:"required_without=DBConn"`
	CacheConn  redis.UniversalClient      `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Enforcer   router.Enforcer            `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	var locker lock.Locker = lock.Noop{}
	if dep.Config.GetBool("modules.identity.otp_lock") {
		locker = lock.NewRedis(dep.CacheConn,
			lock.WithPrefix("safestreet:lock:"),
			lock.WithTTL(dep.Config.GetSecond("modules.identity.otp_lock_ttl")),
			lock.WithWait(dep.Config.GetSecond("modules.identity.otp_lock_wait")),
		)
	}

	ucDep := usecase.Dependency{
		RepoMail:   email.New(dep.Mail, dep.Instrument),
		Locker:     locker,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Storage:    dep.Storage,
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
		Enforcer:   dep.Enforcer,
	}

	if dep.MongoDB != nil {
		repo := mongo.NewMongo(dep.MongoDB, dep.Instrument)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		if dep.Config.GetBool("mongo.seed") {
			if err := repo.Seed(ctx, mongo.SeedUsers); err != nil {
				return err
			}
		}
		ucDep.RepoDB = repo
	} else {
		ucDep.RepoDB = db.NewDB(dep.DBConn, dep.Instrument)
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, dep.Config, uc)
	inbound.RegisterMQConsumer(ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
