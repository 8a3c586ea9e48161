package photo

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/safestreet/internal/photo/inbound"
	"github.com/shandysiswandi/safestreet/internal/photo/outbound/db"
	"github.com/shandysiswandi/safestreet/internal/photo/outbound/mongo"
	"github.com/shandysiswandi/safestreet/internal/photo/outbound/mq"
	"github.com/shandysiswandi/safestreet/internal/photo/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required_without=MongoDB"`
	MongoDB    *mongodrv.Database         `validate:"required_without=DBConn"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Validator:     dep.Validator,
		Config:        dep.Config,
		Storage:       dep.Storage,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	}
	if dep.MongoDB != nil {
		ucDep.RepoDB = mongo.NewMongo(dep.MongoDB, dep.Instrument)
	} else {
		ucDep.RepoDB = db.NewDB(dep.DBConn, dep.Instrument)
	}

	inbound.RegisterHTTPEndpoint(dep.Router, dep.Config, usecase.New(ucDep))

	return nil
}
