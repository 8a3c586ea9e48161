package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/safestreet/internal/pkg/clock"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goroutine"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
	"github.com/shandysiswandi/safestreet/internal/pkg/mail"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
	"github.com/shandysiswandi/safestreet/internal/pkg/storage"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/pkg/validator"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	jwt       *jwt.Symmetric

	// resources, only one of dbConn and mongoDB is set
	dbConn    *pgxpool.Pool
	mongoConn *mongo.Client
	mongoDB   *mongo.Database
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
