package app

import (
	"context"
	"net/http"

	"github.com/enrollkit/enrollkit/internal/pkg/clock"
	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/goroutine"
	"github.com/enrollkit/enrollkit/internal/pkg/hash"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/jwt"
	"github.com/enrollkit/enrollkit/internal/pkg/mail"
	"github.com/enrollkit/enrollkit/internal/pkg/messaging"
	"github.com/enrollkit/enrollkit/internal/pkg/otp"
	"github.com/enrollkit/enrollkit/internal/pkg/router"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
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
	hasher    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.OTP
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	mail      mail.Mail
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
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
	app.initMail()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
