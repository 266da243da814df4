package notification

import (
	"context"

	"github.com/enrollkit/enrollkit/internal/notification/inbound"
	"github.com/enrollkit/enrollkit/internal/notification/outbound/db"
	"github.com/enrollkit/enrollkit/internal/notification/outbound/email"
	"github.com/enrollkit/enrollkit/internal/notification/usecase"
	"github.com/enrollkit/enrollkit/internal/pkg/clock"
	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/goroutine"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/mail"
	"github.com/enrollkit/enrollkit/internal/pkg/messaging"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependency struct {
	Ctx        context.Context
	DBConn     *pgxpool.Pool              `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		RepoDB:     dbNotif,
		RepoMail:   repoMail,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
