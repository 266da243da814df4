package usecase

import (
	"context"
	"time"

	"github.com/enrollkit/enrollkit/internal/pkg/clock"
	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/hash"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/jwt"
	"github.com/enrollkit/enrollkit/internal/pkg/otp"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/pkg/validator"
	"github.com/enrollkit/enrollkit/internal/registration/entity"
	"go.opentelemetry.io/otel/trace"
)

type OTPIssuedEvent struct {
	SessionID string
	Channel   entity.Channel
	Contact   string
	Code      string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
}

type repoDB interface {
	GetActiveOTPSessionByID(ctx context.Context, id string) (*entity.OTPSession, error)
	CreateOTPSessionExclusive(ctx context.Context, in entity.CreateOTPSession) error
	ConsumeOTPSession(ctx context.Context, id string, at time.Time) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	hasher        hash.Hash
	otp           otp.OTP
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Hasher        hash.Hash
	OTP           otp.OTP
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hasher:        dep.Hasher,
		otp:           dep.OTP,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("registration.usecase").Start(ctx, name)
}
