package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/enrollkit/enrollkit/internal/pkg/config"
	"github.com/enrollkit/enrollkit/internal/pkg/goroutine"
	"github.com/enrollkit/enrollkit/internal/pkg/instrument"
	"github.com/enrollkit/enrollkit/internal/pkg/messaging"
	"github.com/enrollkit/enrollkit/internal/pkg/uid"
	"github.com/enrollkit/enrollkit/internal/shared/event"
	"github.com/samber/lo"
)

type consumerSpec struct {
	name    string
	topic   string // destination where publisher sent message
	handler messaging.Handler
}

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	consumers := []consumerSpec{
		{
			name:    event.OTPIssuedDestinationConsumerNotification,
			topic:   event.OTPIssuedDestination,
			handler: mqHandler.OTPIssuedNotification,
		},
	}

	enabled := lo.Filter(consumers, func(c consumerSpec, _ int) bool {
		return len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, c.name)
	})

	for _, consumer := range enabled {
		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.name),
				messaging.WithQueueGroup(consumer.name),
				messaging.WithGroup(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
				messaging.WithMaxInFlight(10),
			)
		})
	}
}
