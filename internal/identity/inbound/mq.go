package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/goroutine"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/shared/event"
)

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

	enableConsumerNames := cfg.GetArray("modules.identity.consumer_names")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nsq channel, nats queue, kafka group, pubsub subscription
		handler messaging.Handler
	}{
		{
			name:    event.PhotoUploadedConsumerIdentity,
			topic:   event.PhotoUploadedDestination,
			group:   event.PhotoUploadedConsumerIdentity,
			handler: mqHandler.PhotoUploaded,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.group),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(cfg.GetInt("modules.identity.consumer_concurrency")),
				messaging.WithMaxInFlight(cfg.GetInt("modules.identity.consumer_max_in_flight")),
			)
		})
	}
}
