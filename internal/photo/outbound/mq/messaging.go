package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/safestreet/internal/photo/entity"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// PublishPhotoUploaded keys the message by uploader so brokers that
// partition keep one user's uploads in order.
func (m *Messaging) PublishPhotoUploaded(ctx context.Context, p entity.Photo) error {
	ctx, span := m.ins.Tracer("photo.outbound.mq").Start(ctx, "PublishPhotoUploaded")
	defer span.End()

	body, err := json.Marshal(event.PhotoUploadedMessage{
		PhotoID:    p.ID,
		UserEmail:  p.UserEmail,
		FilePath:   p.FilePath,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		UploadDate: p.UploadDate,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, event.PhotoUploadedDestination, messaging.Outgoing{
		Key:     p.UserEmail,
		Body:    body,
		Headers: map[string]string{messaging.HeaderCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
