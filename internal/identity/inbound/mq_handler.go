package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/identity/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/messaging"
	"github.com/shandysiswandi/safestreet/internal/pkg/uid"
	"github.com/shandysiswandi/safestreet/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(messaging.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// PhotoUploaded bumps the uploader's counter. Malformed payloads are logged
// and acked since a redelivery cannot fix them.
func (h *MQHandler) PhotoUploaded(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("identity.inbound.mq").Start(ctx, "PhotoUploaded")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: photo uploaded", "msg_id", msg.ID())

	var payload event.PhotoUploadedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of photo uploaded", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumePhotoUploaded(ctx, usecase.PhotoUploadedInput{
		PhotoID: payload.PhotoID,
		Email:   payload.UserEmail,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume photo uploaded", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
