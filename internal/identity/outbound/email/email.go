package email

import (
	"context"

	"github.com/shandysiswandi/safestreet/internal/pkg/instrument"
	"github.com/shandysiswandi/safestreet/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	SubjectOTP = "Your OTP for SafeStreetApp"
	bodyOTP    = "Your OTP is "
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendOTP mails the plaintext code to a single recipient.
func (m *Mail) SendOTP(ctx context.Context, email, code string) error {
	ctx, span := m.ins.Tracer("identity.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	span.SetAttributes(attribute.Int("mail.recipients", 1))

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  SubjectOTP,
		TextBody: bodyOTP + code,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
