package messaging

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrUnsupported     = errors.New("messaging: unsupported operation")
)

// HeaderCorrelationID carries the request correlation id across brokers.
const HeaderCorrelationID = "cID"

type Messaging interface {
	io.Closer

	Publish(ctx context.Context, topic string, msg Outgoing) error
	// Consume blocks until ctx is done or the broker fails.
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one delivery. With auto-ack a nil return acks the
// message and an error requests redelivery.
type Handler func(ctx context.Context, msg Message) error

type Outgoing struct {
	Key     string
	Body    []byte
	Headers map[string]string
}

type Message interface {
	ID() string
	Topic() string
	Body() []byte
	Header(key string) string

	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}

// delivery adapts a broker message. ack and nack run at most once between
// them.
type delivery struct {
	id      string
	topic   string
	body    []byte
	headers map[string]string

	ack  func(context.Context) error
	nack func(context.Context) error

	responded atomic.Bool
}

func (d *delivery) ID() string    { return d.id }
func (d *delivery) Topic() string { return d.topic }
func (d *delivery) Body() []byte  { return d.body }

func (d *delivery) Header(key string) string {
	if d.headers == nil {
		return ""
	}
	return d.headers[key]
}

func (d *delivery) Ack(ctx context.Context) error {
	return d.respond(ctx, d.ack)
}

func (d *delivery) Nack(ctx context.Context) error {
	return d.respond(ctx, d.nack)
}

func (d *delivery) respond(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.responded.Swap(true) || fn == nil {
		return nil
	}
	return fn(ctx)
}

// dispatch runs handler and settles the delivery when autoAck is set and
// the handler did not settle it itself.
func dispatch(ctx context.Context, kind string, handler Handler, d *delivery, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, kind, func() error {
		return handler(ctx, d)
	})
	if !autoAck || d.responded.Load() {
		return herr
	}
	if herr != nil {
		return errors.Join(herr, d.Nack(ctx))
	}
	return d.Ack(ctx)
}

func validateConsume(ctx context.Context, topic string, handler Handler) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	return nil
}
