package messaging

import (
	"context"
	"errors"
	"io"
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
)

// Memory is an in-process broker for single-instance runs and tests.
// Each group receives every message once; a nacked message is queued again.
// Like an nsqd topic without channels, a topic nobody consumes yet keeps up
// to memoryQueueSize messages for its first group.
type Memory struct {
	mu      sync.Mutex
	groups  map[string]map[string]chan *delivery
	backlog map[string][]Outgoing
	closed  bool
	seq     atomic.Uint64
}

func NewMemory() *Memory {
	return &Memory{
		groups:  map[string]map[string]chan *delivery{},
		backlog: map[string][]Outgoing{},
	}
}

const memoryQueueSize = 256

// ErrBacklogFull is returned by Memory.Publish when a topic without consumers
// already holds memoryQueueSize messages.
var ErrBacklogFull = errors.New("messaging: memory backlog is full")

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) Publish(ctx context.Context, topic string, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	if len(m.groups[topic]) == 0 {
		defer m.mu.Unlock()
		if len(m.backlog[topic]) >= memoryQueueSize {
			return ErrBacklogFull
		}
		msg.Headers = maps.Clone(msg.Headers)
		m.backlog[topic] = append(m.backlog[topic], msg)
		return nil
	}
	queues := make([]chan *delivery, 0, len(m.groups[topic]))
	for _, q := range m.groups[topic] {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	id := strconv.FormatUint(m.seq.Add(1), 10)
	for _, q := range queues {
		headers := make(map[string]string, len(msg.Headers))
		for k, v := range msg.Headers {
			headers[k] = v
		}
		select {
		case q <- m.delivery(q, id, topic, msg.Body, headers):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Memory) delivery(q chan *delivery, id, topic string, body []byte, headers map[string]string) *delivery {
	return &delivery{
		id:      id,
		topic:   topic,
		body:    body,
		headers: headers,
		nack: func(context.Context) error {
			go func() { q <- m.delivery(q, id, topic, body, headers) }()
			return nil
		},
	}
}

func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, topic, handler); err != nil {
		return err
	}
	co := newConsumeOptions(opts...)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	if m.groups[topic] == nil {
		m.groups[topic] = map[string]chan *delivery{}
	}
	q, ok := m.groups[topic][co.group]
	if !ok {
		q = make(chan *delivery, memoryQueueSize)
		m.groups[topic][co.group] = q
		for _, msg := range m.backlog[topic] {
			id := strconv.FormatUint(m.seq.Add(1), 10)
			q <- m.delivery(q, id, topic, msg.Body, msg.Headers)
		}
		delete(m.backlog, topic)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case d := <-q:
					//nolint:errcheck // failures are logged by the handler
					_ = dispatch(ctx, "memory", handler, d, co.autoAck)
				}
			}
		})
	}
	wg.Wait()
	return ctx.Err()
}
