package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/taskfabric/backend/internal/domain/shared"
)

// DefaultStreamName is the JetStream stream holding all domain events
const DefaultStreamName = "TASKFABRIC_EVENTS"

// streamSubjects covers every topic any service publishes
var streamSubjects = []string{"project.>", "task.>", "team.>", "member.>"}

// JetStreamClient wraps a NATS connection with its JetStream context
type JetStreamClient struct {
	Conn *nats.Conn
	JS   nats.JetStreamContext
}

// ConnectJetStream connects to NATS and ensures the event stream exists
func ConnectJetStream(url, stream string) (*JetStreamClient, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	if err := EnsureStream(js, stream); err != nil {
		_ = conn.Drain()
		conn.Close()
		return nil, err
	}
	return &JetStreamClient{Conn: conn, JS: js}, nil
}

// ConnectJetStreamWithRetry retries the connection until timeout elapses
func ConnectJetStreamWithRetry(url, stream string, timeout time.Duration) (*JetStreamClient, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		client, err := ConnectJetStream(url, stream)
		if err == nil {
			return client, nil
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("connect jetstream timeout after %s: %w", timeout, lastErr)
}

// Close drains and closes the underlying connection
func (c *JetStreamClient) Close() {
	if c == nil || c.Conn == nil {
		return
	}
	_ = c.Conn.Drain()
	c.Conn.Close()
}

// EnsureStream creates (or validates) the domain event stream
func EnsureStream(js nats.JetStreamContext, stream string) error {
	if stream == "" {
		stream = DefaultStreamName
	}
	if _, err := js.StreamInfo(stream); err != nil {
		if errors.Is(err, nats.ErrStreamNotFound) {
			if _, addErr := js.AddStream(&nats.StreamConfig{
				Name:      stream,
				Subjects:  streamSubjects,
				Retention: nats.LimitsPolicy,
				Storage:   nats.FileStorage,
				Replicas:  1,
			}); addErr != nil {
				return addErr
			}
			return nil
		}
		return err
	}
	return nil
}

// JetStreamPublisher implements shared.EventPublisher over JetStream.
// Each event is published with its event ID as the message ID, so the
// broker deduplicates publisher-side retries within its dedup window.
type JetStreamPublisher struct {
	js     nats.JetStreamContext
	codec  *Codec
	logger *zap.Logger
}

var _ shared.EventPublisher = (*JetStreamPublisher)(nil)

// NewJetStreamPublisher creates a JetStream-backed event publisher
func NewJetStreamPublisher(js nats.JetStreamContext, codec *Codec, logger *zap.Logger) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, codec: codec, logger: logger}
}

// Publish publishes events to their topics
func (p *JetStreamPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		payload, err := p.codec.Encode(event)
		if err != nil {
			return err
		}
		if _, err := p.js.Publish(event.Topic(), payload,
			nats.MsgId(event.EventID().String()),
			nats.Context(ctx),
		); err != nil {
			return fmt.Errorf("publish %s: %w", event.Topic(), err)
		}
		p.logger.Debug("event published",
			zap.String("topic", event.Topic()),
			zap.String("event_id", event.EventID().String()),
		)
	}
	return nil
}

// PublishRaw publishes an already-encoded payload. Used by the outbox
// relay, which stores payloads at commit time and must not re-encode them.
func (p *JetStreamPublisher) PublishRaw(ctx context.Context, topic, eventID string, payload []byte) error {
	if _, err := p.js.Publish(topic, payload,
		nats.MsgId(eventID),
		nats.Context(ctx),
	); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// JetStreamConsumer delivers events from JetStream to registered handlers.
// Each (service, topic) pair uses a durable queue subscription with manual
// acks: a handler error naks the message for redelivery, so delivery is
// at-least-once and handlers must be idempotent.
type JetStreamConsumer struct {
	js       nats.JetStreamContext
	codec    *Codec
	registry *HandlerRegistry
	queue    string
	logger   *zap.Logger
	subs     []*nats.Subscription
}

var _ shared.EventConsumer = (*JetStreamConsumer)(nil)

// NewJetStreamConsumer creates a consumer for the given queue group.
// The queue name identifies the consuming service; replicas of the same
// service share the group and split the work.
func NewJetStreamConsumer(js nats.JetStreamContext, codec *Codec, queue string, logger *zap.Logger) *JetStreamConsumer {
	return &JetStreamConsumer{
		js:       js,
		codec:    codec,
		registry: NewHandlerRegistry(),
		queue:    queue,
		logger:   logger,
	}
}

// Subscribe registers a handler for specific topics
func (c *JetStreamConsumer) Subscribe(handler shared.EventHandler, topics ...string) {
	if len(topics) == 0 {
		topics = handler.Topics()
	}
	c.registry.Register(handler, topics...)
}

// Start opens a durable queue subscription per registered topic
func (c *JetStreamConsumer) Start(ctx context.Context) error {
	for _, topic := range c.registry.Topics() {
		topic := topic
		durable := c.queue + "-" + sanitizeDurable(topic)
		sub, err := c.js.QueueSubscribe(topic, c.queue, func(msg *nats.Msg) {
			c.handleMessage(ctx, topic, msg)
		}, nats.ManualAck(), nats.Durable(durable))
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		c.subs = append(c.subs, sub)
		c.logger.Info("consumer subscribed",
			zap.String("topic", topic),
			zap.String("queue", c.queue),
		)
	}
	return nil
}

// Stop drains all subscriptions
func (c *JetStreamConsumer) Stop(_ context.Context) error {
	var firstErr error
	for _, sub := range c.subs {
		if err := sub.Drain(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.subs = nil
	return firstErr
}

func (c *JetStreamConsumer) handleMessage(ctx context.Context, topic string, msg *nats.Msg) {
	event, err := c.codec.Decode(topic, msg.Data)
	if err != nil {
		// An undecodable message will never succeed; ack it away
		c.logger.Error("dropping undecodable event",
			zap.String("topic", topic),
			zap.Error(err),
		)
		_ = msg.Ack()
		return
	}

	for _, handler := range c.registry.GetHandlers(topic) {
		if err := handler.Handle(ctx, event); err != nil {
			c.logger.Warn("event handling failed, requeueing",
				zap.String("topic", topic),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
			_ = msg.Nak()
			return
		}
	}
	_ = msg.Ack()
}

func sanitizeDurable(topic string) string {
	out := make([]byte, len(topic))
	for i := 0; i < len(topic); i++ {
		if topic[i] == '.' {
			out[i] = '-'
		} else {
			out[i] = topic[i]
		}
	}
	return string(out)
}
