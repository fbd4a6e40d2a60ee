package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/nats-io/nats.go"
)

// NATS publishes governance envelopes as JSON on a subject named after the
// topic. Consumer groups map to NATS queue groups.
type NATS struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func ConnectNATS(url string, serviceName string, logger *slog.Logger) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name(serviceName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATS{conn: conn, logger: logger}, nil
}

func (n *NATS) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.EventID, err)
	}
	msg := nats.NewMsg(topic)
	msg.Data = payload
	msg.Header.Set("Event-Id", event.EventID)
	msg.Header.Set("Partition-Key", event.PartitionKey)
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.EventID, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush event %s: %w", event.EventID, err)
	}
	if n.logger != nil {
		n.logger.Debug("event published",
			"event", "nats_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (n *NATS) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	sub, err := n.conn.QueueSubscribe(topic, consumerGroup, func(msg *nats.Msg) {
		var event ports.EventEnvelope
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			n.logConsumeError(topic, consumerGroup, "", err)
			return
		}
		if err := handler(ctx, event); err != nil {
			n.logConsumeError(topic, consumerGroup, event.EventID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}

func (n *NATS) logConsumeError(topic string, consumerGroup string, eventID string, err error) {
	if n.logger == nil {
		return
	}
	n.logger.Error("consumer handler failed",
		"event", "nats_consume_failed",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"consumer_group", consumerGroup,
		"event_id", eventID,
		"error", err.Error(),
	)
}
