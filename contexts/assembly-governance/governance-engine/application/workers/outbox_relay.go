package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "condogov/contexts/assembly-governance/governance-engine/application"
	"condogov/contexts/assembly-governance/governance-engine/ports"
)

// OutboxRelay forwards stored governance events to the event bus. The topic
// is the event type and rows are keyed by meeting id.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes one batch of pending rows in creation order. A row is
// marked published only after the bus accepts it; the first failure ends the
// cycle and leaves the remaining rows pending.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("governance outbox list failed",
			"event", "governance_outbox_list_failed",
			"module", "assembly-governance/governance-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("governance outbox relay found no pending rows",
			"event", "governance_outbox_relay_noop",
			"module", "assembly-governance/governance-engine",
			"layer", "worker",
			"batch_size", limit,
		)
		return 0, nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	meetings := make(map[string]struct{}, len(pending))
	for _, row := range pending {
		meetingID := row.PartitionKey
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("governance outbox decode failed",
				"event", "governance_outbox_decode_failed",
				"module", "assembly-governance/governance-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", row.EventType,
				"meeting_id", meetingID,
				"error", err.Error(),
			)
			return published, err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if meetingID == "" {
			meetingID = event.PartitionKey
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("governance event publish failed",
				"event", "governance_outbox_publish_failed",
				"module", "assembly-governance/governance-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", topic,
				"meeting_id", meetingID,
				"queued_at", row.CreatedAt.UTC().Format(time.RFC3339),
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("governance outbox mark published failed",
				"event", "governance_outbox_mark_published_failed",
				"module", "assembly-governance/governance-engine",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", topic,
				"meeting_id", meetingID,
				"error", err.Error(),
			)
			return published, err
		}
		logger.Debug("governance event relayed",
			"event", "governance_event_relayed",
			"module", "assembly-governance/governance-engine",
			"layer", "worker",
			"outbox_id", row.OutboxID,
			"event_type", topic,
			"meeting_id", meetingID,
			"relay_lag_ms", now.Sub(row.CreatedAt).Milliseconds(),
		)
		meetings[meetingID] = struct{}{}
		published++
	}

	logger.Info("governance outbox relay cycle completed",
		"event", "governance_outbox_relay_completed",
		"module", "assembly-governance/governance-engine",
		"layer", "worker",
		"published_count", published,
		"meeting_count", len(meetings),
	)
	return published, nil
}
