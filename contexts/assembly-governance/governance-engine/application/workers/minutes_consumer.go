package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "condogov/contexts/assembly-governance/governance-engine/application"
	"condogov/contexts/assembly-governance/governance-engine/application/commands"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	contractsv1 "condogov/contracts/gen/events/v1"
)

const defaultMinutesConsumerGroup = "governance-minutes-cg"

type MinutesCompiler interface {
	CompileMinutes(ctx context.Context, meetingID string) (commands.CompileMinutesResult, error)
}

// MinutesConsumer compiles the official minutes once a meeting completes.
// Redelivered events replay the stored text.
type MinutesConsumer struct {
	Subscriber    ports.EventSubscriber
	Minutes       MinutesCompiler
	ConsumerGroup string
	Logger        *slog.Logger
}

type meetingCompletedPayload struct {
	MeetingID string `json:"meeting_id"`
}

func (c MinutesConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = defaultMinutesConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, contractsv1.EventMeetingCompleted, group, c.handleMeetingCompleted)
}

func (c MinutesConsumer) handleMeetingCompleted(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload meetingCompletedPayload
	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return fmt.Errorf("decode meeting completed payload: %w", err)
		}
	}
	meetingID := strings.TrimSpace(payload.MeetingID)
	if meetingID == "" {
		meetingID = strings.TrimSpace(event.PartitionKey)
	}
	if meetingID == "" {
		return errors.New("meeting completed event missing meeting_id")
	}

	result, err := c.Minutes.CompileMinutes(ctx, meetingID)
	if err != nil {
		logger.Error("minutes compile from event failed",
			"event", "governance_minutes_consumer_failed",
			"module", "assembly-governance/governance-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"meeting_id", meetingID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("minutes compiled from event",
		"event", "governance_minutes_consumer_processed",
		"module", "assembly-governance/governance-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"meeting_id", meetingID,
		"replayed", result.Replayed,
	)
	return nil
}
