package workers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/adapters/memory"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, id string, eventType string, at time.Time) {
	t.Helper()
	require.NoError(t, store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:      id,
		EventType:    eventType,
		OccurredAt:   at,
		PartitionKey: "meeting-1",
		Data:         []byte(`{"meeting_id":"meeting-1"}`),
	}))
}

func TestOutboxRelayPublishesPendingRowsInOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-2", "governance.decision.created", base.Add(time.Minute))
	appendEnvelope(t, store, "evt-1", "governance.meeting.created", base)
	publisher := &recordingPublisher{}

	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}
	published, err := relay.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, []string{"governance.meeting.created", "governance.decision.created"}, publisher.topics)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelayStopsOnFirstPublishFailure(t *testing.T) {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-1", "governance.meeting.created", base)
	appendEnvelope(t, store, "evt-2", "governance.attendance.added", base.Add(time.Minute))
	appendEnvelope(t, store, "evt-3", "governance.quorum.evaluated", base.Add(2*time.Minute))
	publisher := &recordingPublisher{failOn: "evt-2"}

	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	published, err := relay.RunOnce(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, published)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-2", pending[0].OutboxID)
}

func TestOutboxRelayNoopWhenNothingPending(t *testing.T) {
	relay := OutboxRelay{Outbox: memory.NewStore(), Publisher: &recordingPublisher{}}

	published, err := relay.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestOutboxRelayLogsEventTypeAndMeeting(t *testing.T) {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	appendEnvelope(t, store, "evt-1", "governance.meeting.created", base)
	appendEnvelope(t, store, "evt-2", "governance.meeting.completed", base.Add(time.Minute))
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	relay := OutboxRelay{Outbox: store, Publisher: &recordingPublisher{failOn: "evt-2"}, Logger: logger}
	_, err := relay.RunOnce(context.Background())

	require.Error(t, err)
	out := logs.String()
	assert.Contains(t, out, `"event":"governance_event_relayed"`)
	assert.Contains(t, out, `"event":"governance_outbox_publish_failed"`)
	assert.Contains(t, out, `"event_type":"governance.meeting.completed"`)
	assert.Contains(t, out, `"meeting_id":"meeting-1"`)
}
