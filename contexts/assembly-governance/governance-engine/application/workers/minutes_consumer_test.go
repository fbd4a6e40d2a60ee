package workers

import (
	"context"
	"errors"
	"testing"

	"condogov/contexts/assembly-governance/governance-engine/application/commands"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	contractsv1 "condogov/contracts/gen/events/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSubscriber struct {
	topic   string
	group   string
	handler func(context.Context, ports.EventEnvelope) error
}

func (s *capturingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.topic = topic
	s.group = consumerGroup
	s.handler = handler
	return nil
}

type stubMinutes struct {
	calls []string
	err   error
}

func (s *stubMinutes) CompileMinutes(_ context.Context, meetingID string) (commands.CompileMinutesResult, error) {
	s.calls = append(s.calls, meetingID)
	if s.err != nil {
		return commands.CompileMinutesResult{}, s.err
	}
	return commands.CompileMinutesResult{Text: "=== TOPLANTI TUTANAĞI ===", Replayed: len(s.calls) > 1}, nil
}

func TestMinutesConsumerSubscribesToMeetingCompleted(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := MinutesConsumer{Subscriber: subscriber, Minutes: &stubMinutes{}}

	require.NoError(t, consumer.Start(context.Background()))

	assert.Equal(t, contractsv1.EventMeetingCompleted, subscriber.topic)
	assert.Equal(t, defaultMinutesConsumerGroup, subscriber.group)
}

func TestMinutesConsumerCompilesFromPayload(t *testing.T) {
	subscriber := &capturingSubscriber{}
	minutes := &stubMinutes{}
	consumer := MinutesConsumer{Subscriber: subscriber, Minutes: minutes, ConsumerGroup: "cg"}
	require.NoError(t, consumer.Start(context.Background()))

	event := ports.EventEnvelope{
		EventID:      "evt-1",
		EventType:    contractsv1.EventMeetingCompleted,
		PartitionKey: "meeting-fallback",
		Data:         []byte(`{"meeting_id":"meeting-1"}`),
	}
	require.NoError(t, subscriber.handler(context.Background(), event))
	require.NoError(t, subscriber.handler(context.Background(), event))

	assert.Equal(t, []string{"meeting-1", "meeting-1"}, minutes.calls)
}

func TestMinutesConsumerFallsBackToPartitionKey(t *testing.T) {
	subscriber := &capturingSubscriber{}
	minutes := &stubMinutes{}
	require.NoError(t, MinutesConsumer{Subscriber: subscriber, Minutes: minutes}.Start(context.Background()))

	err := subscriber.handler(context.Background(), ports.EventEnvelope{PartitionKey: "meeting-2", Data: []byte(`{}`)})

	require.NoError(t, err)
	require.NoError(t, subscriber.handler(context.Background(), ports.EventEnvelope{PartitionKey: "meeting-3"}))
	assert.Equal(t, []string{"meeting-2", "meeting-3"}, minutes.calls)
}

func TestMinutesConsumerRejectsUndecodablePayload(t *testing.T) {
	subscriber := &capturingSubscriber{}
	minutes := &stubMinutes{}
	require.NoError(t, MinutesConsumer{Subscriber: subscriber, Minutes: minutes}.Start(context.Background()))

	assert.Error(t, subscriber.handler(context.Background(), ports.EventEnvelope{Data: []byte(`not-json`)}))
	assert.Error(t, subscriber.handler(context.Background(), ports.EventEnvelope{Data: []byte(`{}`)}))
	assert.Empty(t, minutes.calls)
}

func TestMinutesConsumerPropagatesCompileFailure(t *testing.T) {
	subscriber := &capturingSubscriber{}
	minutes := &stubMinutes{err: errors.New("meeting not completed")}
	require.NoError(t, MinutesConsumer{Subscriber: subscriber, Minutes: minutes}.Start(context.Background()))

	err := subscriber.handler(context.Background(), ports.EventEnvelope{Data: []byte(`{"meeting_id":"meeting-3"}`)})

	assert.EqualError(t, err, "meeting not completed")
}
