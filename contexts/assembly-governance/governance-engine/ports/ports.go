package ports

import (
	"context"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	contractsv1 "condogov/contracts/gen/events/v1"
)

type SiteRepository interface {
	GetSite(ctx context.Context, siteID string) (entities.Site, error)
	ListUnits(ctx context.Context, siteID string) ([]entities.Unit, error)
}

// MeetingReader loads meeting aggregates.
type MeetingReader interface {
	GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error)
	GetMeetingSnapshot(ctx context.Context, meetingID string) (entities.MeetingSnapshot, error)
	GetDecision(ctx context.Context, decisionID string) (entities.Decision, error)
}

// MeetingWriter persists meeting changes. Every method commits as a single
// transaction; methods taking several row sets apply all of them or none.
type MeetingWriter interface {
	CreateMeeting(ctx context.Context, meeting entities.Meeting) error
	SaveQuorum(ctx context.Context, meeting entities.Meeting) error
	AddAttendances(ctx context.Context, meetingID string, attendances []entities.Attendance) error
	AddProxies(ctx context.Context, meetingID string, proxies []entities.Proxy, attendances []entities.Attendance) error
	AddAgendaItem(ctx context.Context, item entities.AgendaItem) error
	AddDocument(ctx context.Context, document entities.Document) error
	CreateDecision(ctx context.Context, decision entities.Decision) error
	ReplaceVotes(ctx context.Context, decision entities.Decision, votes []entities.Vote) error
	UpdateDecisionText(ctx context.Context, decisionID string, text string, updatedAt time.Time) error
	// CompleteMeeting fails with ErrConflict unless the stored meeting is
	// still draft.
	CompleteMeeting(ctx context.Context, meeting entities.Meeting) error
	// SaveMinutes writes minutes only when none are stored yet and returns
	// the stored meeting.
	SaveMinutes(ctx context.Context, meetingID string, text string, compiledAt time.Time) (entities.Meeting, error)
}

type MeetingRepository interface {
	MeetingReader
	MeetingWriter
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	ResourceID  string
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
