package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope for governance events
// written to the outbox and relayed to the event bus. Field names are part of
// the wire contract and must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Governance event types emitted by the governance engine.
const (
	EventMeetingCreated   = "governance.meeting.created"
	EventAttendanceAdded  = "governance.attendance.added"
	EventQuorumEvaluated  = "governance.quorum.evaluated"
	EventProxiesGranted   = "governance.proxies.granted"
	EventDecisionCreated  = "governance.decision.created"
	EventDecisionTallied  = "governance.decision.tallied"
	EventMeetingCompleted = "governance.meeting.completed"
	EventMinutesCompiled  = "governance.minutes.compiled"
)
