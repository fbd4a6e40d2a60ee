// Package lifecycle gates meeting operations by meeting state. A meeting is
// created Draft and moves once, irreversibly, to Completed.
package lifecycle

import (
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
)

type Operation string

const (
	OpAddAttendance   Operation = "add_attendance"
	OpModifyProxy     Operation = "modify_proxy"
	OpCreateDecision  Operation = "create_decision"
	OpCastVote        Operation = "cast_vote"
	OpEditDecision    Operation = "edit_decision"
	OpEditAgenda      Operation = "edit_agenda"
	OpEditDocuments   Operation = "edit_documents"
	OpCheckQuorum     Operation = "check_quorum"
	OpCompleteMeeting Operation = "complete_meeting"
	OpGenerateMinutes Operation = "generate_minutes"
)

// Operations lists every gated operation in a stable order.
var Operations = []Operation{
	OpAddAttendance,
	OpModifyProxy,
	OpCreateDecision,
	OpCastVote,
	OpEditDecision,
	OpEditAgenda,
	OpEditDocuments,
	OpCheckQuorum,
	OpCompleteMeeting,
	OpGenerateMinutes,
}

var gates = map[Operation]map[entities.MeetingState]bool{
	OpAddAttendance:   {entities.MeetingStateDraft: true},
	OpModifyProxy:     {entities.MeetingStateDraft: true},
	OpCreateDecision:  {entities.MeetingStateDraft: true},
	OpCastVote:        {entities.MeetingStateDraft: true},
	OpEditDecision:    {entities.MeetingStateDraft: true},
	OpEditAgenda:      {entities.MeetingStateDraft: true},
	OpEditDocuments:   {entities.MeetingStateDraft: true},
	OpCheckQuorum:     {entities.MeetingStateDraft: true, entities.MeetingStateCompleted: true},
	OpCompleteMeeting: {entities.MeetingStateDraft: true},
	OpGenerateMinutes: {entities.MeetingStateCompleted: true},
}

func (op Operation) Known() bool {
	_, ok := gates[op]
	return ok
}

// Allowed reports whether op is permitted in state, ignoring guards that
// depend on meeting contents.
func Allowed(state entities.MeetingState, op Operation) bool {
	return gates[op][state]
}

// CanTransition reports whether op is currently permitted for the meeting.
func CanTransition(meeting entities.Meeting, op Operation) bool {
	return Allowed(meeting.State(), op)
}

// Guard returns a *LifecycleError when op is not permitted.
func Guard(meeting entities.Meeting, op Operation) error {
	if CanTransition(meeting, op) {
		return nil
	}
	var cause error
	if meeting.IsCompleted && op == OpCompleteMeeting {
		cause = domainerrors.ErrMeetingAlreadyCompleted
	}
	if !meeting.IsCompleted && op == OpGenerateMinutes {
		cause = domainerrors.ErrMeetingNotCompleted
	}
	return blocked(meeting, op, cause)
}

// IsReadOnly reports whether op must not persist anything in this state.
// Quorum checks on a completed meeting recompute without writing.
func IsReadOnly(meeting entities.Meeting, op Operation) bool {
	return op == OpCheckQuorum && meeting.IsCompleted
}

// Complete returns the meeting moved to Completed. At least one decision is
// required.
func Complete(meeting entities.Meeting, decisionCount int, at time.Time) (entities.Meeting, error) {
	if err := Guard(meeting, OpCompleteMeeting); err != nil {
		return meeting, err
	}
	if decisionCount < 1 {
		return meeting, blocked(meeting, OpCompleteMeeting, domainerrors.ErrNoDecisions)
	}
	completedAt := at.UTC()
	meeting.IsCompleted = true
	meeting.CompletedAt = &completedAt
	meeting.UpdatedAt = completedAt
	return meeting, nil
}

type OperationGate struct {
	Operation Operation
	Permitted bool
	Reason    string
}

// Permitted lists every operation with its current gate, including the
// decision-count guard on completion.
func Permitted(meeting entities.Meeting, decisionCount int) []OperationGate {
	items := make([]OperationGate, 0, len(Operations))
	for _, op := range Operations {
		gate := OperationGate{Operation: op, Permitted: CanTransition(meeting, op)}
		if !gate.Permitted {
			gate.Reason = Guard(meeting, op).Error()
		}
		if gate.Permitted && op == OpCompleteMeeting && decisionCount < 1 {
			gate.Permitted = false
			gate.Reason = blocked(meeting, op, domainerrors.ErrNoDecisions).Error()
		}
		items = append(items, gate)
	}
	return items
}

func blocked(meeting entities.Meeting, op Operation, cause error) error {
	return &domainerrors.LifecycleError{
		MeetingID: meeting.MeetingID,
		Operation: string(op),
		State:     string(meeting.State()),
		Cause:     cause,
	}
}
