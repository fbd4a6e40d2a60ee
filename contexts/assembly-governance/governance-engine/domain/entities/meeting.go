package entities

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type MeetingState string

const (
	MeetingStateDraft     MeetingState = "draft"
	MeetingStateCompleted MeetingState = "completed"
)

// Meeting is a general-assembly meeting. TotalUnitCount and
// TotalSiteLandShare are snapshotted at creation and never recomputed.
type Meeting struct {
	MeetingID          string
	SiteID             string
	Title              string
	Description        string
	MeetingDate        time.Time
	TotalUnitCount     int
	TotalSiteLandShare decimal.Decimal
	AttendedUnitCount  int
	AttendedLandShare  decimal.Decimal
	QuorumAchieved     bool
	IsCompleted        bool
	CompletedAt        *time.Time
	Minutes            string
	MinutesCompiledAt  *time.Time
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (m Meeting) State() MeetingState {
	if m.IsCompleted {
		return MeetingStateCompleted
	}
	return MeetingStateDraft
}

func (m Meeting) HasMinutes() bool {
	return m.MinutesCompiledAt != nil && m.Minutes != ""
}

// Attendance marks a unit present at a meeting. At most one row exists per
// (meeting, unit). Proxy-backed rows reference the authorizing proxy.
type Attendance struct {
	AttendanceID string
	MeetingID    string
	UnitID       string
	IsProxy      bool
	ProxyID      string
	CreatedAt    time.Time
}

type AgendaItem struct {
	AgendaItemID string
	MeetingID    string
	Title        string
	Description  string
	Order        int
	CreatedAt    time.Time
}

type DocumentType string

const (
	DocumentTypeActivityReport DocumentType = "activity_report"
	DocumentTypeAuditorReport  DocumentType = "auditor_report"
	DocumentTypeOther          DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeActivityReport, DocumentTypeAuditorReport, DocumentTypeOther:
		return true
	default:
		return false
	}
}

// Label returns the official Turkish document category.
func (t DocumentType) Label() string {
	switch t {
	case DocumentTypeActivityReport:
		return "Genel Kurul İcraat Raporu"
	case DocumentTypeAuditorReport:
		return "Denetçi Raporu"
	default:
		return "Diğer"
	}
}

type Document struct {
	DocumentID string
	MeetingID  string
	Title      string
	Type       DocumentType
	Content    string
	CreatedAt  time.Time
}

// MeetingSnapshot is the full aggregate loaded for one meeting.
type MeetingSnapshot struct {
	Meeting     Meeting
	Attendances []Attendance
	Proxies     []Proxy
	AgendaItems []AgendaItem
	Documents   []Document
	Decisions   []Decision
	Votes       []Vote
}

func (s MeetingSnapshot) VotesFor(decisionID string) []Vote {
	items := make([]Vote, 0)
	for _, vote := range s.Votes {
		if vote.DecisionID == decisionID {
			items = append(items, vote)
		}
	}
	return items
}

func (s MeetingSnapshot) AttendanceFor(unitID string) (Attendance, bool) {
	for _, attendance := range s.Attendances {
		if attendance.UnitID == unitID {
			return attendance, true
		}
	}
	return Attendance{}, false
}

func (s MeetingSnapshot) FindDecision(decisionID string) (Decision, bool) {
	for _, decision := range s.Decisions {
		if decision.DecisionID == decisionID {
			return decision, true
		}
	}
	return Decision{}, false
}

// SortAgendaItems orders agenda items by their explicit order, then creation.
func SortAgendaItems(items []AgendaItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order == items[j].Order {
			if items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].AgendaItemID < items[j].AgendaItemID
			}
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].Order < items[j].Order
	})
}
