package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is an in-process implementation of every governance port. Writes
// hold the lock for their full duration so each call is atomic.
type Store struct {
	mu sync.RWMutex

	sites       map[string]entities.Site
	units       map[string]entities.Unit
	meetings    map[string]entities.Meeting
	attendances map[string]map[string]entities.Attendance
	proxies     map[string][]entities.Proxy
	agenda      map[string][]entities.AgendaItem
	documents   map[string][]entities.Document
	decisions   map[string]entities.Decision
	votes       map[string]map[string]entities.Vote
	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		sites:       make(map[string]entities.Site),
		units:       make(map[string]entities.Unit),
		meetings:    make(map[string]entities.Meeting),
		attendances: make(map[string]map[string]entities.Attendance),
		proxies:     make(map[string][]entities.Proxy),
		agenda:      make(map[string][]entities.AgendaItem),
		documents:   make(map[string][]entities.Document),
		decisions:   make(map[string]entities.Decision),
		votes:       make(map[string]map[string]entities.Vote),
		idempotency: make(map[string]ports.IdempotencyRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SetSite(site entities.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	site.SiteID = strings.TrimSpace(site.SiteID)
	s.sites[site.SiteID] = site
}

func (s *Store) SetUnit(unit entities.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit.UnitID = strings.TrimSpace(unit.UnitID)
	unit.SiteID = strings.TrimSpace(unit.SiteID)
	s.units[unit.UnitID] = unit
}

func (s *Store) GetSite(_ context.Context, siteID string) (entities.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	site, ok := s.sites[strings.TrimSpace(siteID)]
	if !ok {
		return entities.Site{}, domainerrors.ErrSiteNotFound
	}
	return site, nil
}

func (s *Store) ListUnits(_ context.Context, siteID string) ([]entities.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	siteID = strings.TrimSpace(siteID)
	items := make([]entities.Unit, 0)
	for _, unit := range s.units {
		if unit.SiteID == siteID {
			items = append(items, unit)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UnitID < items[j].UnitID
	})
	return items, nil
}

func (s *Store) GetMeeting(_ context.Context, meetingID string) (entities.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return entities.Meeting{}, domainerrors.ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *Store) GetMeetingSnapshot(_ context.Context, meetingID string) (entities.MeetingSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meetingID = strings.TrimSpace(meetingID)
	meeting, ok := s.meetings[meetingID]
	if !ok {
		return entities.MeetingSnapshot{}, domainerrors.ErrMeetingNotFound
	}
	snapshot := entities.MeetingSnapshot{
		Meeting:     meeting,
		Attendances: make([]entities.Attendance, 0, len(s.attendances[meetingID])),
		Proxies:     append([]entities.Proxy(nil), s.proxies[meetingID]...),
		AgendaItems: append([]entities.AgendaItem(nil), s.agenda[meetingID]...),
		Documents:   append([]entities.Document(nil), s.documents[meetingID]...),
		Decisions:   make([]entities.Decision, 0),
		Votes:       make([]entities.Vote, 0),
	}
	for _, attendance := range s.attendances[meetingID] {
		snapshot.Attendances = append(snapshot.Attendances, attendance)
	}
	sort.Slice(snapshot.Attendances, func(i, j int) bool {
		return snapshot.Attendances[i].UnitID < snapshot.Attendances[j].UnitID
	})
	for _, decision := range s.decisions {
		if decision.MeetingID != meetingID {
			continue
		}
		snapshot.Decisions = append(snapshot.Decisions, decision)
		for _, vote := range s.votes[decision.DecisionID] {
			snapshot.Votes = append(snapshot.Votes, vote)
		}
	}
	entities.SortProxies(snapshot.Proxies)
	entities.SortAgendaItems(snapshot.AgendaItems)
	entities.SortDecisions(snapshot.Decisions)
	sort.SliceStable(snapshot.Documents, func(i, j int) bool {
		return snapshot.Documents[i].CreatedAt.Before(snapshot.Documents[j].CreatedAt)
	})
	sort.Slice(snapshot.Votes, func(i, j int) bool {
		if snapshot.Votes[i].DecisionID == snapshot.Votes[j].DecisionID {
			return snapshot.Votes[i].UnitID < snapshot.Votes[j].UnitID
		}
		return snapshot.Votes[i].DecisionID < snapshot.Votes[j].DecisionID
	})
	return snapshot, nil
}

func (s *Store) GetDecision(_ context.Context, decisionID string) (entities.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	decision, ok := s.decisions[strings.TrimSpace(decisionID)]
	if !ok {
		return entities.Decision{}, domainerrors.ErrDecisionNotFound
	}
	return decision, nil
}

func (s *Store) CreateMeeting(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.meetings[meeting.MeetingID]; exists {
		return domainerrors.ErrConflict
	}
	s.meetings[meeting.MeetingID] = meeting
	return nil
}

func (s *Store) SaveQuorum(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.meetings[meeting.MeetingID]
	if !ok {
		return domainerrors.ErrMeetingNotFound
	}
	if stored.IsCompleted {
		return domainerrors.ErrConflict
	}
	stored.AttendedUnitCount = meeting.AttendedUnitCount
	stored.AttendedLandShare = meeting.AttendedLandShare
	stored.QuorumAchieved = meeting.QuorumAchieved
	stored.UpdatedAt = meeting.UpdatedAt
	s.meetings[meeting.MeetingID] = stored
	return nil
}

func (s *Store) AddAttendances(_ context.Context, meetingID string, attendances []entities.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(meetingID); err != nil {
		return err
	}
	rows := s.attendanceRowsLocked(meetingID)
	seen := make(map[string]struct{}, len(attendances))
	for _, attendance := range attendances {
		if _, exists := rows[attendance.UnitID]; exists {
			return domainerrors.ErrConflict
		}
		if _, dup := seen[attendance.UnitID]; dup {
			return domainerrors.ErrConflict
		}
		seen[attendance.UnitID] = struct{}{}
	}
	for _, attendance := range attendances {
		rows[attendance.UnitID] = attendance
	}
	return nil
}

// AddProxies appends proxies and upserts attendance rows keyed by unit.
func (s *Store) AddProxies(
	_ context.Context,
	meetingID string,
	proxies []entities.Proxy,
	attendances []entities.Attendance,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(meetingID); err != nil {
		return err
	}
	givers := make(map[string]struct{}, len(s.proxies[meetingID])+len(proxies))
	for _, proxy := range s.proxies[meetingID] {
		givers[proxy.GiverUnitID] = struct{}{}
	}
	for _, proxy := range proxies {
		if _, exists := givers[proxy.GiverUnitID]; exists {
			return domainerrors.ErrConflict
		}
		givers[proxy.GiverUnitID] = struct{}{}
	}
	s.proxies[meetingID] = append(s.proxies[meetingID], proxies...)
	rows := s.attendanceRowsLocked(meetingID)
	for _, attendance := range attendances {
		if existing, ok := rows[attendance.UnitID]; ok {
			attendance.AttendanceID = existing.AttendanceID
			attendance.CreatedAt = existing.CreatedAt
		}
		rows[attendance.UnitID] = attendance
	}
	return nil
}

func (s *Store) AddAgendaItem(_ context.Context, item entities.AgendaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(item.MeetingID); err != nil {
		return err
	}
	s.agenda[item.MeetingID] = append(s.agenda[item.MeetingID], item)
	return nil
}

func (s *Store) AddDocument(_ context.Context, document entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(document.MeetingID); err != nil {
		return err
	}
	s.documents[document.MeetingID] = append(s.documents[document.MeetingID], document)
	return nil
}

func (s *Store) CreateDecision(_ context.Context, decision entities.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(decision.MeetingID); err != nil {
		return err
	}
	if _, exists := s.decisions[decision.DecisionID]; exists {
		return domainerrors.ErrConflict
	}
	s.decisions[decision.DecisionID] = decision
	return nil
}

// ReplaceVotes swaps the decision's vote set and tallies in one step.
func (s *Store) ReplaceVotes(_ context.Context, decision entities.Decision, votes []entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.decisions[decision.DecisionID]
	if !ok {
		return domainerrors.ErrDecisionNotFound
	}
	if err := s.requireDraftLocked(stored.MeetingID); err != nil {
		return err
	}
	rows := make(map[string]entities.Vote, len(votes))
	for _, vote := range votes {
		rows[vote.UnitID] = vote
	}
	stored.Tally = decision.Tally
	stored.IsApproved = decision.IsApproved
	stored.UpdatedAt = decision.UpdatedAt
	s.decisions[decision.DecisionID] = stored
	s.votes[decision.DecisionID] = rows
	return nil
}

func (s *Store) UpdateDecisionText(_ context.Context, decisionID string, text string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.decisions[strings.TrimSpace(decisionID)]
	if !ok {
		return domainerrors.ErrDecisionNotFound
	}
	if err := s.requireDraftLocked(stored.MeetingID); err != nil {
		return err
	}
	stored.DecisionText = text
	stored.UpdatedAt = updatedAt
	s.decisions[stored.DecisionID] = stored
	return nil
}

func (s *Store) CompleteMeeting(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDraftLocked(meeting.MeetingID); err != nil {
		return err
	}
	s.meetings[meeting.MeetingID] = meeting
	return nil
}

func (s *Store) SaveMinutes(
	_ context.Context,
	meetingID string,
	text string,
	compiledAt time.Time,
) (entities.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meetingID = strings.TrimSpace(meetingID)
	stored, ok := s.meetings[meetingID]
	if !ok {
		return entities.Meeting{}, domainerrors.ErrMeetingNotFound
	}
	if !stored.IsCompleted {
		return entities.Meeting{}, domainerrors.ErrConflict
	}
	if stored.HasMinutes() {
		return stored, nil
	}
	compiledAt = compiledAt.UTC()
	stored.Minutes = text
	stored.MinutesCompiledAt = &compiledAt
	stored.UpdatedAt = compiledAt
	s.meetings[meetingID] = stored
	return stored, nil
}

func (s *Store) requireDraftLocked(meetingID string) error {
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return domainerrors.ErrMeetingNotFound
	}
	if meeting.IsCompleted {
		return domainerrors.ErrConflict
	}
	return nil
}

func (s *Store) attendanceRowsLocked(meetingID string) map[string]entities.Attendance {
	rows, ok := s.attendances[meetingID]
	if !ok {
		rows = make(map[string]entities.Attendance)
		s.attendances[meetingID] = rows
	}
	return rows
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(record.Key)
	existing, exists := s.idempotency[key]
	if exists {
		if existing.RequestHash != record.RequestHash || existing.ResourceID != record.ResourceID {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[key] = ports.IdempotencyRecord{
		Key:         key,
		RequestHash: strings.TrimSpace(record.RequestHash),
		ResourceID:  strings.TrimSpace(record.ResourceID),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.SiteRepository = (*Store)(nil)
var _ ports.MeetingRepository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
