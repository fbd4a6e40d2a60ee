package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "condogov/contexts/assembly-governance/governance-engine/application"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"
	"condogov/contexts/assembly-governance/governance-engine/domain/minutes"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	contractsv1 "condogov/contracts/gen/events/v1"

	"github.com/shopspring/decimal"
)

type CreateMeetingCommand struct {
	ActorID        string
	IdempotencyKey string
	SiteID         string
	Title          string
	Description    string
	MeetingDate    time.Time
}

type CreateMeetingResult struct {
	Meeting  entities.Meeting
	Replayed bool
}

type AddAttendanceCommand struct {
	MeetingID string
	UnitIDs   []string
}

// AddAttendanceResult lists new rows and the unit ids that already attended.
type AddAttendanceResult struct {
	Added   []entities.Attendance
	Skipped []string
}

type QuorumResult struct {
	Meeting   entities.Meeting
	Result    quorum.Result
	Persisted bool
}

type AddAgendaItemCommand struct {
	MeetingID   string
	Title       string
	Description string
	Order       int
}

type AddDocumentCommand struct {
	MeetingID string
	Title     string
	Type      entities.DocumentType
	Content   string
}

type CompileMinutesResult struct {
	Meeting  entities.Meeting
	Text     string
	Replayed bool
}

// MeetingUseCase orchestrates meeting-level governance operations. Every
// mutation is gated by the meeting lifecycle and written in one repository
// call. Minutes timestamps are rendered in MinutesLocation, UTC when nil.
type MeetingUseCase struct {
	Sites           ports.SiteRepository
	Meetings        ports.MeetingRepository
	Idempotency     ports.IdempotencyStore
	Outbox          ports.OutboxWriter
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	IdempotencyTTL  time.Duration
	MinutesLocation *time.Location
	Logger          *slog.Logger
}

// CreateMeeting snapshots the site's active unit count and land share into a
// new draft meeting. The site's recorded total land share is used when set,
// otherwise the sum of active unit shares.
func (uc MeetingUseCase) CreateMeeting(ctx context.Context, cmd CreateMeetingCommand) (CreateMeetingResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("meeting create processing started",
		"event", "governance_meeting_create_started",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"site_id", strings.TrimSpace(cmd.SiteID),
		"actor_id", strings.TrimSpace(cmd.ActorID),
	)
	if strings.TrimSpace(cmd.SiteID) == "" ||
		!requiredWithin(cmd.Title, maxMeetingTitleLength) ||
		!optionalWithin(cmd.Description, maxMeetingDescriptionLength) ||
		cmd.MeetingDate.IsZero() {
		logger.Warn("meeting create validation failed",
			"event", "governance_meeting_create_validation_failed",
			"module", "assembly-governance/governance-engine",
			"layer", "application",
			"site_id", strings.TrimSpace(cmd.SiteID),
		)
		return CreateMeetingResult{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	requestHash := hashCommand(cmd)
	key := strings.TrimSpace(cmd.IdempotencyKey)
	if key != "" && uc.Idempotency != nil {
		record, found, err := uc.Idempotency.Get(ctx, key, now)
		if err != nil {
			return CreateMeetingResult{}, err
		}
		if found {
			if record.RequestHash != requestHash {
				logger.Warn("meeting create idempotency conflict",
					"event", "governance_meeting_create_idempotency_conflict",
					"module", "assembly-governance/governance-engine",
					"layer", "application",
					"idempotency_key", key,
				)
				return CreateMeetingResult{}, domainerrors.ErrIdempotencyConflict
			}
			meeting, err := uc.Meetings.GetMeeting(ctx, record.ResourceID)
			if err != nil {
				return CreateMeetingResult{}, err
			}
			logger.Info("meeting create replayed",
				"event", "governance_meeting_create_replayed",
				"module", "assembly-governance/governance-engine",
				"layer", "application",
				"meeting_id", meeting.MeetingID,
			)
			return CreateMeetingResult{Meeting: meeting, Replayed: true}, nil
		}
	}

	site, err := uc.Sites.GetSite(ctx, strings.TrimSpace(cmd.SiteID))
	if err != nil {
		return CreateMeetingResult{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, site.SiteID)
	if err != nil {
		return CreateMeetingResult{}, err
	}
	active := entities.IndexActiveUnits(units)
	totalLandShare := site.TotalLandShare
	if !totalLandShare.IsPositive() {
		totalLandShare = active.TotalLandShare()
	}

	meetingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CreateMeetingResult{}, err
	}
	meeting := entities.Meeting{
		MeetingID:          meetingID,
		SiteID:             site.SiteID,
		Title:              strings.TrimSpace(cmd.Title),
		Description:        strings.TrimSpace(cmd.Description),
		MeetingDate:        cmd.MeetingDate,
		TotalUnitCount:     len(active),
		TotalSiteLandShare: totalLandShare,
		AttendedLandShare:  decimal.Zero,
		CreatedBy:          strings.TrimSpace(cmd.ActorID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.Meetings.CreateMeeting(ctx, meeting); err != nil {
		return CreateMeetingResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventMeetingCreated, meeting.MeetingID, now, map[string]any{
		"meeting_id":            meeting.MeetingID,
		"site_id":               meeting.SiteID,
		"title":                 meeting.Title,
		"meeting_date":          meeting.MeetingDate.UTC(),
		"total_unit_count":      meeting.TotalUnitCount,
		"total_site_land_share": meeting.TotalSiteLandShare.StringFixed(2),
	}); err != nil {
		return CreateMeetingResult{}, err
	}
	if key != "" && uc.Idempotency != nil {
		if err := uc.Idempotency.Put(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			ResourceID:  meeting.MeetingID,
			ExpiresAt:   now.Add(resolveTTL(uc.IdempotencyTTL)),
		}); err != nil {
			return CreateMeetingResult{}, err
		}
	}

	logger.Info("meeting created",
		"event", "governance_meeting_created",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"site_id", meeting.SiteID,
		"total_unit_count", meeting.TotalUnitCount,
		"total_site_land_share", meeting.TotalSiteLandShare.StringFixed(2),
	)
	return CreateMeetingResult{Meeting: meeting}, nil
}

// AddAttendance records units as present. Units already attending are
// reported as skipped rather than duplicated.
func (uc MeetingUseCase) AddAttendance(ctx context.Context, cmd AddAttendanceCommand) (AddAttendanceResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	unitIDs := trimAll(cmd.UnitIDs)
	if strings.TrimSpace(cmd.MeetingID) == "" || len(unitIDs) == 0 {
		return AddAttendanceResult{}, domainerrors.ErrInvalidInput
	}

	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return AddAttendanceResult{}, err
	}
	if err := lifecycle.Guard(snapshot.Meeting, lifecycle.OpAddAttendance); err != nil {
		uc.logBlocked(logger, snapshot.Meeting, lifecycle.OpAddAttendance)
		return AddAttendanceResult{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return AddAttendanceResult{}, err
	}
	index := entities.IndexActiveUnits(units)

	now := uc.now()
	result := AddAttendanceResult{}
	seen := make(map[string]struct{}, len(unitIDs))
	for _, unitID := range unitIDs {
		if _, dup := seen[unitID]; dup {
			continue
		}
		seen[unitID] = struct{}{}
		if _, ok := index.Lookup(unitID); !ok {
			return AddAttendanceResult{}, domainerrors.ErrUnitNotFound
		}
		if _, attending := snapshot.AttendanceFor(unitID); attending {
			result.Skipped = append(result.Skipped, unitID)
			continue
		}
		attendanceID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return AddAttendanceResult{}, err
		}
		result.Added = append(result.Added, entities.Attendance{
			AttendanceID: attendanceID,
			MeetingID:    snapshot.Meeting.MeetingID,
			UnitID:       unitID,
			CreatedAt:    now,
		})
	}
	if len(result.Added) == 0 {
		return result, nil
	}
	if err := uc.Meetings.AddAttendances(ctx, snapshot.Meeting.MeetingID, result.Added); err != nil {
		return AddAttendanceResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventAttendanceAdded, snapshot.Meeting.MeetingID, now, map[string]any{
		"meeting_id":  snapshot.Meeting.MeetingID,
		"added_count": len(result.Added),
	}); err != nil {
		return AddAttendanceResult{}, err
	}

	logger.Info("meeting attendance added",
		"event", "governance_attendance_added",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", snapshot.Meeting.MeetingID,
		"added_count", len(result.Added),
		"skipped_count", len(result.Skipped),
	)
	return result, nil
}

// EvaluateQuorum recomputes attended counters from the attendance snapshot.
// Draft meetings persist the result; completed meetings only report it.
func (uc MeetingUseCase) EvaluateQuorum(ctx context.Context, meetingID string) (QuorumResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(meetingID) == "" {
		return QuorumResult{}, domainerrors.ErrInvalidInput
	}
	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return QuorumResult{}, err
	}
	if err := lifecycle.Guard(snapshot.Meeting, lifecycle.OpCheckQuorum); err != nil {
		return QuorumResult{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return QuorumResult{}, err
	}

	in := quorum.FromAttendance(snapshot.Meeting, snapshot.Attendances, units)
	result := quorum.Evaluate(in)
	updated := quorum.Apply(snapshot.Meeting, in, result)
	if lifecycle.IsReadOnly(snapshot.Meeting, lifecycle.OpCheckQuorum) {
		return QuorumResult{Meeting: updated, Result: result}, nil
	}

	now := uc.now()
	updated.UpdatedAt = now
	if err := uc.Meetings.SaveQuorum(ctx, updated); err != nil {
		return QuorumResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventQuorumEvaluated, updated.MeetingID, now, map[string]any{
		"meeting_id":          updated.MeetingID,
		"achieved":            result.Achieved,
		"attended_unit_count": updated.AttendedUnitCount,
		"attended_land_share": updated.AttendedLandShare.StringFixed(2),
	}); err != nil {
		return QuorumResult{}, err
	}

	logger.Info("meeting quorum evaluated",
		"event", "governance_quorum_evaluated",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", updated.MeetingID,
		"achieved", result.Achieved,
		"unit_percent", result.UnitPercent.StringFixed(1),
		"land_share_percent", result.LandSharePercent.StringFixed(1),
	)
	return QuorumResult{Meeting: updated, Result: result, Persisted: true}, nil
}

func (uc MeetingUseCase) AddAgendaItem(ctx context.Context, cmd AddAgendaItemCommand) (entities.AgendaItem, error) {
	if strings.TrimSpace(cmd.MeetingID) == "" ||
		!requiredWithin(cmd.Title, maxAgendaTitleLength) ||
		!optionalWithin(cmd.Description, maxMeetingDescriptionLength) ||
		cmd.Order < 0 {
		return entities.AgendaItem{}, domainerrors.ErrInvalidInput
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.AgendaItem{}, err
	}
	if err := lifecycle.Guard(meeting, lifecycle.OpEditAgenda); err != nil {
		uc.logBlocked(application.ResolveLogger(uc.Logger), meeting, lifecycle.OpEditAgenda)
		return entities.AgendaItem{}, err
	}
	itemID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.AgendaItem{}, err
	}
	item := entities.AgendaItem{
		AgendaItemID: itemID,
		MeetingID:    meeting.MeetingID,
		Title:        strings.TrimSpace(cmd.Title),
		Description:  strings.TrimSpace(cmd.Description),
		Order:        cmd.Order,
		CreatedAt:    uc.now(),
	}
	if err := uc.Meetings.AddAgendaItem(ctx, item); err != nil {
		return entities.AgendaItem{}, err
	}
	return item, nil
}

func (uc MeetingUseCase) AddDocument(ctx context.Context, cmd AddDocumentCommand) (entities.Document, error) {
	if strings.TrimSpace(cmd.MeetingID) == "" ||
		!requiredWithin(cmd.Title, maxDocumentTitleLength) ||
		!cmd.Type.Valid() {
		return entities.Document{}, domainerrors.ErrInvalidInput
	}
	meeting, err := uc.Meetings.GetMeeting(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return entities.Document{}, err
	}
	if err := lifecycle.Guard(meeting, lifecycle.OpEditDocuments); err != nil {
		uc.logBlocked(application.ResolveLogger(uc.Logger), meeting, lifecycle.OpEditDocuments)
		return entities.Document{}, err
	}
	documentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Document{}, err
	}
	document := entities.Document{
		DocumentID: documentID,
		MeetingID:  meeting.MeetingID,
		Title:      strings.TrimSpace(cmd.Title),
		Type:       cmd.Type,
		Content:    cmd.Content,
		CreatedAt:  uc.now(),
	}
	if err := uc.Meetings.AddDocument(ctx, document); err != nil {
		return entities.Document{}, err
	}
	return document, nil
}

// CompleteMeeting moves a draft meeting with at least one decision to
// Completed, storing the final quorum counters in the same write.
func (uc MeetingUseCase) CompleteMeeting(ctx context.Context, meetingID string) (entities.Meeting, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(meetingID) == "" {
		return entities.Meeting{}, domainerrors.ErrInvalidInput
	}
	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return entities.Meeting{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return entities.Meeting{}, err
	}

	now := uc.now()
	completed, err := lifecycle.Complete(snapshot.Meeting, len(snapshot.Decisions), now)
	if err != nil {
		logger.Warn("meeting completion rejected",
			"event", "governance_meeting_complete_rejected",
			"module", "assembly-governance/governance-engine",
			"layer", "application",
			"meeting_id", snapshot.Meeting.MeetingID,
			"decision_count", len(snapshot.Decisions),
			"error", err.Error(),
		)
		return entities.Meeting{}, err
	}
	in := quorum.FromAttendance(completed, snapshot.Attendances, units)
	completed = quorum.Apply(completed, in, quorum.Evaluate(in))

	if err := uc.Meetings.CompleteMeeting(ctx, completed); err != nil {
		return entities.Meeting{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventMeetingCompleted, completed.MeetingID, now, map[string]any{
		"meeting_id":      completed.MeetingID,
		"quorum_achieved": completed.QuorumAchieved,
		"decision_count":  len(snapshot.Decisions),
		"completed_at":    now.UTC(),
	}); err != nil {
		return entities.Meeting{}, err
	}

	logger.Info("meeting completed",
		"event", "governance_meeting_completed",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", completed.MeetingID,
		"decision_count", len(snapshot.Decisions),
		"quorum_achieved", completed.QuorumAchieved,
	)
	return completed, nil
}

// CompileMinutes renders and stores the minutes of a completed meeting. The
// text is written once; later calls return the stored text.
func (uc MeetingUseCase) CompileMinutes(ctx context.Context, meetingID string) (CompileMinutesResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(meetingID) == "" {
		return CompileMinutesResult{}, domainerrors.ErrInvalidInput
	}
	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return CompileMinutesResult{}, err
	}
	if err := lifecycle.Guard(snapshot.Meeting, lifecycle.OpGenerateMinutes); err != nil {
		uc.logBlocked(logger, snapshot.Meeting, lifecycle.OpGenerateMinutes)
		return CompileMinutesResult{}, err
	}
	if snapshot.Meeting.HasMinutes() {
		return CompileMinutesResult{Meeting: snapshot.Meeting, Text: snapshot.Meeting.Minutes, Replayed: true}, nil
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return CompileMinutesResult{}, err
	}

	now := uc.now()
	text := minutes.Compile(minutes.Input{
		Meeting:    snapshot.Meeting,
		Units:      units,
		Proxies:    snapshot.Proxies,
		Decisions:  snapshot.Decisions,
		CompiledAt: now,
		Location:   uc.MinutesLocation,
	})
	stored, err := uc.Meetings.SaveMinutes(ctx, snapshot.Meeting.MeetingID, text, now)
	if err != nil {
		return CompileMinutesResult{}, err
	}
	if stored.Minutes != text {
		logger.Info("meeting minutes already stored",
			"event", "governance_minutes_already_stored",
			"module", "assembly-governance/governance-engine",
			"layer", "application",
			"meeting_id", stored.MeetingID,
			"body_matches", minutes.StripCompiledAt(stored.Minutes) == minutes.StripCompiledAt(text),
		)
		return CompileMinutesResult{Meeting: stored, Text: stored.Minutes, Replayed: true}, nil
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventMinutesCompiled, stored.MeetingID, now, map[string]any{
		"meeting_id":     stored.MeetingID,
		"compiled_at":    now.UTC(),
		"minutes_length": len(text),
	}); err != nil {
		return CompileMinutesResult{}, err
	}

	logger.Info("meeting minutes compiled",
		"event", "governance_minutes_compiled",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", stored.MeetingID,
		"proxy_count", len(snapshot.Proxies),
		"decision_count", len(snapshot.Decisions),
	)
	return CompileMinutesResult{Meeting: stored, Text: text}, nil
}

func (uc MeetingUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc MeetingUseCase) logBlocked(logger *slog.Logger, meeting entities.Meeting, op lifecycle.Operation) {
	logger.Warn("meeting operation blocked by lifecycle",
		"event", "governance_operation_blocked",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", meeting.MeetingID,
		"operation", string(op),
		"state", string(meeting.State()),
	)
}
