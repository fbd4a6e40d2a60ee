package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/application/commands"
	"condogov/contexts/assembly-governance/governance-engine/application/queries"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/proxylimit"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"
	httptransport "condogov/contexts/assembly-governance/governance-engine/transport/http"

	"github.com/shopspring/decimal"
)

const timestampLayout = time.RFC3339

type Handler struct {
	Meetings  commands.MeetingUseCase
	Proxies   commands.ProxyUseCase
	Decisions commands.DecisionUseCase
	Queries   queries.MeetingQueries
	Logger    *slog.Logger
}

func (h Handler) CreateMeetingHandler(
	ctx context.Context,
	userID string,
	idempotencyKey string,
	req httptransport.CreateMeetingRequest,
) (httptransport.MeetingResponse, error) {
	meetingDate, err := parseMeetingDate(req.MeetingDate)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	result, err := h.Meetings.CreateMeeting(ctx, commands.CreateMeetingCommand{
		ActorID:        userID,
		IdempotencyKey: idempotencyKey,
		SiteID:         req.SiteID,
		Title:          req.Title,
		Description:    req.Description,
		MeetingDate:    meetingDate,
	})
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	response := mapMeeting(result.Meeting)
	response.Replayed = result.Replayed
	return response, nil
}

func (h Handler) GetMeetingHandler(ctx context.Context, meetingID string) (httptransport.MeetingDetailResponse, error) {
	view, err := h.Queries.GetMeeting(ctx, meetingID)
	if err != nil {
		return httptransport.MeetingDetailResponse{}, err
	}
	snapshot := view.Snapshot
	response := httptransport.MeetingDetailResponse{
		Meeting:     mapMeeting(snapshot.Meeting),
		Quorum:      mapQuorum(view.Quorum, false),
		Attendances: make([]httptransport.AttendanceItem, 0, len(snapshot.Attendances)),
		Proxies:     mapProxies(snapshot.Proxies),
		AgendaItems: make([]httptransport.AgendaItemResponse, 0, len(snapshot.AgendaItems)),
		Documents:   make([]httptransport.DocumentResponse, 0, len(snapshot.Documents)),
		Decisions:   make([]httptransport.DecisionResponse, 0, len(snapshot.Decisions)),
	}
	for _, attendance := range snapshot.Attendances {
		response.Attendances = append(response.Attendances, mapAttendance(attendance))
	}
	for _, item := range snapshot.AgendaItems {
		response.AgendaItems = append(response.AgendaItems, mapAgendaItem(item))
	}
	for _, document := range snapshot.Documents {
		response.Documents = append(response.Documents, mapDocument(document))
	}
	for _, decision := range snapshot.Decisions {
		response.Decisions = append(response.Decisions, mapDecision(decision))
	}
	return response, nil
}

func (h Handler) GatesHandler(ctx context.Context, meetingID string) (httptransport.GatesResponse, error) {
	gates, err := h.Queries.Gates(ctx, meetingID)
	if err != nil {
		return httptransport.GatesResponse{}, err
	}
	items := make([]httptransport.GateItem, 0, len(gates))
	for _, gate := range gates {
		items = append(items, httptransport.GateItem{
			Operation: string(gate.Operation),
			Permitted: gate.Permitted,
			Reason:    gate.Reason,
		})
	}
	return httptransport.GatesResponse{MeetingID: strings.TrimSpace(meetingID), Items: items}, nil
}

func (h Handler) AddAttendanceHandler(
	ctx context.Context,
	meetingID string,
	req httptransport.AddAttendanceRequest,
) (httptransport.AddAttendanceResponse, error) {
	result, err := h.Meetings.AddAttendance(ctx, commands.AddAttendanceCommand{
		MeetingID: meetingID,
		UnitIDs:   req.UnitIDs,
	})
	if err != nil {
		return httptransport.AddAttendanceResponse{}, err
	}
	added := make([]string, 0, len(result.Added))
	for _, attendance := range result.Added {
		added = append(added, attendance.UnitID)
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return httptransport.AddAttendanceResponse{Added: added, Skipped: skipped}, nil
}

func (h Handler) EvaluateQuorumHandler(ctx context.Context, meetingID string) (httptransport.QuorumResponse, error) {
	result, err := h.Meetings.EvaluateQuorum(ctx, meetingID)
	if err != nil {
		return httptransport.QuorumResponse{}, err
	}
	return mapQuorum(result.Result, result.Persisted), nil
}

// GrantProxiesHandler returns the limit summary alongside a limit error so
// callers can render both axes.
func (h Handler) GrantProxiesHandler(
	ctx context.Context,
	meetingID string,
	req httptransport.GrantProxiesRequest,
) (httptransport.GrantProxiesResponse, error) {
	result, err := h.Proxies.GrantProxies(ctx, commands.GrantProxiesCommand{
		MeetingID:      meetingID,
		GiverUnitIDs:   req.GiverUnitIDs,
		ReceiverUnitID: req.ReceiverUnitID,
		ReceiverName:   req.ReceiverName,
		ReceiverPhone:  req.ReceiverPhone,
	})
	response := mapPlan(result.Plan)
	response.Proxies = mapProxies(result.Proxies)
	if result.Skipped != nil {
		response.Skipped = result.Skipped
	}
	return response, err
}

func (h Handler) PreviewProxiesHandler(
	ctx context.Context,
	meetingID string,
	req httptransport.GrantProxiesRequest,
) (httptransport.GrantProxiesResponse, error) {
	plan, err := h.Queries.PreviewProxies(ctx, queries.PreviewProxiesQuery{
		MeetingID:      meetingID,
		GiverUnitIDs:   req.GiverUnitIDs,
		ReceiverUnitID: req.ReceiverUnitID,
		ReceiverName:   req.ReceiverName,
		ReceiverPhone:  req.ReceiverPhone,
	})
	if err != nil {
		return httptransport.GrantProxiesResponse{}, err
	}
	return mapPlan(plan), nil
}

func (h Handler) MeetingProxyCapsHandler(ctx context.Context, meetingID string) (httptransport.ProxyCapsResponse, error) {
	caps, err := h.Queries.MeetingProxyCaps(ctx, meetingID)
	if err != nil {
		return httptransport.ProxyCapsResponse{}, err
	}
	return mapCaps(caps), nil
}

func (h Handler) ProxyCapsHandler(rawUnitCount int, rawLandShare string) (httptransport.ProxyCapsResponse, error) {
	landShare, err := decimal.NewFromString(strings.TrimSpace(rawLandShare))
	if err != nil {
		return httptransport.ProxyCapsResponse{}, domainerrors.ErrInvalidInput
	}
	caps, err := h.Queries.ProxyCaps(rawUnitCount, landShare)
	if err != nil {
		return httptransport.ProxyCapsResponse{}, err
	}
	return mapCaps(caps), nil
}

func (h Handler) AddAgendaItemHandler(
	ctx context.Context,
	meetingID string,
	req httptransport.AddAgendaItemRequest,
) (httptransport.AgendaItemResponse, error) {
	item, err := h.Meetings.AddAgendaItem(ctx, commands.AddAgendaItemCommand{
		MeetingID:   meetingID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	})
	if err != nil {
		return httptransport.AgendaItemResponse{}, err
	}
	return mapAgendaItem(item), nil
}

func (h Handler) AddDocumentHandler(
	ctx context.Context,
	meetingID string,
	req httptransport.AddDocumentRequest,
) (httptransport.DocumentResponse, error) {
	document, err := h.Meetings.AddDocument(ctx, commands.AddDocumentCommand{
		MeetingID: meetingID,
		Title:     req.Title,
		Type:      entities.DocumentType(strings.ToLower(strings.TrimSpace(req.Type))),
		Content:   req.Content,
	})
	if err != nil {
		return httptransport.DocumentResponse{}, err
	}
	return mapDocument(document), nil
}

func (h Handler) CreateDecisionHandler(
	ctx context.Context,
	idempotencyKey string,
	meetingID string,
	req httptransport.CreateDecisionRequest,
) (httptransport.DecisionResponse, error) {
	result, err := h.Decisions.CreateDecision(ctx, commands.CreateDecisionCommand{
		IdempotencyKey: idempotencyKey,
		MeetingID:      meetingID,
		Title:          req.Title,
		Description:    req.Description,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	response := mapDecision(result.Decision)
	response.Replayed = result.Replayed
	return response, nil
}

func (h Handler) CastVotesHandler(
	ctx context.Context,
	decisionID string,
	req httptransport.CastVotesRequest,
) (httptransport.DecisionResponse, error) {
	votes := make([]commands.VoteInput, 0, len(req.Votes))
	for _, item := range req.Votes {
		choice, ok := entities.ParseVoteChoice(item.Choice)
		if !ok {
			return httptransport.DecisionResponse{}, domainerrors.ErrInvalidInput
		}
		votes = append(votes, commands.VoteInput{UnitID: item.UnitID, Choice: choice})
	}
	result, err := h.Decisions.CastVotes(ctx, commands.CastVotesCommand{
		DecisionID: decisionID,
		Votes:      votes,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return mapDecision(result.Decision), nil
}

func (h Handler) SetDecisionTextHandler(
	ctx context.Context,
	decisionID string,
	req httptransport.SetDecisionTextRequest,
) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.SetDecisionText(ctx, commands.SetDecisionTextCommand{
		DecisionID: decisionID,
		Text:       req.Text,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return mapDecision(decision), nil
}

func (h Handler) CompleteMeetingHandler(ctx context.Context, meetingID string) (httptransport.MeetingResponse, error) {
	meeting, err := h.Meetings.CompleteMeeting(ctx, meetingID)
	if err != nil {
		return httptransport.MeetingResponse{}, err
	}
	return mapMeeting(meeting), nil
}

func (h Handler) CompileMinutesHandler(ctx context.Context, meetingID string) (httptransport.MinutesResponse, error) {
	result, err := h.Meetings.CompileMinutes(ctx, meetingID)
	if err != nil {
		return httptransport.MinutesResponse{}, err
	}
	response := httptransport.MinutesResponse{
		MeetingID: result.Meeting.MeetingID,
		Text:      result.Text,
		Replayed:  result.Replayed,
	}
	if result.Meeting.MinutesCompiledAt != nil {
		response.CompiledAt = result.Meeting.MinutesCompiledAt.UTC().Format(timestampLayout)
	}
	return response, nil
}

func parseMeetingDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, domainerrors.ErrInvalidInput
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, domainerrors.ErrInvalidInput
}

func formatOptionalTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(timestampLayout)
	return &formatted
}

func mapMeeting(meeting entities.Meeting) httptransport.MeetingResponse {
	return httptransport.MeetingResponse{
		MeetingID:          meeting.MeetingID,
		SiteID:             meeting.SiteID,
		Title:              meeting.Title,
		Description:        meeting.Description,
		MeetingDate:        meeting.MeetingDate.UTC().Format(timestampLayout),
		State:              string(meeting.State()),
		TotalUnitCount:     meeting.TotalUnitCount,
		TotalSiteLandShare: meeting.TotalSiteLandShare.StringFixed(2),
		AttendedUnitCount:  meeting.AttendedUnitCount,
		AttendedLandShare:  meeting.AttendedLandShare.StringFixed(2),
		QuorumAchieved:     meeting.QuorumAchieved,
		CompletedAt:        formatOptionalTime(meeting.CompletedAt),
		MinutesCompiledAt:  formatOptionalTime(meeting.MinutesCompiledAt),
	}
}

func mapQuorum(result quorum.Result, persisted bool) httptransport.QuorumResponse {
	return httptransport.QuorumResponse{
		Achieved:          result.Achieved,
		UnitsAchieved:     result.UnitsAchieved,
		LandShareAchieved: result.LandShareAchieved,
		UnitPercent:       result.UnitPercent.StringFixed(1),
		LandSharePercent:  result.LandSharePercent.StringFixed(1),
		Message:           result.Message,
		Persisted:         persisted,
	}
}

func mapAttendance(attendance entities.Attendance) httptransport.AttendanceItem {
	return httptransport.AttendanceItem{
		UnitID:  attendance.UnitID,
		IsProxy: attendance.IsProxy,
		ProxyID: attendance.ProxyID,
	}
}

func mapProxies(proxies []entities.Proxy) []httptransport.ProxyItem {
	items := make([]httptransport.ProxyItem, 0, len(proxies))
	for _, proxy := range proxies {
		item := httptransport.ProxyItem{
			ProxyID:      proxy.ProxyID,
			GiverUnitID:  proxy.GiverUnitID,
			ReceiverKind: string(proxy.Receiver.Kind()),
		}
		if unitID, ok := proxy.Receiver.UnitID(); ok {
			item.ReceiverUnitID = unitID
		}
		if name, phone, ok := proxy.Receiver.External(); ok {
			item.ReceiverName = name
			item.ReceiverPhone = proxylimit.FormatMobile(phone)
		}
		items = append(items, item)
	}
	return items
}

func mapPlan(plan proxylimit.Plan) httptransport.GrantProxiesResponse {
	accepted := make([]string, 0, len(plan.Accepted))
	for _, unit := range plan.Accepted {
		accepted = append(accepted, unit.UnitID)
	}
	skipped := make([]string, 0, len(plan.Skipped))
	for _, unit := range plan.Skipped {
		skipped = append(skipped, unit.UnitID)
	}
	return httptransport.GrantProxiesResponse{
		Proxies:  []httptransport.ProxyItem{},
		Accepted: accepted,
		Skipped:  skipped,
		Limits: httptransport.ProxyLimitsResponse{
			CountAfter:        plan.Limits.CountAfter,
			MaxCount:          plan.Limits.MaxCount,
			LandShareAfter:    plan.Limits.LandShareAfter.StringFixed(2),
			MaxLandShare:      plan.Limits.MaxLandShare.StringFixed(2),
			CountExceeded:     plan.Limits.CountExceeded,
			LandShareExceeded: plan.Limits.LandShareExceeded,
			Message:           plan.Limits.Message(),
		},
	}
}

func mapCaps(caps queries.ProxyCaps) httptransport.ProxyCapsResponse {
	return httptransport.ProxyCapsResponse{
		TotalUnitCount: caps.TotalUnitCount,
		TotalLandShare: caps.TotalLandShare.StringFixed(2),
		MaxCount:       caps.MaxCount,
		MaxLandShare:   caps.MaxLandShare.StringFixed(2),
	}
}

func mapAgendaItem(item entities.AgendaItem) httptransport.AgendaItemResponse {
	return httptransport.AgendaItemResponse{
		AgendaItemID: item.AgendaItemID,
		Title:        item.Title,
		Description:  item.Description,
		Order:        item.Order,
	}
}

func mapDocument(document entities.Document) httptransport.DocumentResponse {
	return httptransport.DocumentResponse{
		DocumentID: document.DocumentID,
		Title:      document.Title,
		Type:       string(document.Type),
		TypeLabel:  document.Type.Label(),
	}
}

func mapDecision(decision entities.Decision) httptransport.DecisionResponse {
	return httptransport.DecisionResponse{
		DecisionID:   decision.DecisionID,
		MeetingID:    decision.MeetingID,
		Title:        decision.Title,
		Description:  decision.Description,
		DecisionText: decision.DecisionText,
		Tally: httptransport.TallyResponse{
			YesVotes:         decision.Tally.YesVotes,
			NoVotes:          decision.Tally.NoVotes,
			AbstainVotes:     decision.Tally.AbstainVotes,
			YesLandShare:     decision.Tally.YesLandShare.StringFixed(2),
			NoLandShare:      decision.Tally.NoLandShare.StringFixed(2),
			AbstainLandShare: decision.Tally.AbstainLandShare.StringFixed(2),
		},
		IsApproved: decision.IsApproved,
	}
}
