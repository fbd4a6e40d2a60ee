package queries

import (
	"context"
	"strings"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"
	"condogov/contexts/assembly-governance/governance-engine/domain/proxylimit"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"
	"condogov/contexts/assembly-governance/governance-engine/ports"

	"github.com/shopspring/decimal"
)

// MeetingView is a meeting aggregate with its current quorum reading.
type MeetingView struct {
	Snapshot entities.MeetingSnapshot
	Quorum   quorum.Result
}

type ProxyCaps struct {
	TotalUnitCount int
	TotalLandShare decimal.Decimal
	MaxCount       int
	MaxLandShare   decimal.Decimal
}

type PreviewProxiesQuery struct {
	MeetingID      string
	GiverUnitIDs   []string
	ReceiverUnitID string
	ReceiverName   string
	ReceiverPhone  string
}

type MeetingQueries struct {
	Sites    ports.SiteRepository
	Meetings ports.MeetingReader
}

// GetMeeting loads the meeting aggregate. The quorum reading is recomputed
// from attendance and never written.
func (q MeetingQueries) GetMeeting(ctx context.Context, meetingID string) (MeetingView, error) {
	snapshot, err := q.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return MeetingView{}, err
	}
	units, err := q.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return MeetingView{}, err
	}
	return MeetingView{
		Snapshot: snapshot,
		Quorum:   quorum.Evaluate(quorum.FromAttendance(snapshot.Meeting, snapshot.Attendances, units)),
	}, nil
}

func (q MeetingQueries) Gates(ctx context.Context, meetingID string) ([]lifecycle.OperationGate, error) {
	snapshot, err := q.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return nil, err
	}
	return lifecycle.Permitted(snapshot.Meeting, len(snapshot.Decisions)), nil
}

// PreviewProxies runs the proxy checks without writing. Limit violations are
// reported in the plan rather than as an error so callers can show both axes.
func (q MeetingQueries) PreviewProxies(ctx context.Context, query PreviewProxiesQuery) (proxylimit.Plan, error) {
	receiver, err := proxylimit.ParseReceiver(query.ReceiverUnitID, query.ReceiverName, query.ReceiverPhone)
	if err != nil {
		return proxylimit.Plan{}, err
	}
	snapshot, err := q.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(query.MeetingID))
	if err != nil {
		return proxylimit.Plan{}, err
	}
	units, err := q.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return proxylimit.Plan{}, err
	}
	plan, err := proxylimit.ValidateRequest(proxylimit.Request{
		Meeting:         snapshot.Meeting,
		GiverUnitIDs:    query.GiverUnitIDs,
		Receiver:        receiver,
		Units:           units,
		ExistingProxies: snapshot.Proxies,
	})
	if err != nil && !plan.Limits.CountExceeded && !plan.Limits.LandShareExceeded {
		return plan, err
	}
	return plan, nil
}

// ProxyCaps returns the statutory caps for the given population.
func (q MeetingQueries) ProxyCaps(totalUnitCount int, totalLandShare decimal.Decimal) (ProxyCaps, error) {
	if totalUnitCount < 0 || totalLandShare.IsNegative() {
		return ProxyCaps{}, domainerrors.ErrInvalidInput
	}
	return ProxyCaps{
		TotalUnitCount: totalUnitCount,
		TotalLandShare: totalLandShare,
		MaxCount:       proxylimit.MaxProxyCount(totalUnitCount),
		MaxLandShare:   proxylimit.MaxProxyLandShare(totalLandShare),
	}, nil
}

// MeetingProxyCaps returns the caps fixed by the meeting's population snapshot.
func (q MeetingQueries) MeetingProxyCaps(ctx context.Context, meetingID string) (ProxyCaps, error) {
	meeting, err := q.Meetings.GetMeeting(ctx, strings.TrimSpace(meetingID))
	if err != nil {
		return ProxyCaps{}, err
	}
	return q.ProxyCaps(meeting.TotalUnitCount, meeting.TotalSiteLandShare)
}
