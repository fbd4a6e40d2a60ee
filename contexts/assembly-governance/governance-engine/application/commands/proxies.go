package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "condogov/contexts/assembly-governance/governance-engine/application"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"
	"condogov/contexts/assembly-governance/governance-engine/domain/proxylimit"
	"condogov/contexts/assembly-governance/governance-engine/ports"
	contractsv1 "condogov/contracts/gen/events/v1"
)

type GrantProxiesCommand struct {
	MeetingID      string
	GiverUnitIDs   []string
	ReceiverUnitID string
	ReceiverName   string
	ReceiverPhone  string
}

// GrantProxiesResult carries the persisted proxies together with the plan
// they were validated against. Plan is populated on limit rejections too.
type GrantProxiesResult struct {
	Proxies []entities.Proxy
	Skipped []string
	Plan    proxylimit.Plan
}

type ProxyUseCase struct {
	Sites    ports.SiteRepository
	Meetings ports.MeetingRepository
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// GrantProxies delegates the givers' votes to one receiver. The batch is
// validated as a whole; nothing is written when any giver or cap fails.
// Each accepted giver is marked attending through its proxy, and a unit
// receiver is marked attending in person.
func (uc ProxyUseCase) GrantProxies(ctx context.Context, cmd GrantProxiesCommand) (GrantProxiesResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.MeetingID) == "" {
		return GrantProxiesResult{}, domainerrors.ErrInvalidInput
	}
	receiver, err := proxylimit.ParseReceiver(cmd.ReceiverUnitID, cmd.ReceiverName, cmd.ReceiverPhone)
	if err != nil {
		return GrantProxiesResult{}, err
	}

	snapshot, err := uc.Meetings.GetMeetingSnapshot(ctx, strings.TrimSpace(cmd.MeetingID))
	if err != nil {
		return GrantProxiesResult{}, err
	}
	if err := lifecycle.Guard(snapshot.Meeting, lifecycle.OpModifyProxy); err != nil {
		logger.Warn("proxy grant blocked by lifecycle",
			"event", "governance_proxy_grant_blocked",
			"module", "assembly-governance/governance-engine",
			"layer", "application",
			"meeting_id", snapshot.Meeting.MeetingID,
			"state", string(snapshot.Meeting.State()),
		)
		return GrantProxiesResult{}, err
	}
	units, err := uc.Sites.ListUnits(ctx, snapshot.Meeting.SiteID)
	if err != nil {
		return GrantProxiesResult{}, err
	}

	plan, err := proxylimit.ValidateRequest(proxylimit.Request{
		Meeting:         snapshot.Meeting,
		GiverUnitIDs:    cmd.GiverUnitIDs,
		Receiver:        receiver,
		Units:           units,
		ExistingProxies: snapshot.Proxies,
	})
	if err != nil {
		var limitErr *domainerrors.ProxyLimitError
		if errors.As(err, &limitErr) {
			logger.Warn("proxy grant exceeds statutory limits",
				"event", "governance_proxy_limit_exceeded",
				"module", "assembly-governance/governance-engine",
				"layer", "application",
				"meeting_id", snapshot.Meeting.MeetingID,
				"receiver", limitErr.ReceiverKey,
				"count_after", limitErr.CountAfter,
				"max_count", limitErr.MaxCount,
				"land_share_after", limitErr.LandShareAfter.StringFixed(2),
				"max_land_share", limitErr.MaxLandShare.StringFixed(2),
			)
		}
		return GrantProxiesResult{Plan: plan}, err
	}

	result := GrantProxiesResult{Plan: plan}
	for _, unit := range plan.Skipped {
		result.Skipped = append(result.Skipped, unit.UnitID)
	}
	if len(plan.Accepted) == 0 {
		return result, nil
	}

	now := uc.now()
	proxies := make([]entities.Proxy, 0, len(plan.Accepted))
	attendances := make([]entities.Attendance, 0, len(plan.Accepted)+1)
	for _, giver := range plan.Accepted {
		proxyID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return GrantProxiesResult{}, err
		}
		proxies = append(proxies, entities.Proxy{
			ProxyID:     proxyID,
			MeetingID:   snapshot.Meeting.MeetingID,
			GiverUnitID: giver.UnitID,
			Receiver:    plan.Receiver,
			CreatedAt:   now,
		})
		attendance, err := uc.attendanceFor(ctx, snapshot, giver.UnitID, now)
		if err != nil {
			return GrantProxiesResult{}, err
		}
		attendance.IsProxy = true
		attendance.ProxyID = proxyID
		attendances = append(attendances, attendance)
	}
	if receiverUnitID, ok := plan.Receiver.UnitID(); ok {
		if _, attending := snapshot.AttendanceFor(receiverUnitID); !attending {
			attendance, err := uc.attendanceFor(ctx, snapshot, receiverUnitID, now)
			if err != nil {
				return GrantProxiesResult{}, err
			}
			attendances = append(attendances, attendance)
		}
	}

	if err := uc.Meetings.AddProxies(ctx, snapshot.Meeting.MeetingID, proxies, attendances); err != nil {
		return GrantProxiesResult{}, err
	}
	if err := appendEvent(ctx, uc.Outbox, uc.IDGen, contractsv1.EventProxiesGranted, snapshot.Meeting.MeetingID, now, map[string]any{
		"meeting_id":       snapshot.Meeting.MeetingID,
		"receiver_kind":    string(plan.Receiver.Kind()),
		"granted_count":    len(proxies),
		"count_after":      plan.Limits.CountAfter,
		"land_share_after": plan.Limits.LandShareAfter.StringFixed(2),
	}); err != nil {
		return GrantProxiesResult{}, err
	}

	logger.Info("proxies granted",
		"event", "governance_proxies_granted",
		"module", "assembly-governance/governance-engine",
		"layer", "application",
		"meeting_id", snapshot.Meeting.MeetingID,
		"receiver_kind", string(plan.Receiver.Kind()),
		"granted_count", len(proxies),
		"skipped_count", len(result.Skipped),
	)
	result.Proxies = proxies
	return result, nil
}

// attendanceFor reuses the unit's attendance row when present so the write
// upgrades it instead of adding a second row.
func (uc ProxyUseCase) attendanceFor(
	ctx context.Context,
	snapshot entities.MeetingSnapshot,
	unitID string,
	now time.Time,
) (entities.Attendance, error) {
	if existing, ok := snapshot.AttendanceFor(unitID); ok {
		return existing, nil
	}
	attendanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Attendance{}, err
	}
	return entities.Attendance{
		AttendanceID: attendanceID,
		MeetingID:    snapshot.Meeting.MeetingID,
		UnitID:       unitID,
		CreatedAt:    now,
	}, nil
}

func (uc ProxyUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
