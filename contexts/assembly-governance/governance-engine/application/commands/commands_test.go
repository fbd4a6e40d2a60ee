package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/adapters/memory"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type harness struct {
	store     *memory.Store
	meetings  MeetingUseCase
	proxies   ProxyUseCase
	decisions DecisionUseCase
}

// newHarness seeds one site with ten active units and one inactive unit.
// Units u1..u6 hold 150 land share each and u7..u10 hold 25 each.
func newHarness() harness {
	store := memory.NewStore()
	store.SetSite(entities.Site{SiteID: "site-1", Name: "Lale Sitesi", TotalLandShare: decimal.NewFromInt(1000), IsActive: true})
	for i := 1; i <= 10; i++ {
		store.SetUnit(entities.Unit{
			UnitID:    fmt.Sprintf("u%d", i),
			SiteID:    "site-1",
			Number:    fmt.Sprintf("%d", i),
			LandShare: decimal.NewFromInt(unitShare(i)),
			IsActive:  true,
		})
	}
	store.SetUnit(entities.Unit{UnitID: "u99", SiteID: "site-1", Number: "99", LandShare: decimal.NewFromInt(50)})

	clock := fixedClock{now: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)}
	return harness{
		store: store,
		meetings: MeetingUseCase{
			Sites:       store,
			Meetings:    store,
			Idempotency: store,
			Outbox:      store,
			Clock:       clock,
			IDGen:       store,
		},
		proxies: ProxyUseCase{
			Sites:    store,
			Meetings: store,
			Outbox:   store,
			Clock:    clock,
			IDGen:    store,
		},
		decisions: DecisionUseCase{
			Sites:       store,
			Meetings:    store,
			Idempotency: store,
			Outbox:      store,
			Clock:       clock,
			IDGen:       store,
		},
	}
}

func unitShare(i int) int64 {
	if i <= 6 {
		return 150
	}
	return 25
}

func (h harness) createMeeting(t *testing.T) entities.Meeting {
	t.Helper()
	result, err := h.meetings.CreateMeeting(context.Background(), CreateMeetingCommand{
		ActorID:     "operator-1",
		SiteID:      "site-1",
		Title:       "Olağan Genel Kurul",
		MeetingDate: time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return result.Meeting
}

func (h harness) attend(t *testing.T, meetingID string, unitIDs ...string) {
	t.Helper()
	_, err := h.meetings.AddAttendance(context.Background(), AddAttendanceCommand{MeetingID: meetingID, UnitIDs: unitIDs})
	require.NoError(t, err)
}

func (h harness) createDecision(t *testing.T, meetingID string) entities.Decision {
	t.Helper()
	result, err := h.decisions.CreateDecision(context.Background(), CreateDecisionCommand{
		MeetingID:   meetingID,
		Title:       "Çatı onarımı",
		Description: "Çatının yenilenmesi",
	})
	require.NoError(t, err)
	return result.Decision
}

func votesFor(choice entities.VoteChoice, unitIDs ...string) []VoteInput {
	items := make([]VoteInput, 0, len(unitIDs))
	for _, unitID := range unitIDs {
		items = append(items, VoteInput{UnitID: unitID, Choice: choice})
	}
	return items
}

func TestCreateMeetingSnapshotsActiveUnits(t *testing.T) {
	h := newHarness()

	meeting := h.createMeeting(t)

	assert.Equal(t, 10, meeting.TotalUnitCount)
	assert.True(t, meeting.TotalSiteLandShare.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, entities.MeetingStateDraft, meeting.State())
}

func TestCreateMeetingFallsBackToUnitShareSum(t *testing.T) {
	h := newHarness()
	h.store.SetSite(entities.Site{SiteID: "site-1", Name: "Lale Sitesi", IsActive: true})

	meeting := h.createMeeting(t)

	assert.True(t, meeting.TotalSiteLandShare.Equal(decimal.NewFromInt(1000)))
}

func TestCreateMeetingReplaysIdempotentRequest(t *testing.T) {
	h := newHarness()
	cmd := CreateMeetingCommand{
		IdempotencyKey: "key-1",
		SiteID:         "site-1",
		Title:          "Olağan Genel Kurul",
		MeetingDate:    time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
	}

	first, err := h.meetings.CreateMeeting(context.Background(), cmd)
	require.NoError(t, err)
	second, err := h.meetings.CreateMeeting(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Meeting.MeetingID, second.Meeting.MeetingID)

	cmd.Title = "Olağanüstü Genel Kurul"
	_, err = h.meetings.CreateMeeting(context.Background(), cmd)
	assert.ErrorIs(t, err, domainerrors.ErrIdempotencyConflict)
}

func TestCreateMeetingRejectsInvalidInput(t *testing.T) {
	h := newHarness()

	_, err := h.meetings.CreateMeeting(context.Background(), CreateMeetingCommand{SiteID: "site-1", MeetingDate: time.Now()})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = h.meetings.CreateMeeting(context.Background(), CreateMeetingCommand{SiteID: "missing", Title: "x", MeetingDate: time.Now()})
	assert.ErrorIs(t, err, domainerrors.ErrSiteNotFound)
}

func TestAddAttendanceSkipsUnitsAlreadyAttending(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2")

	result, err := h.meetings.AddAttendance(context.Background(), AddAttendanceCommand{
		MeetingID: meeting.MeetingID,
		UnitIDs:   []string{"u2", "u3", "u3"},
	})

	require.NoError(t, err)
	require.Len(t, result.Added, 1)
	assert.Equal(t, "u3", result.Added[0].UnitID)
	assert.Equal(t, []string{"u2"}, result.Skipped)
}

func TestAddAttendanceRejectsInactiveUnit(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	_, err := h.meetings.AddAttendance(context.Background(), AddAttendanceCommand{
		MeetingID: meeting.MeetingID,
		UnitIDs:   []string{"u99"},
	})

	assert.ErrorIs(t, err, domainerrors.ErrUnitNotFound)
}

func TestEvaluateQuorumPersistsCountersInDraft(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5", "u6")

	result, err := h.meetings.EvaluateQuorum(context.Background(), meeting.MeetingID)

	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.True(t, result.Result.Achieved)
	assert.Contains(t, result.Result.Message, "Birim: 6/10 (%60.0)")

	stored, err := h.store.GetMeeting(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.AttendedUnitCount)
	assert.True(t, stored.AttendedLandShare.Equal(decimal.NewFromInt(900)))
	assert.True(t, stored.QuorumAchieved)
}

func TestEvaluateQuorumExactHalfIsNotAchieved(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5")

	result, err := h.meetings.EvaluateQuorum(context.Background(), meeting.MeetingID)

	require.NoError(t, err)
	assert.False(t, result.Result.Achieved)
}

func TestGrantProxiesMarksGiversAndReceiverAttending(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	result, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:      meeting.MeetingID,
		GiverUnitIDs:   []string{"u7", "u8"},
		ReceiverUnitID: "u1",
	})

	require.NoError(t, err)
	require.Len(t, result.Proxies, 2)

	snapshot, err := h.store.GetMeetingSnapshot(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	require.Len(t, snapshot.Attendances, 3)
	giver, ok := snapshot.AttendanceFor("u7")
	require.True(t, ok)
	assert.True(t, giver.IsProxy)
	assert.NotEmpty(t, giver.ProxyID)
	receiver, ok := snapshot.AttendanceFor("u1")
	require.True(t, ok)
	assert.False(t, receiver.IsProxy)
}

func TestGrantProxiesUpgradesExistingAttendance(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u7")

	_, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:      meeting.MeetingID,
		GiverUnitIDs:   []string{"u7"},
		ReceiverUnitID: "u1",
	})
	require.NoError(t, err)

	snapshot, err := h.store.GetMeetingSnapshot(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Attendances, 2)
	giver, _ := snapshot.AttendanceFor("u7")
	assert.True(t, giver.IsProxy)
}

func TestGrantProxiesRejectsWholeBatchOverLimit(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	result, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:      meeting.MeetingID,
		GiverUnitIDs:   []string{"u7", "u8", "u9"},
		ReceiverUnitID: "u1",
	})

	require.ErrorIs(t, err, domainerrors.ErrProxyLimitExceeded)
	var limitErr *domainerrors.ProxyLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.True(t, limitErr.CountExceeded)
	assert.Equal(t, 3, result.Plan.Limits.CountAfter)

	snapshot, err := h.store.GetMeetingSnapshot(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Proxies)
	assert.Empty(t, snapshot.Attendances)
}

func TestGrantProxiesToExternalReceiverNormalizesPhone(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	result, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:     meeting.MeetingID,
		GiverUnitIDs:  []string{"u9"},
		ReceiverName:  "Ayşe Yılmaz",
		ReceiverPhone: "+90 532 123 45 67",
	})

	require.NoError(t, err)
	require.Len(t, result.Proxies, 1)
	_, phone, ok := result.Proxies[0].Receiver.External()
	require.True(t, ok)
	assert.Equal(t, "05321234567", phone)

	_, err = h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:     meeting.MeetingID,
		GiverUnitIDs:  []string{"u10"},
		ReceiverName:  "Mehmet Demir",
		ReceiverPhone: "212 555 00 00",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidReceiverPhone)
}

func TestCastVotesTalliesAgainstAttendingPopulation(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9", "u10")
	decision := h.createDecision(t, meeting.MeetingID)

	votes := append(votesFor(entities.VoteYes, "u1", "u2", "u3", "u4", "u5", "u6", "u7"), votesFor(entities.VoteNo, "u8", "u9", "u10")...)
	result, err := h.decisions.CastVotes(context.Background(), CastVotesCommand{DecisionID: decision.DecisionID, Votes: votes})

	require.NoError(t, err)
	assert.Equal(t, 7, result.Decision.Tally.YesVotes)
	assert.Equal(t, 3, result.Decision.Tally.NoVotes)
	assert.True(t, result.Decision.Tally.YesLandShare.Equal(decimal.NewFromInt(925)))
	assert.True(t, result.Decision.IsApproved)

	stored, err := h.store.GetDecision(context.Background(), decision.DecisionID)
	require.NoError(t, err)
	assert.True(t, stored.IsApproved)
}

func TestCastVotesReplacesEarlierChoice(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3")
	decision := h.createDecision(t, meeting.MeetingID)

	_, err := h.decisions.CastVotes(context.Background(), CastVotesCommand{
		DecisionID: decision.DecisionID,
		Votes:      votesFor(entities.VoteYes, "u1", "u2"),
	})
	require.NoError(t, err)
	first, err := h.store.GetMeetingSnapshot(context.Background(), meeting.MeetingID)
	require.NoError(t, err)

	result, err := h.decisions.CastVotes(context.Background(), CastVotesCommand{
		DecisionID: decision.DecisionID,
		Votes:      votesFor(entities.VoteNo, "u2", "u3"),
	})

	require.NoError(t, err)
	require.Len(t, result.Votes, 3)
	assert.Equal(t, 1, result.Decision.Tally.YesVotes)
	assert.Equal(t, 2, result.Decision.Tally.NoVotes)
	assert.False(t, result.Decision.IsApproved)
	assert.Equal(t, first.VotesFor(decision.DecisionID)[1].VoteID, result.Votes[1].VoteID)
}

func TestCastVotesRequiresAttendance(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1")
	decision := h.createDecision(t, meeting.MeetingID)

	_, err := h.decisions.CastVotes(context.Background(), CastVotesCommand{
		DecisionID: decision.DecisionID,
		Votes:      votesFor(entities.VoteYes, "u1", "u2"),
	})

	assert.ErrorIs(t, err, domainerrors.ErrVoterNotAttending)
}

func TestCreateDecisionRequiresDescription(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	_, err := h.decisions.CreateDecision(context.Background(), CreateDecisionCommand{
		MeetingID: meeting.MeetingID,
		Title:     "Bütçe",
	})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestCompleteMeetingRequiresDecision(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	_, err := h.meetings.CompleteMeeting(context.Background(), meeting.MeetingID)

	require.ErrorIs(t, err, domainerrors.ErrNoDecisions)
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
}

func TestCompletedMeetingIsReadOnly(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5", "u6")
	_, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:      meeting.MeetingID,
		GiverUnitIDs:   []string{"u7"},
		ReceiverUnitID: "u1",
	})
	require.NoError(t, err)
	decision := h.createDecision(t, meeting.MeetingID)
	_, err = h.decisions.CastVotes(context.Background(), CastVotesCommand{
		DecisionID: decision.DecisionID,
		Votes:      votesFor(entities.VoteYes, "u1", "u2", "u3", "u4", "u5"),
	})
	require.NoError(t, err)

	completed, err := h.meetings.CompleteMeeting(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.True(t, completed.QuorumAchieved)
	assert.Equal(t, 7, completed.AttendedUnitCount)

	ctx := context.Background()
	before, err := h.store.GetMeetingSnapshot(ctx, meeting.MeetingID)
	require.NoError(t, err)
	require.Len(t, before.Decisions, 1)
	_, err = h.meetings.AddAttendance(ctx, AddAttendanceCommand{MeetingID: meeting.MeetingID, UnitIDs: []string{"u7"}})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.proxies.GrantProxies(ctx, GrantProxiesCommand{MeetingID: meeting.MeetingID, GiverUnitIDs: []string{"u8"}, ReceiverUnitID: "u1"})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.decisions.CreateDecision(ctx, CreateDecisionCommand{MeetingID: meeting.MeetingID, Title: "Bütçe", Description: "Onay"})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.decisions.CastVotes(ctx, CastVotesCommand{DecisionID: decision.DecisionID, Votes: votesFor(entities.VoteYes, "u1")})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.decisions.SetDecisionText(ctx, SetDecisionTextCommand{DecisionID: decision.DecisionID, Text: "Kabul"})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.meetings.AddAgendaItem(ctx, AddAgendaItemCommand{MeetingID: meeting.MeetingID, Title: "Açılış"})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.meetings.AddDocument(ctx, AddDocumentCommand{MeetingID: meeting.MeetingID, Title: "Rapor", Type: entities.DocumentTypeOther})
	assert.ErrorIs(t, err, domainerrors.ErrOperationNotPermitted)
	_, err = h.meetings.CompleteMeeting(ctx, meeting.MeetingID)
	assert.ErrorIs(t, err, domainerrors.ErrMeetingAlreadyCompleted)

	quorumResult, err := h.meetings.EvaluateQuorum(ctx, meeting.MeetingID)
	require.NoError(t, err)
	assert.False(t, quorumResult.Persisted)
	assert.True(t, quorumResult.Result.Achieved)

	after, err := h.store.GetMeetingSnapshot(ctx, meeting.MeetingID)
	require.NoError(t, err)
	require.Len(t, after.Decisions, 1)
	assert.Equal(t, before.Decisions[0].Tally.YesVotes, after.Decisions[0].Tally.YesVotes)
	assert.Equal(t, before.Decisions[0].Tally.TotalVotes(), after.Decisions[0].Tally.TotalVotes())
	assert.True(t, before.Decisions[0].Tally.YesLandShare.Equal(after.Decisions[0].Tally.YesLandShare))
	assert.Equal(t, before.Decisions[0].IsApproved, after.Decisions[0].IsApproved)
	assert.Empty(t, after.Decisions[0].DecisionText)
	assert.Len(t, after.Votes, len(before.Votes))
	assert.Len(t, after.Proxies, len(before.Proxies))
	assert.Len(t, after.Attendances, len(before.Attendances))
	assert.Empty(t, after.AgendaItems)
	assert.Empty(t, after.Documents)
	assert.Equal(t, before.Meeting.AttendedUnitCount, after.Meeting.AttendedUnitCount)
	assert.True(t, before.Meeting.AttendedLandShare.Equal(after.Meeting.AttendedLandShare))
	assert.Equal(t, before.Meeting.QuorumAchieved, after.Meeting.QuorumAchieved)
	assert.Equal(t, before, after)
}

func TestCompileMinutesRequiresCompletedMeeting(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)

	_, err := h.meetings.CompileMinutes(context.Background(), meeting.MeetingID)

	assert.ErrorIs(t, err, domainerrors.ErrMeetingNotCompleted)
}

func TestCompileMinutesStoresOnceAndReplays(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5", "u6")
	_, err := h.proxies.GrantProxies(context.Background(), GrantProxiesCommand{
		MeetingID:      meeting.MeetingID,
		GiverUnitIDs:   []string{"u7"},
		ReceiverUnitID: "u1",
	})
	require.NoError(t, err)
	decision := h.createDecision(t, meeting.MeetingID)
	_, err = h.decisions.CastVotes(context.Background(), CastVotesCommand{
		DecisionID: decision.DecisionID,
		Votes:      votesFor(entities.VoteYes, "u1", "u2", "u3", "u4", "u5"),
	})
	require.NoError(t, err)
	_, err = h.meetings.CompleteMeeting(context.Background(), meeting.MeetingID)
	require.NoError(t, err)

	first, err := h.meetings.CompileMinutes(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Contains(t, first.Text, "Yeter Sayı Durumu: SAĞLANDI")
	assert.Contains(t, first.Text, "  - 7 numaralı birim, 1 numaralı birime vekalet vermiştir.")
	assert.Contains(t, first.Text, "  Karar Durumu: KABUL EDİLDİ")

	second, err := h.meetings.CompileMinutes(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Text, second.Text)
}

// staleSnapshotStore hides stored minutes from snapshot reads so a compile
// races an earlier one.
type staleSnapshotStore struct {
	*memory.Store
}

func (s staleSnapshotStore) GetMeetingSnapshot(ctx context.Context, meetingID string) (entities.MeetingSnapshot, error) {
	snapshot, err := s.Store.GetMeetingSnapshot(ctx, meetingID)
	snapshot.Meeting.Minutes = ""
	snapshot.Meeting.MinutesCompiledAt = nil
	return snapshot, err
}

func (h harness) completeWithDecision(t *testing.T) entities.Meeting {
	t.Helper()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1", "u2", "u3", "u4", "u5", "u6")
	h.createDecision(t, meeting.MeetingID)
	completed, err := h.meetings.CompleteMeeting(context.Background(), meeting.MeetingID)
	require.NoError(t, err)
	return completed
}

func TestCompileMinutesRendersTimestampsInConfiguredLocation(t *testing.T) {
	h := newHarness()
	h.meetings.MinutesLocation = time.FixedZone("TRT", 3*60*60)
	meeting := h.completeWithDecision(t)

	result, err := h.meetings.CompileMinutes(context.Background(), meeting.MeetingID)

	require.NoError(t, err)
	assert.Contains(t, result.Text, "Toplantı Tarihi: 14.03.2026 22:00\n")
	assert.Contains(t, result.Text, "Tutanak Oluşturulma Tarihi: 14.03.2026 22:00\n")
	require.NotNil(t, result.Meeting.MinutesCompiledAt)
	assert.Equal(t, time.UTC, result.Meeting.MinutesCompiledAt.Location())
}

func TestCompileMinutesKeepsFirstTextWhenRacing(t *testing.T) {
	h := newHarness()
	meeting := h.completeWithDecision(t)
	first, err := h.meetings.CompileMinutes(context.Background(), meeting.MeetingID)
	require.NoError(t, err)

	var logs bytes.Buffer
	racing := h.meetings
	racing.Meetings = staleSnapshotStore{Store: h.store}
	racing.Clock = fixedClock{now: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)}
	racing.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	second, err := racing.CompileMinutes(context.Background(), meeting.MeetingID)

	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Text, second.Text)
	assert.Contains(t, logs.String(), `"event":"governance_minutes_already_stored"`)
	assert.Contains(t, logs.String(), `"body_matches":true`)

	pending, err := h.store.ListPendingOutbox(context.Background(), 100)
	require.NoError(t, err)
	compiled := 0
	for _, message := range pending {
		if message.EventType == "governance.minutes.compiled" {
			compiled++
		}
	}
	assert.Equal(t, 1, compiled)
}

func TestCommandsAppendOutboxEvents(t *testing.T) {
	h := newHarness()
	meeting := h.createMeeting(t)
	h.attend(t, meeting.MeetingID, "u1")

	pending, err := h.store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	types := make([]string, 0, len(pending))
	for _, message := range pending {
		types = append(types, message.EventType)
		assert.Equal(t, meeting.MeetingID, message.PartitionKey)
	}
	assert.ElementsMatch(t, []string{"governance.meeting.created", "governance.attendance.added"}, types)
}
