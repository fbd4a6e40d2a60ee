package queries

import (
	"context"
	"fmt"
	"testing"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/adapters/memory"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	domainerrors "condogov/contexts/assembly-governance/governance-engine/domain/errors"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.SetSite(entities.Site{SiteID: "site-1", TotalLandShare: decimal.NewFromInt(1000), IsActive: true})
	for i := 1; i <= 10; i++ {
		store.SetUnit(entities.Unit{
			UnitID:    fmt.Sprintf("u%d", i),
			SiteID:    "site-1",
			Number:    fmt.Sprintf("%d", i),
			LandShare: decimal.NewFromInt(20),
			IsActive:  true,
		})
	}
	require.NoError(t, store.CreateMeeting(context.Background(), entities.Meeting{
		MeetingID:          "meeting-1",
		SiteID:             "site-1",
		Title:              "Olağan Genel Kurul",
		MeetingDate:        time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
		TotalUnitCount:     10,
		TotalSiteLandShare: decimal.NewFromInt(200),
		AttendedLandShare:  decimal.Zero,
	}))
	return store
}

func TestGetMeetingRecomputesQuorumWithoutWriting(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, store.AddAttendances(context.Background(), "meeting-1", []entities.Attendance{
		{AttendanceID: "a1", MeetingID: "meeting-1", UnitID: "u1"},
		{AttendanceID: "a2", MeetingID: "meeting-1", UnitID: "u2"},
	}))
	q := MeetingQueries{Sites: store, Meetings: store}

	view, err := q.GetMeeting(context.Background(), "meeting-1")

	require.NoError(t, err)
	assert.False(t, view.Quorum.Achieved)
	assert.Len(t, view.Snapshot.Attendances, 2)
	assert.Zero(t, view.Snapshot.Meeting.AttendedUnitCount)
}

func TestGatesReflectDecisionGuard(t *testing.T) {
	store := seededStore(t)
	q := MeetingQueries{Sites: store, Meetings: store}

	gates, err := q.Gates(context.Background(), "meeting-1")

	require.NoError(t, err)
	require.Len(t, gates, len(lifecycle.Operations))
	for _, gate := range gates {
		switch gate.Operation {
		case lifecycle.OpCompleteMeeting, lifecycle.OpGenerateMinutes:
			assert.False(t, gate.Permitted, gate.Operation)
			assert.NotEmpty(t, gate.Reason)
		default:
			assert.True(t, gate.Permitted, gate.Operation)
		}
	}
}

func TestPreviewProxiesReportsLimitsWithoutError(t *testing.T) {
	store := seededStore(t)
	q := MeetingQueries{Sites: store, Meetings: store}

	plan, err := q.PreviewProxies(context.Background(), PreviewProxiesQuery{
		MeetingID:      "meeting-1",
		GiverUnitIDs:   []string{"u2", "u3", "u4"},
		ReceiverUnitID: "u1",
	})

	require.NoError(t, err)
	assert.True(t, plan.Limits.CountExceeded)
	assert.True(t, plan.Limits.LandShareExceeded)
	assert.Len(t, plan.Accepted, 3)

	snapshot, err := store.GetMeetingSnapshot(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Proxies)
}

func TestPreviewProxiesSurfacesRuleErrors(t *testing.T) {
	store := seededStore(t)
	q := MeetingQueries{Sites: store, Meetings: store}

	_, err := q.PreviewProxies(context.Background(), PreviewProxiesQuery{
		MeetingID:      "meeting-1",
		GiverUnitIDs:   []string{"u1"},
		ReceiverUnitID: "u1",
	})

	assert.ErrorIs(t, err, domainerrors.ErrSelfDelegation)
}

func TestProxyCaps(t *testing.T) {
	q := MeetingQueries{}

	small, err := q.ProxyCaps(40, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, 2, small.MaxCount)
	assert.True(t, small.MaxLandShare.Equal(decimal.NewFromInt(50)))

	large, err := q.ProxyCaps(120, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.Equal(t, 6, large.MaxCount)

	_, err = q.ProxyCaps(-1, decimal.Zero)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestMeetingProxyCapsUseSnapshot(t *testing.T) {
	store := seededStore(t)
	q := MeetingQueries{Sites: store, Meetings: store}

	caps, err := q.MeetingProxyCaps(context.Background(), "meeting-1")

	require.NoError(t, err)
	assert.Equal(t, 2, caps.MaxCount)
	assert.True(t, caps.MaxLandShare.Equal(decimal.NewFromInt(10)))
}
