package tally

import (
	"fmt"
	"testing"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func tenUnits() []entities.Unit {
	units := make([]entities.Unit, 0, 10)
	for i := 1; i <= 10; i++ {
		units = append(units, entities.Unit{
			UnitID:    fmt.Sprintf("u%d", i),
			LandShare: d("100"),
			IsActive:  true,
		})
	}
	return units
}

func TestIsApprovedDualMajority(t *testing.T) {
	assert.True(t, IsApproved(ApprovalInput{
		YesCount:               7,
		NoCount:                3,
		YesLandShare:           d("700.00"),
		NoLandShare:            d("300.00"),
		TotalAttendedUnits:     10,
		TotalAttendedLandShare: d("1000.00"),
	}))

	assert.False(t, IsApproved(ApprovalInput{
		YesCount:               6,
		NoCount:                4,
		YesLandShare:           d("400.00"),
		NoLandShare:            d("600.00"),
		TotalAttendedUnits:     10,
		TotalAttendedLandShare: d("1000.00"),
	}))

	assert.False(t, IsApproved(ApprovalInput{
		YesCount:               5,
		YesLandShare:           d("500.00"),
		TotalAttendedUnits:     10,
		TotalAttendedLandShare: d("1000.00"),
	}))
}

func TestIsApprovedZeroAttendanceIsRejected(t *testing.T) {
	assert.False(t, IsApproved(ApprovalInput{
		YesCount:               0,
		YesLandShare:           decimal.Zero,
		TotalAttendedUnits:     0,
		TotalAttendedLandShare: decimal.Zero,
	}))
}

func TestCalculateIgnoresUnknownUnits(t *testing.T) {
	units := tenUnits()
	votes := []entities.Vote{
		{UnitID: "u1", Choice: entities.VoteYes},
		{UnitID: "u2", Choice: entities.VoteNo},
		{UnitID: "u3", Choice: entities.VoteAbstain},
		{UnitID: "stale", Choice: entities.VoteYes},
	}

	result := Calculate(votes, units)

	assert.Equal(t, 1, result.YesVotes)
	assert.Equal(t, 1, result.NoVotes)
	assert.Equal(t, 1, result.AbstainVotes)
	assert.Equal(t, "100.00", result.YesLandShare.StringFixed(2))
	assert.Equal(t, 3, result.TotalVotes())
}

func TestMergeKeepsLatestVotePerUnit(t *testing.T) {
	existing := []entities.Vote{
		{VoteID: "v1", UnitID: "u1", Choice: entities.VoteNo, CastAt: time.Unix(10, 0)},
		{VoteID: "v2", UnitID: "u2", Choice: entities.VoteYes, CastAt: time.Unix(10, 0)},
	}
	incoming := []entities.Vote{
		{VoteID: "v3", UnitID: "u1", Choice: entities.VoteAbstain, CastAt: time.Unix(20, 0)},
		{VoteID: "v4", UnitID: "u1", Choice: entities.VoteYes, CastAt: time.Unix(20, 0)},
	}

	merged := Merge(existing, incoming)

	require.Len(t, merged, 2)
	assert.Equal(t, "v4", merged[0].VoteID)
	assert.Equal(t, entities.VoteYes, merged[0].Choice)
	assert.Equal(t, "v2", merged[1].VoteID)

	result := Calculate(merged, tenUnits())
	assert.Equal(t, 2, result.YesVotes)
	assert.Equal(t, 0, result.NoVotes)
}

func TestTallyAndApproveUsesAttendingPopulation(t *testing.T) {
	units := tenUnits()
	attendances := []entities.Attendance{
		{UnitID: "u1"}, {UnitID: "u2"}, {UnitID: "u3"}, {UnitID: "u4"},
	}
	votes := []entities.Vote{
		{UnitID: "u1", Choice: entities.VoteYes},
		{UnitID: "u2", Choice: entities.VoteYes},
		{UnitID: "u3", Choice: entities.VoteYes},
		{UnitID: "u4", Choice: entities.VoteNo},
	}
	decision := entities.Decision{DecisionID: "decision-1", Title: "Çatı onarımı"}

	updated := TallyAndApprove(decision, votes, units, attendances)

	assert.True(t, updated.IsApproved)
	assert.Equal(t, 3, updated.Tally.YesVotes)
	assert.Equal(t, "300.00", updated.Tally.YesLandShare.StringFixed(2))
	assert.False(t, decision.IsApproved)

	units[0].LandShare = d("10")
	units[1].LandShare = d("10")
	units[2].LandShare = d("10")
	units[3].LandShare = d("500")
	rejected := TallyAndApprove(decision, votes, units, attendances)
	assert.False(t, rejected.IsApproved)
}
