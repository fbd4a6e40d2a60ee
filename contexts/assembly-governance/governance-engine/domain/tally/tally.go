// Package tally aggregates cast votes and decides decision approval by dual
// strict majority of the attending population.
package tally

import (
	"sort"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"

	"github.com/shopspring/decimal"
)

// Calculate groups votes by outcome. Votes of units missing from units are
// ignored, and a unit is counted at most once.
func Calculate(votes []entities.Vote, units []entities.Unit) entities.Tally {
	index := entities.IndexActiveUnits(units)
	result := entities.Tally{
		YesLandShare:     decimal.Zero,
		NoLandShare:      decimal.Zero,
		AbstainLandShare: decimal.Zero,
	}
	for _, vote := range Merge(nil, votes) {
		unit, ok := index.Lookup(vote.UnitID)
		if !ok {
			continue
		}
		switch vote.Choice {
		case entities.VoteYes:
			result.YesVotes++
			result.YesLandShare = result.YesLandShare.Add(unit.LandShare)
		case entities.VoteNo:
			result.NoVotes++
			result.NoLandShare = result.NoLandShare.Add(unit.LandShare)
		case entities.VoteAbstain:
			result.AbstainVotes++
			result.AbstainLandShare = result.AbstainLandShare.Add(unit.LandShare)
		}
	}
	return result
}

type ApprovalInput struct {
	YesCount               int
	NoCount                int
	YesLandShare           decimal.Decimal
	NoLandShare            decimal.Decimal
	TotalAttendedUnits     int
	TotalAttendedLandShare decimal.Decimal
}

// IsApproved requires Yes to hold a strict majority of attending units and of
// attending land share. No and Abstain only matter through the Yes ratio.
func IsApproved(in ApprovalInput) bool {
	return quorum.CountMajority(in.YesCount, in.TotalAttendedUnits) &&
		quorum.ShareMajority(in.YesLandShare, in.TotalAttendedLandShare)
}

// Merge applies incoming votes over existing ones so that each unit keeps
// only its latest choice. Within incoming, later entries win.
func Merge(existing []entities.Vote, incoming []entities.Vote) []entities.Vote {
	byUnit := make(map[string]entities.Vote, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))
	apply := func(vote entities.Vote) {
		if _, ok := byUnit[vote.UnitID]; !ok {
			order = append(order, vote.UnitID)
		}
		byUnit[vote.UnitID] = vote
	}
	for _, vote := range existing {
		apply(vote)
	}
	for _, vote := range incoming {
		apply(vote)
	}
	sort.Strings(order)
	merged := make([]entities.Vote, 0, len(order))
	for _, unitID := range order {
		merged = append(merged, byUnit[unitID])
	}
	return merged
}

// Attending sums the attending population of active units.
func Attending(attendances []entities.Attendance, units []entities.Unit) (int, decimal.Decimal) {
	in := quorum.FromAttendance(entities.Meeting{}, attendances, units)
	return in.AttendedUnits, in.AttendedLandShare
}

// TallyAndApprove returns the decision carrying fresh tallies and approval
// computed against the attending units.
func TallyAndApprove(
	decision entities.Decision,
	votes []entities.Vote,
	units []entities.Unit,
	attendances []entities.Attendance,
) entities.Decision {
	result := Calculate(votes, units)
	attendedUnits, attendedShare := Attending(attendances, units)
	decision.Tally = result
	decision.IsApproved = IsApproved(ApprovalInput{
		YesCount:               result.YesVotes,
		NoCount:                result.NoVotes,
		YesLandShare:           result.YesLandShare,
		NoLandShare:            result.NoLandShare,
		TotalAttendedUnits:     attendedUnits,
		TotalAttendedLandShare: attendedShare,
	})
	return decision
}
