package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type VoteChoice int

const (
	VoteYes     VoteChoice = 1
	VoteNo      VoteChoice = 2
	VoteAbstain VoteChoice = 3
)

func (c VoteChoice) Valid() bool {
	return c == VoteYes || c == VoteNo || c == VoteAbstain
}

func (c VoteChoice) String() string {
	switch c {
	case VoteYes:
		return "yes"
	case VoteNo:
		return "no"
	case VoteAbstain:
		return "abstain"
	default:
		return "unknown"
	}
}

func ParseVoteChoice(raw string) (VoteChoice, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "evet":
		return VoteYes, true
	case "no", "hayir", "hayır":
		return VoteNo, true
	case "abstain", "cekimser", "çekimser":
		return VoteAbstain, true
	default:
		return 0, false
	}
}

// Vote is one unit's choice on one decision. At most one vote exists per
// (decision, unit).
type Vote struct {
	VoteID     string
	DecisionID string
	UnitID     string
	Choice     VoteChoice
	CastAt     time.Time
}

// Tally holds per-outcome unit counts and summed land shares.
type Tally struct {
	YesVotes         int
	NoVotes          int
	AbstainVotes     int
	YesLandShare     decimal.Decimal
	NoLandShare      decimal.Decimal
	AbstainLandShare decimal.Decimal
}

func (t Tally) TotalVotes() int {
	return t.YesVotes + t.NoVotes + t.AbstainVotes
}

type Decision struct {
	DecisionID   string
	MeetingID    string
	Title        string
	Description  string
	DecisionText string
	Tally        Tally
	IsApproved   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SortDecisions orders decisions by creation time, then id.
func SortDecisions(items []Decision) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].DecisionID < items[j].DecisionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
