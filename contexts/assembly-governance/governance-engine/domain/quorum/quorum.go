// Package quorum decides whether a meeting may proceed from unit count and
// land share participation.
package quorum

import (
	"fmt"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"

	"github.com/shopspring/decimal"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

type Input struct {
	TotalUnits        int
	AttendedUnits     int
	TotalLandShare    decimal.Decimal
	AttendedLandShare decimal.Decimal
}

type Result struct {
	Achieved          bool
	UnitsAchieved     bool
	LandShareAchieved bool
	UnitPercent       decimal.Decimal
	LandSharePercent  decimal.Decimal
	Message           string
}

// Evaluate applies the dual strict-majority rule. Exactly half on either
// axis fails, and a zero total on either axis never achieves quorum.
func Evaluate(in Input) Result {
	unitsAchieved := CountMajority(in.AttendedUnits, in.TotalUnits)
	shareAchieved := ShareMajority(in.AttendedLandShare, in.TotalLandShare)
	result := Result{
		Achieved:          unitsAchieved && shareAchieved,
		UnitsAchieved:     unitsAchieved,
		LandShareAchieved: shareAchieved,
		UnitPercent:       Percent(decimal.NewFromInt(int64(in.AttendedUnits)), decimal.NewFromInt(int64(in.TotalUnits))),
		LandSharePercent:  Percent(in.AttendedLandShare, in.TotalLandShare),
	}
	result.Message = message(in, result)
	return result
}

// CountMajority reports part/whole > 0.5 without dividing.
func CountMajority(part int, whole int) bool {
	if whole <= 0 {
		return false
	}
	return 2*part > whole
}

// ShareMajority reports part/whole > 0.5 exactly on decimals.
func ShareMajority(part decimal.Decimal, whole decimal.Decimal) bool {
	if !whole.IsPositive() {
		return false
	}
	return part.Mul(two).GreaterThan(whole)
}

// Percent returns part/whole*100 rounded to one decimal place, or zero when
// whole is not positive.
func Percent(part decimal.Decimal, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(1)
}

// FromAttendance recomputes attended counters from an attendance snapshot.
// Units that are inactive or unknown are excluded and each unit counts once.
func FromAttendance(meeting entities.Meeting, attendances []entities.Attendance, units []entities.Unit) Input {
	index := entities.IndexActiveUnits(units)
	seen := make(map[string]struct{}, len(attendances))
	attendedShare := decimal.Zero
	attendedUnits := 0
	for _, attendance := range attendances {
		unit, ok := index.Lookup(attendance.UnitID)
		if !ok {
			continue
		}
		if _, dup := seen[unit.UnitID]; dup {
			continue
		}
		seen[unit.UnitID] = struct{}{}
		attendedUnits++
		attendedShare = attendedShare.Add(unit.LandShare)
	}
	return Input{
		TotalUnits:        meeting.TotalUnitCount,
		AttendedUnits:     attendedUnits,
		TotalLandShare:    meeting.TotalSiteLandShare,
		AttendedLandShare: attendedShare,
	}
}

// Apply returns a copy of the meeting carrying the evaluated counters.
func Apply(meeting entities.Meeting, in Input, result Result) entities.Meeting {
	meeting.AttendedUnitCount = in.AttendedUnits
	meeting.AttendedLandShare = in.AttendedLandShare
	meeting.QuorumAchieved = result.Achieved
	return meeting
}

// Note is the statutory sentence printed in the minutes quorum section.
func Note(totalLandShare decimal.Decimal, attendedLandShare decimal.Decimal) string {
	return fmt.Sprintf("KMK 30. Madde uyarınca; toplam %s arsa payının %s kadarı toplantıda temsil edilmiştir.",
		totalLandShare.StringFixed(2),
		attendedLandShare.StringFixed(2),
	)
}

func message(in Input, result Result) string {
	verdict := "Toplantı yeter sayısı sağlanamamıştır (quorum not achieved)."
	if result.Achieved {
		verdict = "Toplantı yeter sayısı sağlanmıştır (quorum achieved)."
	}
	return fmt.Sprintf("%s Birim: %d/%d (%%%s), Arsa Payı: %s/%s (%%%s)",
		verdict,
		in.AttendedUnits,
		in.TotalUnits,
		result.UnitPercent.StringFixed(1),
		in.AttendedLandShare.StringFixed(2),
		in.TotalLandShare.StringFixed(2),
		result.LandSharePercent.StringFixed(1),
	)
}
