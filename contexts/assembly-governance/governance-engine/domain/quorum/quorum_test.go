package quorum

import (
	"testing"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestEvaluateAchievedWithStrictMajorityOnBothAxes(t *testing.T) {
	result := Evaluate(Input{
		TotalUnits:        10,
		AttendedUnits:     6,
		TotalLandShare:    d("1000.00"),
		AttendedLandShare: d("600.00"),
	})

	require.True(t, result.Achieved)
	assert.Equal(t, "60.0", result.UnitPercent.StringFixed(1))
	assert.Equal(t, "60.0", result.LandSharePercent.StringFixed(1))
	assert.Equal(t,
		"Toplantı yeter sayısı sağlanmıştır (quorum achieved). Birim: 6/10 (%60.0), Arsa Payı: 600.00/1000.00 (%60.0)",
		result.Message,
	)
}

func TestEvaluateExactlyHalfFails(t *testing.T) {
	result := Evaluate(Input{
		TotalUnits:        10,
		AttendedUnits:     5,
		TotalLandShare:    d("1000.00"),
		AttendedLandShare: d("500.00"),
	})

	assert.False(t, result.Achieved)
	assert.False(t, result.UnitsAchieved)
	assert.False(t, result.LandShareAchieved)
	assert.Contains(t, result.Message, "sağlanamamıştır")
	assert.Contains(t, result.Message, "(%50.0)")
}

func TestEvaluateRequiresBothAxes(t *testing.T) {
	unitOnly := Evaluate(Input{
		TotalUnits:        10,
		AttendedUnits:     8,
		TotalLandShare:    d("1000"),
		AttendedLandShare: d("400"),
	})
	assert.True(t, unitOnly.UnitsAchieved)
	assert.False(t, unitOnly.LandShareAchieved)
	assert.False(t, unitOnly.Achieved)

	shareOnly := Evaluate(Input{
		TotalUnits:        10,
		AttendedUnits:     3,
		TotalLandShare:    d("1000"),
		AttendedLandShare: d("700"),
	})
	assert.False(t, shareOnly.Achieved)
}

func TestEvaluateStrictMajorityProperty(t *testing.T) {
	for total := 1; total <= 25; total++ {
		for attended := 0; attended <= total; attended++ {
			share := decimal.NewFromInt(int64(attended * 40))
			totalShare := decimal.NewFromInt(int64(total * 40))
			result := Evaluate(Input{
				TotalUnits:        total,
				AttendedUnits:     attended,
				TotalLandShare:    totalShare,
				AttendedLandShare: share,
			})
			expected := float64(attended)/float64(total) > 0.5
			if result.Achieved != expected {
				t.Fatalf("total=%d attended=%d: expected %v, got %v", total, attended, expected, result.Achieved)
			}
		}
	}
}

func TestEvaluateZeroTotalsNeverAchieve(t *testing.T) {
	result := Evaluate(Input{
		TotalUnits:        0,
		AttendedUnits:     0,
		TotalLandShare:    decimal.Zero,
		AttendedLandShare: decimal.Zero,
	})

	assert.False(t, result.Achieved)
	assert.True(t, result.UnitPercent.IsZero())
	assert.Equal(t,
		"Toplantı yeter sayısı sağlanamamıştır (quorum not achieved). Birim: 0/0 (%0.0), Arsa Payı: 0.00/0.00 (%0.0)",
		result.Message,
	)

	noShare := Evaluate(Input{
		TotalUnits:        4,
		AttendedUnits:     4,
		TotalLandShare:    decimal.Zero,
		AttendedLandShare: decimal.Zero,
	})
	assert.False(t, noShare.Achieved)
}

func TestPercentRoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, "66.7", Percent(d("2"), d("3")).StringFixed(1))
	assert.Equal(t, "33.3", Percent(d("1"), d("3")).StringFixed(1))
	assert.Equal(t, "0.0", Percent(d("1"), decimal.Zero).StringFixed(1))
}

func TestFromAttendanceExcludesInactiveUnknownAndDuplicateUnits(t *testing.T) {
	meeting := entities.Meeting{
		MeetingID:          "meeting-1",
		TotalUnitCount:     4,
		TotalSiteLandShare: d("400"),
	}
	units := []entities.Unit{
		{UnitID: "u1", LandShare: d("100"), IsActive: true},
		{UnitID: "u2", LandShare: d("120"), IsActive: true},
		{UnitID: "u3", LandShare: d("80"), IsActive: false},
		{UnitID: "u4", LandShare: d("100"), IsActive: true},
	}
	attendances := []entities.Attendance{
		{UnitID: "u1"},
		{UnitID: "u2", IsProxy: true, ProxyID: "p1"},
		{UnitID: "u2"},
		{UnitID: "u3"},
		{UnitID: "ghost"},
	}

	in := FromAttendance(meeting, attendances, units)

	assert.Equal(t, 2, in.AttendedUnits)
	assert.True(t, in.AttendedLandShare.Equal(d("220")))
	assert.Equal(t, 4, in.TotalUnits)
	assert.True(t, in.TotalLandShare.Equal(d("400")))

	result := Evaluate(in)
	updated := Apply(meeting, in, result)
	assert.False(t, updated.QuorumAchieved)
	assert.Equal(t, 2, updated.AttendedUnitCount)
	assert.Equal(t, 0, meeting.AttendedUnitCount)
}

func TestNoteFormatsSharesWithTwoDecimals(t *testing.T) {
	assert.Equal(t,
		"KMK 30. Madde uyarınca; toplam 1000.00 arsa payının 612.50 kadarı toplantıda temsil edilmiştir.",
		Note(d("1000"), d("612.5")),
	)
}
