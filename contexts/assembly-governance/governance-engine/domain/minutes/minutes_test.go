package minutes

import (
	"strings"
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

func fixture() Input {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	meeting := entities.Meeting{
		MeetingID:          "meeting-1",
		Title:              "Olağan Genel Kurul",
		Description:        "2026 yılı olağan toplantısı",
		MeetingDate:        base,
		TotalUnitCount:     10,
		TotalSiteLandShare: d("1000"),
		AttendedUnitCount:  6,
		AttendedLandShare:  d("612.5"),
		QuorumAchieved:     true,
		IsCompleted:        true,
	}
	units := []entities.Unit{
		{UnitID: "u1", Number: "1", IsActive: true},
		{UnitID: "u2", Number: "2", IsActive: true},
		{UnitID: "u3", Number: "3", IsActive: true},
	}
	proxies := []entities.Proxy{
		{ProxyID: "p2", GiverUnitID: "u3", Receiver: entities.ExternalReceiver("Ayşe Yılmaz", "05321234567"), CreatedAt: base.Add(2 * time.Minute)},
		{ProxyID: "p1", GiverUnitID: "u2", Receiver: entities.UnitReceiver("u1"), CreatedAt: base.Add(time.Minute)},
	}
	decisions := []entities.Decision{
		{
			DecisionID:  "d2",
			Title:       "Bütçe",
			Description: "2026 bütçesinin onayı",
			Tally: entities.Tally{
				YesVotes:         2,
				NoVotes:          4,
				AbstainVotes:     0,
				YesLandShare:     d("200"),
				NoLandShare:      d("412.5"),
				AbstainLandShare: decimal.Zero,
			},
			CreatedAt: base.Add(20 * time.Minute),
		},
		{
			DecisionID:   "d1",
			Title:        "Çatı onarımı",
			Description:  "Çatının yenilenmesi",
			DecisionText: "Çatı onarımı kabul edilmiştir.",
			Tally: entities.Tally{
				YesVotes:         5,
				NoVotes:          1,
				AbstainVotes:     0,
				YesLandShare:     d("512.5"),
				NoLandShare:      d("100"),
				AbstainLandShare: decimal.Zero,
			},
			IsApproved: true,
			CreatedAt:  base.Add(10 * time.Minute),
		},
	}
	return Input{
		Meeting:    meeting,
		Units:      units,
		Proxies:    proxies,
		Decisions:  decisions,
		CompiledAt: base.Add(3 * time.Hour),
	}
}

func TestCompileRendersSectionsInFixedOrder(t *testing.T) {
	expected := strings.Join([]string{
		"=== TOPLANTI TUTANAĞI ===",
		"",
		"Toplantı Tarihi: 14.03.2026 19:00",
		"Toplantı Konusu: Olağan Genel Kurul",
		"Açıklama: 2026 yılı olağan toplantısı",
		"",
		"--- YETER SAYI (NİSAP) ---",
		"Toplam Birim Sayısı: 10",
		"Katılan Birim Sayısı: 6",
		"Toplam Arsa Payı: 1000.00",
		"Katılan Arsa Payı: 612.50",
		"",
		"KMK 30. Madde uyarınca; toplam 1000.00 arsa payının 612.50 kadarı toplantıda temsil edilmiştir.",
		"Yeter Sayı Durumu: SAĞLANDI",
		"",
		"--- VEKALETLER (KMK 31) ---",
		"Maksimum Vekalet Sayısı: 2",
		"Kullanılan Vekalet Sayısı: 2",
		"",
		"  - 2 numaralı birim, 1 numaralı birime vekalet vermiştir.",
		"  - 3 numaralı birim, Ayşe Yılmaz adlı kişiye vekalet vermiştir.",
		"",
		"--- KARARLAR ---",
		"",
		"Karar: Çatı onarımı",
		"Açıklama: Çatının yenilenmesi",
		"",
		"Oylama Sonuçları:",
		"  Evet: 5 birim (512.50 arsa payı)",
		"  Hayır: 1 birim (100.00 arsa payı)",
		"  Çekimser: 0 birim (0.00 arsa payı)",
		"  Karar Durumu: KABUL EDİLDİ",
		"",
		"Karar Metni: Çatı onarımı kabul edilmiştir.",
		"",
		"Karar: Bütçe",
		"Açıklama: 2026 bütçesinin onayı",
		"",
		"Oylama Sonuçları:",
		"  Evet: 2 birim (200.00 arsa payı)",
		"  Hayır: 4 birim (412.50 arsa payı)",
		"  Çekimser: 0 birim (0.00 arsa payı)",
		"  Karar Durumu: REDDEDİLDİ",
		"",
		"Tutanak Oluşturulma Tarihi: 14.03.2026 22:00",
		"",
	}, "\n")

	assert.Equal(t, expected, Compile(fixture()))
}

func TestCompileIsDeterministicApartFromCompiledAt(t *testing.T) {
	first := fixture()
	second := fixture()
	second.CompiledAt = second.CompiledAt.Add(36 * time.Hour)

	a := Compile(first)
	b := Compile(second)

	require.NotEqual(t, a, b)
	assert.Equal(t, StripCompiledAt(a), StripCompiledAt(b))
	assert.Equal(t, a, Compile(first))
}

func TestCompileRendersTimestampsInOneLocation(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	in := fixture()
	in.Meeting.MeetingDate = in.Meeting.MeetingDate.In(time.FixedZone("CET", 60*60))
	in.Location = istanbul

	text := Compile(in)

	assert.Contains(t, text, "Toplantı Tarihi: 14.03.2026 22:00\n")
	assert.Contains(t, text, "Tutanak Oluşturulma Tarihi: 15.03.2026 01:00\n")

	in.Location = nil
	text = Compile(in)
	assert.Contains(t, text, "Toplantı Tarihi: 14.03.2026 19:00\n")
	assert.Contains(t, text, "Tutanak Oluşturulma Tarihi: 14.03.2026 22:00\n")
}

func TestCompileOmitsEmptyOptionalSections(t *testing.T) {
	in := fixture()
	in.Meeting.Description = ""
	in.Meeting.QuorumAchieved = false
	in.Proxies = nil
	in.Decisions[1].DecisionText = ""

	text := Compile(in)

	assert.NotContains(t, text, "VEKALETLER")
	assert.NotContains(t, text, "Karar Metni:")
	assert.NotContains(t, text, "Açıklama: 2026 yılı")
	assert.Contains(t, text, "Yeter Sayı Durumu: SAĞLANAMADI")
}

func TestCompileFallsBackToUnitIDForUnknownUnits(t *testing.T) {
	in := fixture()
	in.Units = nil

	text := Compile(in)

	assert.Contains(t, text, "  - u2 numaralı birim, u1 numaralı birime vekalet vermiştir.")
}

func TestCompileDoesNotReorderCallerSlices(t *testing.T) {
	in := fixture()

	Compile(in)

	assert.Equal(t, "p2", in.Proxies[0].ProxyID)
	assert.Equal(t, "d2", in.Decisions[0].DecisionID)
}
