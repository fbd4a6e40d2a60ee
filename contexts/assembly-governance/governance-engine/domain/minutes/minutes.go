// Package minutes renders the official meeting minutes from a completed
// meeting's governance outcome.
//
// Compile is pure: identical input yields byte-identical text except for the
// trailing compiled-at line.
package minutes

import (
	"fmt"
	"strings"
	"time"

	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	"condogov/contexts/assembly-governance/governance-engine/domain/proxylimit"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"
)

const (
	timestampLayout = "02.01.2006 15:04"
	compiledAtLabel = "Tutanak Oluşturulma Tarihi: "
)

type Input struct {
	Meeting    entities.Meeting
	Units      []entities.Unit
	Proxies    []entities.Proxy
	Decisions  []entities.Decision
	CompiledAt time.Time
	// Location renders every timestamp in the text. Nil means UTC.
	Location *time.Location
}

func Compile(in Input) string {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	writeHeader(&b, in.Meeting, loc)
	writeQuorum(&b, in.Meeting)
	writeProxies(&b, in.Meeting, in.Units, in.Proxies)
	writeDecisions(&b, in.Decisions)
	line(&b, "")
	line(&b, compiledAtLabel+in.CompiledAt.In(loc).Format(timestampLayout))
	return b.String()
}

// StripCompiledAt drops the trailing compiled-at line, leaving the part of
// the text that depends only on the meeting.
func StripCompiledAt(text string) string {
	idx := strings.LastIndex(text, compiledAtLabel)
	if idx < 0 {
		return text
	}
	return text[:idx]
}

func writeHeader(b *strings.Builder, meeting entities.Meeting, loc *time.Location) {
	line(b, "=== TOPLANTI TUTANAĞI ===")
	line(b, "")
	line(b, "Toplantı Tarihi: "+meeting.MeetingDate.In(loc).Format(timestampLayout))
	line(b, "Toplantı Konusu: "+meeting.Title)
	if strings.TrimSpace(meeting.Description) != "" {
		line(b, "Açıklama: "+meeting.Description)
	}
	line(b, "")
}

func writeQuorum(b *strings.Builder, meeting entities.Meeting) {
	line(b, "--- YETER SAYI (NİSAP) ---")
	line(b, fmt.Sprintf("Toplam Birim Sayısı: %d", meeting.TotalUnitCount))
	line(b, fmt.Sprintf("Katılan Birim Sayısı: %d", meeting.AttendedUnitCount))
	line(b, "Toplam Arsa Payı: "+meeting.TotalSiteLandShare.StringFixed(2))
	line(b, "Katılan Arsa Payı: "+meeting.AttendedLandShare.StringFixed(2))
	line(b, "")
	line(b, quorum.Note(meeting.TotalSiteLandShare, meeting.AttendedLandShare))
	verdict := "SAĞLANAMADI"
	if meeting.QuorumAchieved {
		verdict = "SAĞLANDI"
	}
	line(b, "Yeter Sayı Durumu: "+verdict)
	line(b, "")
}

func writeProxies(b *strings.Builder, meeting entities.Meeting, units []entities.Unit, proxies []entities.Proxy) {
	if len(proxies) == 0 {
		return
	}
	labels := make(map[string]string, len(units))
	for _, unit := range units {
		labels[unit.UnitID] = unit.Label()
	}
	label := func(unitID string) string {
		if value, ok := labels[unitID]; ok {
			return value
		}
		return unitID
	}

	ordered := append([]entities.Proxy(nil), proxies...)
	entities.SortProxies(ordered)

	line(b, "--- VEKALETLER (KMK 31) ---")
	line(b, fmt.Sprintf("Maksimum Vekalet Sayısı: %d", proxylimit.MaxProxyCount(meeting.TotalUnitCount)))
	line(b, fmt.Sprintf("Kullanılan Vekalet Sayısı: %d", len(ordered)))
	line(b, "")
	for _, proxy := range ordered {
		receiver := ""
		if unitID, ok := proxy.Receiver.UnitID(); ok {
			receiver = label(unitID) + " numaralı birime"
		} else {
			name, _, _ := proxy.Receiver.External()
			receiver = name + " adlı kişiye"
		}
		line(b, fmt.Sprintf("  - %s numaralı birim, %s vekalet vermiştir.", label(proxy.GiverUnitID), receiver))
	}
	line(b, "")
}

func writeDecisions(b *strings.Builder, decisions []entities.Decision) {
	if len(decisions) == 0 {
		return
	}
	ordered := append([]entities.Decision(nil), decisions...)
	entities.SortDecisions(ordered)

	line(b, "--- KARARLAR ---")
	for _, decision := range ordered {
		tally := decision.Tally
		line(b, "")
		line(b, "Karar: "+decision.Title)
		line(b, "Açıklama: "+decision.Description)
		line(b, "")
		line(b, "Oylama Sonuçları:")
		line(b, fmt.Sprintf("  Evet: %d birim (%s arsa payı)", tally.YesVotes, tally.YesLandShare.StringFixed(2)))
		line(b, fmt.Sprintf("  Hayır: %d birim (%s arsa payı)", tally.NoVotes, tally.NoLandShare.StringFixed(2)))
		line(b, fmt.Sprintf("  Çekimser: %d birim (%s arsa payı)", tally.AbstainVotes, tally.AbstainLandShare.StringFixed(2)))
		verdict := "REDDEDİLDİ"
		if decision.IsApproved {
			verdict = "KABUL EDİLDİ"
		}
		line(b, "  Karar Durumu: "+verdict)
		if strings.TrimSpace(decision.DecisionText) != "" {
			line(b, "")
			line(b, "Karar Metni: "+decision.DecisionText)
		}
	}
}

func line(b *strings.Builder, text string) {
	b.WriteString(text)
	b.WriteByte('\n')
}
