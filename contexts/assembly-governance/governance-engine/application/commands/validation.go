package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxMeetingTitleLength        = 200
	maxMeetingDescriptionLength  = 1000
	maxDecisionTitleLength       = 200
	maxDecisionDescriptionLength = 2000
	maxDecisionTextLength        = 5000
	maxAgendaTitleLength         = 200
	maxDocumentTitleLength       = 200
)

func requiredWithin(value string, limit int) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= limit
}

func optionalWithin(value string, limit int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) <= limit
}

func hashCommand(value any) string {
	raw, _ := json.Marshal(value)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func resolveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 7 * 24 * time.Hour
	}
	return ttl
}

func trimAll(values []string) []string {
	items := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
