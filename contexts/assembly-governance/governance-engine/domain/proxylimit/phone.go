package proxylimit

import "strings"

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")

// CleanPhone strips separators and the plus sign from a phone number.
func CleanPhone(raw string) string {
	return phoneNoise.Replace(strings.TrimSpace(raw))
}

// NormalizeMobile returns a Turkish mobile number as 05XXXXXXXXX. Country code
// and trunk prefixes are accepted; anything else is rejected.
func NormalizeMobile(raw string) (string, bool) {
	cleaned := CleanPhone(raw)
	switch {
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "90"):
		cleaned = cleaned[2:]
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "0"):
		cleaned = cleaned[1:]
	}
	if len(cleaned) != 10 || cleaned[0] != '5' {
		return "", false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return "0" + cleaned, true
}

// FormatMobile renders a valid mobile number as "0 5XX XXX XX XX". Invalid
// input is returned cleaned but unformatted.
func FormatMobile(raw string) string {
	normalized, ok := NormalizeMobile(raw)
	if !ok {
		return CleanPhone(raw)
	}
	return normalized[:1] + " " + normalized[1:4] + " " + normalized[4:7] + " " + normalized[7:9] + " " + normalized[9:]
}
