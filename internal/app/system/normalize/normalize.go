// Package normalize canonicalizes user input before it is validated or stored.
package normalize

import (
	"strings"

	"github.com/samaquete/admin/internal/domain/models"
)

// Email lowercases and trims.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims and collapses inner whitespace; case is preserved.
func Name(s string) string { return strings.Join(strings.Fields(s), " ") }

// Role lowercases and trims.
func Role(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Status lowercases and trims.
func Status(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// QueryParam trims; case is preserved.
func QueryParam(s string) string { return strings.TrimSpace(s) }

// ScopeID trims a diocese/parish/church filter. "all" means no filter.
func ScopeID(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}

// DioceseID uppercases a diocese code ("thies" -> "THIES").
func DioceseID(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Days lowercases and deduplicates weekday names and orders them Monday
// first. Unknown names are kept at the end so validation can reject them.
func Days(in []string) []string {
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		seen[strings.ToLower(strings.TrimSpace(d))] = true
	}
	delete(seen, "")

	out := make([]string, 0, len(seen))
	for _, d := range models.Weekdays {
		if seen[d] {
			out = append(out, d)
			delete(seen, d)
		}
	}
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if seen[d] {
			out = append(out, d)
			delete(seen, d)
		}
	}
	return out
}

// Time pads a single-digit hour: "7:30" -> "07:30".
func Time(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[1] == ':' {
		return "0" + s
	}
	return s
}
