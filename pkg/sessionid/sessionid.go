// Package sessionid generates and recovers session identifiers.
package sessionid

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates no session identifier could be recovered from the input.
var ErrNotFound = errors.New("no session identifier found")

// Canonical matches identifiers produced by New.
var Canonical = regexp.MustCompile(`session_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}_[a-f0-9]{8}`)

// extraction patterns in priority order: canonical form first, then
// progressively looser shapes seen in free-form payloads.
var patterns = []*regexp.Regexp{
	Canonical,
	regexp.MustCompile(`[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`),
	regexp.MustCompile(`"session_id"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`session_id[=:]\s*([\w-]+)`),
	regexp.MustCompile(`session_[\w-]+`),
	regexp.MustCompile(`\b[a-zA-Z0-9]{16,}\b`),
}

// New returns a fresh session identifier of the form
// session_YYYY-MM-DD_HH-MM-SS_<8 hex chars>.
func New(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "session_" + now.Format("2006-01-02_15-04-05") + "_" + suffix
}

// Valid reports whether id has the canonical form produced by New.
func Valid(id string) bool {
	return Canonical.FindString(id) == id
}

// Extract recovers a session identifier from free-form text, trying the
// canonical form before looser patterns. Returns ErrNotFound when nothing
// plausible matches.
func Extract(text string) (string, error) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil
	}

	return "", ErrNotFound
}
