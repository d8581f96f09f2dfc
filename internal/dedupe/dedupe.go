// Package dedupe collapses near-duplicate records across sources.
package dedupe

import (
	"strings"

	"github.com/awidjaja/tripplanner/internal/models"
)

// Key normalizes a record name for comparison: lowercased, trimmed,
// inner whitespace collapsed to single spaces.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Records drops later duplicates, keeping the first-seen record for
// each key. Callers append in source-priority order, so the kept
// duplicate is always the higher-priority source's version.
func Records(in []models.Record) []models.Record {
	seen := make(map[string]bool, len(in))
	out := make([]models.Record, 0, len(in))
	for _, r := range in {
		key := Key(r.DedupeKey())
		if key == "" {
			// No name to compare on; keep it rather than guess.
			out = append(out, r)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
