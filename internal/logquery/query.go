// Package logquery filters, sorts and paginates parsed log events for
// the dashboard. All work is in-memory over an already-parsed slice;
// queries degrade to empty results instead of failing.
package logquery

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

// DefaultLimit is the page size used when the caller supplies none.
const DefaultLimit = 50

// levelAliases maps each canonical level to the spellings accepted
// when filtering. Every set contains the canonical name itself.
var levelAliases = map[string][]string{
	model.LevelDebug:    {"debug", "trace"},
	model.LevelInfo:     {"info", "information", "notice"},
	model.LevelSuccess:  {"success", "ok"},
	model.LevelWarning:  {"warning", "warn", "attention"},
	model.LevelError:    {"error", "err", "failure"},
	model.LevelCritical: {"critical", "crit", "fatal"},
	model.LevelUnknown:  {"unknown"},
}

// canonicalLevel resolves a filter value (canonical name or alias) to
// its canonical level, or "" when unrecognized.
func canonicalLevel(filter string) string {
	f := strings.ToLower(strings.TrimSpace(filter))
	if f == "" {
		return ""
	}
	for canonical, aliases := range levelAliases {
		for _, a := range aliases {
			if a == f {
				return canonical
			}
		}
	}
	return ""
}

// matchesLevel reports whether an event's level satisfies the filter,
// directly or through alias membership, case-insensitively.
func matchesLevel(eventLevel, filter string) bool {
	canonical := canonicalLevel(filter)
	if canonical == "" {
		// Unrecognized filter value: fall back to exact comparison so
		// the result is empty rather than everything.
		return strings.EqualFold(eventLevel, filter)
	}
	for _, a := range levelAliases[canonical] {
		if strings.EqualFold(eventLevel, a) {
			return true
		}
	}
	return false
}

// matchesSearch reports whether any indexed field of the event
// contains the search term, case-insensitively.
func matchesSearch(event model.LogEvent, term string) bool {
	needle := strings.ToLower(term)
	fields := []string{
		event.Timestamp.Format(time.RFC3339),
		event.Level,
		event.Message,
		event.Source,
		event.Raw,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Query applies the filters in q conjunctively, sorts by timestamp and
// returns the requested page. typeMatcher is the compiled pattern of
// the selected log type; nil means no log-type filter (including the
// invalid-stored-pattern case, which callers map to nil).
func Query(events []model.LogEvent, q model.LogQuery, typeMatcher *regexp.Regexp) model.LogPage {
	filtered := make([]model.LogEvent, 0, len(events))
	for _, e := range events {
		if q.Search != "" && !matchesSearch(e, q.Search) {
			continue
		}
		if q.Level != "" && !matchesLevel(e.Level, q.Level) {
			continue
		}
		if typeMatcher != nil && !typeMatcher.MatchString(e.Message) {
			continue
		}
		filtered = append(filtered, e)
	}

	// Stable sort keeps encounter order for equal timestamps.
	asc := strings.EqualFold(q.Sort, "asc")
	sort.SliceStable(filtered, func(i, j int) bool {
		if asc {
			return filtered[i].Timestamp.Before(filtered[j].Timestamp)
		}
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	items := []model.LogEvent{}
	if start < total {
		if end > total {
			end = total
		}
		items = filtered[start:end]
	}

	return model.LogPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
