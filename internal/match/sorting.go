package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quattro-app/quattro/internal/level"
)

// SortFunc reorders a match list for display. Implementations never mutate
// their input; they return a freshly allocated slice. All sorts are stable,
// so equal elements keep their incoming order.
type SortFunc func([]Match) []Match

// Strategy names accepted by the list endpoint.
const (
	SortByDate  = "date"
	SortByFill  = "fill"
	SortByLevel = "level"
)

// DefaultSortStrategies builds the strategy table wired into the controller
// at startup. Lookup by name; unknown names fall back to SortByDate.
func DefaultSortStrategies() map[string]SortFunc {
	return map[string]SortFunc{
		SortByDate:  SortMatchesByDate,
		SortByFill:  SortMatchesByFill,
		SortByLevel: SortMatchesByLevel,
	}
}

// ApplySort runs the named strategy from the table, defaulting to SortByDate
// when the name is unknown or empty. The fallback is a documented default,
// not an error.
func ApplySort(strategies map[string]SortFunc, name string, matches []Match) []Match {
	strategy, ok := strategies[name]
	if !ok {
		strategy = strategies[SortByDate]
	}
	if strategy == nil {
		return append([]Match(nil), matches...)
	}
	return strategy(matches)
}

// OrderClause returns the SQL ordering that matches a strategy name, so
// pagination slices the whole collection in the same order the strategy
// sorts a page. Unknown and empty names fall back to the date ordering,
// mirroring ApplySort.
func OrderClause(name string) string {
	switch name {
	case SortByFill:
		return "(SELECT COUNT(*) FROM registrations" +
			" WHERE registrations.match_id = matches.id" +
			" AND registrations.status = 'joined'" +
			" AND registrations.deleted_at IS NULL) DESC"
	case SortByLevel:
		var b strings.Builder
		b.WriteString("CASE required_level")
		for i, l := range level.All() {
			fmt.Fprintf(&b, " WHEN '%s' THEN %d", l, i)
		}
		b.WriteString(" END ASC")
		return b.String()
	default:
		return "scheduled_at ASC"
	}
}

// SortMatchesByDate orders by scheduled time, earliest first.
func SortMatchesByDate(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

// SortMatchesByFill orders by active registration count, fullest first.
// Counts come from the registrations preloaded on each match.
func SortMatchesByFill(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActiveCount() > out[j].ActiveCount()
	})
	return out
}

// SortMatchesByLevel orders by required level, lowest tier first.
func SortMatchesByLevel(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequiredLevel.Ordinal() < out[j].RequiredLevel.Ordinal()
	})
	return out
}
