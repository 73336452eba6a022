package event

import (
	"log"
	"sort"
	"time"
)

// Derived-view computation over already-fetched event lists. All functions
// here are pure: no store calls, deterministic given their inputs. Records
// with malformed dates are excluded from date-sensitive views and logged,
// never propagated as errors.

// FilterAvailable keeps events that a user can still see in the "available
// matches" view: public, not cancelled or completed, and dated today or
// later. The result is sorted by date then start time.
func FilterAvailable(events []Event, today time.Time) []Event {
	day := truncateToDay(today)
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if !e.Public {
			continue
		}
		if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
			continue
		}
		d, ok := e.Date()
		if !ok {
			log.Printf("excluding event %d from available view: unparsable match_date %q", e.ID, e.MatchDate)
			continue
		}
		if d.Before(day) {
			continue
		}
		out = append(out, e)
	}
	sortByDate(out)
	return out
}

// FilterJoinable narrows FilterAvailable to events the user could join now:
// below capacity and not already a member.
func FilterJoinable(events []Event, userID uint, today time.Time) []Event {
	available := FilterAvailable(events, today)
	out := make([]Event, 0, len(available))
	for _, e := range available {
		if e.AtCapacity() {
			continue
		}
		if e.HasPlayer(userID) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sortByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].MatchDate != events[j].MatchDate {
			return events[i].MatchDate < events[j].MatchDate
		}
		return events[i].StartTime < events[j].StartTime
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
