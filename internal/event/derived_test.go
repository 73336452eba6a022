package event

import (
	"testing"
	"time"

	"gorm.io/gorm"
)

var testToday = time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

func makeEvent(id uint, date string, status EventStatus, public bool, maxPlayers int, playerIDs ...uint) Event {
	e := Event{
		Model:      gorm.Model{ID: id},
		MatchDate:  date,
		Status:     status,
		Public:     public,
		MaxPlayers: maxPlayers,
	}
	for _, uid := range playerIDs {
		e.Players = append(e.Players, EventPlayer{EventID: id, UserID: uid})
	}
	return e
}

func eventIDs(events []Event) []uint {
	ids := make([]uint, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestFilterAvailableExcludesClosedStatuses(t *testing.T) {
	events := []Event{
		makeEvent(1, "2026-09-01", StatusEventOpen, true, 10),
		makeEvent(2, "2026-09-01", StatusEventCancelled, true, 10),
		makeEvent(3, "2026-09-01", StatusEventCompleted, true, 10),
		makeEvent(4, "2026-09-01", StatusEventFull, true, 10),
	}

	got := FilterAvailable(events, testToday)

	for _, e := range got {
		if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
			t.Errorf("event %d with status %q leaked into available view", e.ID, e.Status)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 available events, got %d (%v)", len(got), eventIDs(got))
	}
}

func TestFilterAvailableExcludesPrivateAndPast(t *testing.T) {
	events := []Event{
		makeEvent(1, "2026-08-30", StatusEventOpen, true, 10),  // yesterday
		makeEvent(2, "2026-08-31", StatusEventOpen, true, 10),  // today
		makeEvent(3, "2026-09-02", StatusEventOpen, false, 10), // private
		makeEvent(4, "2026-09-02", StatusEventOpen, true, 10),
	}

	got := FilterAvailable(events, testToday)

	want := []uint{2, 4}
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, eventIDs(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected event %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestFilterAvailableToleratesMalformedDates(t *testing.T) {
	events := []Event{
		makeEvent(1, "not-a-date", StatusEventOpen, true, 10),
		makeEvent(2, "", StatusEventOpen, true, 10),
		makeEvent(3, "2026-09-01", StatusEventOpen, true, 10),
	}

	got := FilterAvailable(events, testToday)

	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only event 3 to survive malformed dates, got %v", eventIDs(got))
	}
}

func TestFilterAvailableEmptyInput(t *testing.T) {
	if got := FilterAvailable(nil, testToday); len(got) != 0 {
		t.Fatalf("expected empty output for nil input, got %v", eventIDs(got))
	}
	if got := FilterAvailable([]Event{}, testToday); len(got) != 0 {
		t.Fatalf("expected empty output for empty input, got %v", eventIDs(got))
	}
}

func TestFilterAvailableSortsByDateThenStartTime(t *testing.T) {
	a := makeEvent(1, "2026-09-02", StatusEventOpen, true, 10)
	a.StartTime = "18:00"
	b := makeEvent(2, "2026-09-01", StatusEventOpen, true, 10)
	b.StartTime = "20:00"
	c := makeEvent(3, "2026-09-01", StatusEventOpen, true, 10)
	c.StartTime = "09:00"

	got := FilterAvailable([]Event{a, b, c}, testToday)

	want := []uint{3, 2, 1}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected order %v, got %v", want, eventIDs(got))
		}
	}
}

func TestFilterJoinableExcludesFullAndJoined(t *testing.T) {
	const me = uint(7)
	events := []Event{
		makeEvent(1, "2026-09-01", StatusEventOpen, true, 2, 1, 2),    // at capacity
		makeEvent(2, "2026-09-01", StatusEventOpen, true, 4, 1, me),   // already a member
		makeEvent(3, "2026-09-01", StatusEventOpen, true, 4, 1, 2, 3), // joinable
	}

	got := FilterJoinable(events, me, testToday)

	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only event 3 joinable, got %v", eventIDs(got))
	}
}

func TestEventVisibleTo(t *testing.T) {
	groupID := uint(9)
	private := makeEvent(1, "2026-09-01", StatusEventOpen, false, 10, 2)
	private.OrganizerID = 3
	private.GroupID = &groupID

	cases := []struct {
		name        string
		e           Event
		uid         uint
		groupMember bool
		want        bool
	}{
		{"public event, anyone", makeEvent(2, "2026-09-01", StatusEventOpen, true, 10), 99, false, true},
		{"private event, outsider", private, 99, false, false},
		{"private event, group member", private, 99, true, true},
		{"private event, organizer", private, 3, false, true},
		{"private event, player", private, 2, false, true},
		{"private event without group, outsider claiming membership",
			makeEvent(3, "2026-09-01", StatusEventOpen, false, 10, 2), 99, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.VisibleTo(tc.uid, tc.groupMember); got != tc.want {
				t.Errorf("VisibleTo(%d, %v) = %v, want %v", tc.uid, tc.groupMember, got, tc.want)
			}
		})
	}
}

func TestEventHasPlayerAndAtCapacity(t *testing.T) {
	e := makeEvent(1, "2026-09-01", StatusEventOpen, true, 2, 5)

	if !e.HasPlayer(5) {
		t.Error("expected HasPlayer(5) to be true")
	}
	if e.HasPlayer(6) {
		t.Error("expected HasPlayer(6) to be false")
	}
	if e.AtCapacity() {
		t.Error("expected event with 1/2 players not to be at capacity")
	}

	e.Players = append(e.Players, EventPlayer{EventID: 1, UserID: 6})
	if !e.AtCapacity() {
		t.Error("expected event with 2/2 players to be at capacity")
	}
}
