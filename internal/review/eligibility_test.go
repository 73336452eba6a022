package review

import (
	"testing"
	"time"

	"github.com/BizDaniel/go2play/internal/event"
	"gorm.io/gorm"
)

var reviewTestNow = time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

func playedEvent(id uint, status event.EventStatus, matchDate string, playerIDs ...uint) event.Event {
	e := event.Event{Model: gorm.Model{ID: id}, Status: status, MatchDate: matchDate, MaxPlayers: 10}
	for _, uid := range playerIDs {
		e.Players = append(e.Players, event.EventPlayer{EventID: id, UserID: uid})
	}
	return e
}

func TestEligiblePairsExcludesSelf(t *testing.T) {
	players := []uint{1, 2, 3}

	pairs := EligiblePairs(players, nil)

	if len(pairs) != 6 {
		t.Fatalf("expected 6 directed pairs for 3 players, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.ReviewerID == p.ReviewedID {
			t.Errorf("self pair leaked: %+v", p)
		}
	}
}

func TestEligiblePairsExcludesExistingReviews(t *testing.T) {
	players := []uint{1, 2, 3}
	existing := []Review{
		{ReviewerID: 1, ReviewedID: 2},
		{ReviewerID: 3, ReviewedID: 1},
	}

	pairs := EligiblePairs(players, existing)

	if len(pairs) != 4 {
		t.Fatalf("expected 4 remaining pairs, got %d: %+v", len(pairs), pairs)
	}
	for _, p := range pairs {
		if p == (Pair{ReviewerID: 1, ReviewedID: 2}) || p == (Pair{ReviewerID: 3, ReviewedID: 1}) {
			t.Errorf("already-reviewed pair leaked: %+v", p)
		}
	}
}

func TestEligiblePairsDegenerateInputs(t *testing.T) {
	if pairs := EligiblePairs(nil, nil); len(pairs) != 0 {
		t.Errorf("expected no pairs for empty player set, got %+v", pairs)
	}
	if pairs := EligiblePairs([]uint{42}, nil); len(pairs) != 0 {
		t.Errorf("expected no pairs for a single player, got %+v", pairs)
	}
}

func TestEligibleCandidates(t *testing.T) {
	const me = uint(1)
	events := []event.Event{
		playedEvent(10, event.StatusEventCompleted, "2026-08-30", me, 2, 3),
		playedEvent(11, event.StatusEventOpen, "2026-08-30", me, 4),      // not completed
		playedEvent(12, event.StatusEventCompleted, "2026-08-30", 5, 6),  // I did not play
		playedEvent(13, event.StatusEventCompleted, "2026-08-31", me, 2), // 2 again, different event
	}
	written := []Review{
		{ReviewerID: me, ReviewedID: 2, EventID: 10},
		{ReviewerID: 3, ReviewedID: me, EventID: 10}, // someone else's review of me
	}

	got := EligibleCandidates(events, written, me, reviewTestNow)

	want := map[Candidate]bool{
		{UserID: 3, EventID: 10}: true,
		{UserID: 2, EventID: 13}: true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(want), len(got), got)
	}
	for _, c := range got {
		if c.UserID == me {
			t.Errorf("self candidate leaked: %+v", c)
		}
		if !want[c] {
			t.Errorf("unexpected candidate %+v", c)
		}
	}
}

func TestEligibleCandidatesExcludesFutureAndUnparsableDates(t *testing.T) {
	const me = uint(1)
	events := []event.Event{
		playedEvent(20, event.StatusEventCompleted, "2026-09-01", me, 2), // dated tomorrow
		playedEvent(21, event.StatusEventCompleted, "not-a-date", me, 3),
	}

	if got := EligibleCandidates(events, nil, me, reviewTestNow); len(got) != 0 {
		t.Errorf("expected no candidates before the event date, got %+v", got)
	}
}

func TestCanReview(t *testing.T) {
	completed := playedEvent(10, event.StatusEventCompleted, "2026-08-30", 1, 2, 3)
	future := playedEvent(11, event.StatusEventCompleted, "2026-09-01", 1, 2, 3)
	open := playedEvent(12, event.StatusEventOpen, "2026-08-30", 1, 2, 3)
	undated := playedEvent(13, event.StatusEventCompleted, "30/08/2026", 1, 2, 3)
	existing := []Review{{ReviewerID: 1, ReviewedID: 2, EventID: 10}}

	cases := []struct {
		name       string
		reviewerID uint
		reviewedID uint
		e          *event.Event
		want       bool
	}{
		{"valid pair", 2, 3, &completed, true},
		{"self review", 2, 2, &completed, false},
		{"reviewer not a player", 9, 2, &completed, false},
		{"reviewed not a player", 1, 9, &completed, false},
		{"already reviewed", 1, 2, &completed, false},
		{"reverse of existing is allowed", 2, 1, &completed, true},
		{"event dated in the future", 2, 3, &future, false},
		{"event not completed", 2, 3, &open, false},
		{"unparsable event date", 2, 3, &undated, false},
		{"missing event", 2, 3, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanReview(tc.reviewerID, tc.reviewedID, tc.e, existing, reviewTestNow); got != tc.want {
				t.Errorf("CanReview(%d, %d) = %v, want %v", tc.reviewerID, tc.reviewedID, got, tc.want)
			}
		})
	}
}
