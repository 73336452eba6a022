package review

import (
	"time"

	"github.com/BizDaniel/go2play/internal/event"
)

// Review eligibility is computed over completed events' player sets and the
// reviews already written. All functions here are pure. An event only opens
// for reviews once it is completed AND its date has passed; a completed row
// carrying a future or unparsable date contributes nothing, mirroring how
// the derived event views treat malformed dates.

// Pair is a directed reviewer-to-reviewed edge.
type Pair struct {
	ReviewerID uint `json:"reviewer_id"`
	ReviewedID uint `json:"reviewed_id"`
}

// EligiblePairs returns every review a participant could still write for the
// event: all ordered pairs of distinct players, minus pairs already covered
// by an existing review. Output order follows the player list.
func EligiblePairs(playerIDs []uint, existing []Review) []Pair {
	written := make(map[Pair]struct{}, len(existing))
	for _, r := range existing {
		written[Pair{ReviewerID: r.ReviewerID, ReviewedID: r.ReviewedID}] = struct{}{}
	}

	out := make([]Pair, 0, len(playerIDs)*(len(playerIDs)-1))
	for _, reviewer := range playerIDs {
		for _, reviewed := range playerIDs {
			if reviewer == reviewed {
				continue
			}
			p := Pair{ReviewerID: reviewer, ReviewedID: reviewed}
			if _, ok := written[p]; ok {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Candidate is one review a user could still write: a fellow player of one
// of their completed events.
type Candidate struct {
	UserID  uint `json:"user_id"`
	EventID uint `json:"event_id"`
}

// EligibleCandidates walks the reviewer's completed events and returns every
// fellow player they have not reviewed yet. Events that are not completed,
// or whose date is still in the future, contribute nothing; each
// (user, event) appears at most once.
func EligibleCandidates(events []event.Event, reviews []Review, reviewerID uint, now time.Time) []Candidate {
	written := make(map[Candidate]struct{}, len(reviews))
	for _, r := range reviews {
		if r.ReviewerID == reviewerID {
			written[Candidate{UserID: r.ReviewedID, EventID: r.EventID}] = struct{}{}
		}
	}

	var out []Candidate
	for _, e := range events {
		if !reviewWindowOpen(&e, now) {
			continue
		}
		if !e.HasPlayer(reviewerID) {
			continue
		}
		for _, p := range e.Players {
			if p.UserID == reviewerID {
				continue
			}
			c := Candidate{UserID: p.UserID, EventID: e.ID}
			if _, ok := written[c]; ok {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// CanReview reports whether reviewer may still review reviewed for the
// event: the review window must be open, both must be players, self-reviews
// are never allowed, and the pair must not already have a review.
func CanReview(reviewerID, reviewedID uint, e *event.Event, existing []Review, now time.Time) bool {
	if reviewerID == reviewedID {
		return false
	}
	if e == nil || !reviewWindowOpen(e, now) {
		return false
	}
	if !e.HasPlayer(reviewerID) || !e.HasPlayer(reviewedID) {
		return false
	}
	for _, r := range existing {
		if r.ReviewerID == reviewerID && r.ReviewedID == reviewedID {
			return false
		}
	}
	return true
}

// reviewWindowOpen reports whether the event accepts reviews: completed, and
// dated today or earlier. Unparsable dates never open the window.
func reviewWindowOpen(e *event.Event, now time.Time) bool {
	if e.Status != event.StatusEventCompleted {
		return false
	}
	d, ok := e.Date()
	if !ok {
		return false
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.After(day)
}
