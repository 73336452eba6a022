package cache

import (
	"testing"
	"time"

	"github.com/BizDaniel/go2play/internal/event"
	"gorm.io/gorm"
)

func makeEvents(ids ...uint) []event.Event {
	out := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, event.Event{Model: gorm.Model{ID: id}, Status: event.StatusEventOpen})
	}
	return out
}

func TestReplaceAllAndGet(t *testing.T) {
	s := NewStore()

	s.ReplaceAll(makeEvents(1, 2, 3))

	if s.Len() != 3 {
		t.Fatalf("expected 3 cached events, got %d", s.Len())
	}
	if _, ok := s.Get(2); !ok {
		t.Error("expected event 2 to be cached")
	}
	if _, ok := s.Get(9); ok {
		t.Error("expected event 9 to be absent")
	}

	// A replacement fully supersedes the previous snapshot.
	s.ReplaceAll(makeEvents(4))
	if s.Len() != 1 {
		t.Fatalf("expected 1 cached event after replacement, got %d", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Error("expected event 1 to be evicted by replacement")
	}
}

func TestSnapshotPreservesOrder(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(makeEvents(3, 1, 2))

	snapshot := s.Snapshot()
	want := []uint{3, 1, 2}
	if len(snapshot) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(snapshot))
	}
	for i, id := range want {
		if snapshot[i].ID != id {
			t.Errorf("position %d: expected event %d, got %d", i, id, snapshot[i].ID)
		}
	}
}

func TestRefreshedAtAdvances(t *testing.T) {
	s := NewStore()
	if !s.RefreshedAt().IsZero() {
		t.Error("expected zero RefreshedAt before first replacement")
	}

	s.ReplaceAll(makeEvents(1))
	first := s.RefreshedAt()
	if first.IsZero() {
		t.Fatal("expected RefreshedAt to be set after replacement")
	}

	s.ReplaceAll(makeEvents(1, 2))
	if s.RefreshedAt().Before(first) {
		t.Error("expected RefreshedAt to advance on replacement")
	}
}

func TestObserveAllReceivesInitialSnapshot(t *testing.T) {
	s := NewStore()
	s.ReplaceAll(makeEvents(1, 2))

	sub := s.ObserveAll()
	defer sub.Close()

	select {
	case snapshot := <-sub.C:
		if len(snapshot) != 2 {
			t.Fatalf("expected initial snapshot of 2 events, got %d", len(snapshot))
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot delivered")
	}
}

func TestObserveAllCoalescesToLatest(t *testing.T) {
	s := NewStore()
	sub := s.ObserveAll()
	defer sub.Close()

	// Drain the initial empty snapshot.
	<-sub.C

	// Without a consumer running, consecutive replacements coalesce.
	s.ReplaceAll(makeEvents(1))
	s.ReplaceAll(makeEvents(1, 2))
	s.ReplaceAll(makeEvents(1, 2, 3))

	select {
	case snapshot := <-sub.C:
		if len(snapshot) != 3 {
			t.Fatalf("expected latest snapshot of 3 events, got %d", len(snapshot))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	select {
	case stale := <-sub.C:
		t.Fatalf("expected no buffered stale snapshot, got %d events", len(stale))
	default:
	}
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	s := NewStore()
	sub := s.ObserveAll()
	<-sub.C
	sub.Close()
	sub.Close() // idempotent

	if _, open := <-sub.C; open {
		t.Fatal("expected channel to be closed after Close")
	}

	// Deliveries after close must not panic.
	s.ReplaceAll(makeEvents(1))
}

func TestStoreCloseDetachesSubscribers(t *testing.T) {
	s := NewStore()
	a := s.ObserveAll()
	b := s.ObserveAll()
	<-a.C
	<-b.C

	s.Close()

	if _, open := <-a.C; open {
		t.Error("expected subscriber a to be closed")
	}
	if _, open := <-b.C; open {
		t.Error("expected subscriber b to be closed")
	}

	late := s.ObserveAll()
	if _, open := <-late.C; open {
		t.Error("expected late subscription on closed store to be closed")
	}
}
