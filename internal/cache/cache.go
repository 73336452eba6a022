// Package cache holds an in-memory snapshot of fetched events and pushes
// every replacement to subscribers. It is the single source the feed reads
// from: writers replace the whole snapshot, readers observe or poll.
package cache

import (
	"sync"
	"time"

	"github.com/BizDaniel/go2play/internal/event"
)

// Store is a replace-only event cache. There is no per-record update path:
// a fetch replaces the entire snapshot atomically, which keeps the cache
// trivially consistent with the last server response.
type Store struct {
	mu          sync.Mutex
	events      map[uint]event.Event
	order       []uint
	refreshedAt time.Time
	subscribers map[*Subscription]struct{}
	closed      bool
}

// Subscription delivers each new snapshot on C. The channel has a one-slot
// buffer with latest-wins semantics: a slow consumer sees the newest
// snapshot, never a backlog of stale ones. C is closed when either side
// calls Close.
type Subscription struct {
	C     chan []event.Event
	store *Store
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		events:      make(map[uint]event.Event),
		subscribers: make(map[*Subscription]struct{}),
	}
}

// ReplaceAll swaps the snapshot and notifies every subscriber. Input order is
// preserved for Snapshot; duplicate IDs keep the last occurrence.
func (s *Store) ReplaceAll(events []event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.events = make(map[uint]event.Event, len(events))
	s.order = s.order[:0]
	for _, e := range events {
		if _, seen := s.events[e.ID]; !seen {
			s.order = append(s.order, e.ID)
		}
		s.events[e.ID] = e
	}
	s.refreshedAt = time.Now()

	snapshot := s.snapshotLocked()
	for sub := range s.subscribers {
		sub.deliver(snapshot)
	}
}

// Get returns the cached event and whether it is present.
func (s *Store) Get(id uint) (event.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e, ok
}

// Snapshot returns a copy of the cached events in insertion order.
func (s *Store) Snapshot() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of cached events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// RefreshedAt returns when the snapshot was last replaced. Zero before the
// first ReplaceAll.
func (s *Store) RefreshedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshedAt
}

// ObserveAll registers a subscriber. The current snapshot is delivered
// immediately so observers never start blind. On a closed store the returned
// subscription's channel is already closed.
func (s *Store) ObserveAll() *Subscription {
	sub := &Subscription{C: make(chan []event.Event, 1), store: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(sub.C)
		return sub
	}
	s.subscribers[sub] = struct{}{}
	sub.deliver(s.snapshotLocked())
	return sub
}

// Close detaches every subscriber and rejects further writes. Idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subscribers {
		close(sub.C)
	}
	s.subscribers = make(map[*Subscription]struct{})
}

// Close detaches the subscription from its store and closes C. Idempotent.
func (sub *Subscription) Close() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	if _, active := sub.store.subscribers[sub]; !active {
		return
	}
	delete(sub.store.subscribers, sub)
	close(sub.C)
}

// deliver is latest-wins: if the one-slot buffer already holds an unread
// snapshot it is dropped in favour of the new one. Caller holds the store
// mutex, which serializes delivery against channel close.
func (sub *Subscription) deliver(snapshot []event.Event) {
	select {
	case sub.C <- snapshot:
	default:
		select {
		case <-sub.C:
		default:
		}
		sub.C <- snapshot
	}
}

func (s *Store) snapshotLocked() []event.Event {
	out := make([]event.Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.events[id])
	}
	return out
}
