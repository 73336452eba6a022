package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BizDaniel/go2play/internal/cache"
	"github.com/BizDaniel/go2play/internal/event"
	"gorm.io/gorm"
)

const testDebounce = 20 * time.Millisecond

type fakeSource struct {
	mu      sync.Mutex
	queries []string
	events  []event.Event
	err     error
	release chan struct{} // when non-nil, SearchEvents blocks until closed
}

func (f *fakeSource) SearchEvents(ctx context.Context, query string) ([]event.Event, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	release := f.release
	events := f.events
	err := f.err
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return events, err
}

func (f *fakeSource) recordedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeMembership struct {
	mu      sync.Mutex
	joins   []uint
	leaves  []uint
	err     error
	release chan struct{} // when non-nil, mutations block until closed
}

func (f *fakeMembership) AddPlayer(ctx context.Context, eventID, userID uint) error {
	f.mu.Lock()
	f.joins = append(f.joins, eventID)
	release := f.release
	err := f.err
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return err
}

func (f *fakeMembership) RemovePlayer(ctx context.Context, eventID, userID uint) error {
	f.mu.Lock()
	f.leaves = append(f.leaves, eventID)
	release := f.release
	err := f.err
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return err
}

func feedEvents(ids ...uint) []event.Event {
	out := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, event.Event{Model: gorm.Model{ID: id}, Status: event.StatusEventOpen})
	}
	return out
}

func waitForPhase(t *testing.T, m *Machine, want Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Snapshot().Phase == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("machine never reached phase %q, stuck at %q", want, m.Snapshot().Phase)
}

func TestLoadTransitionsToLoaded(t *testing.T) {
	source := &fakeSource{events: feedEvents(1, 2)}
	m := NewMachine(7, source, &fakeMembership{}, nil, testDebounce)
	defer m.Close()

	if m.Snapshot().Phase != PhaseIdle {
		t.Fatalf("expected idle before load, got %q", m.Snapshot().Phase)
	}
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	state := m.Snapshot()
	if state.Phase != PhaseLoaded {
		t.Fatalf("expected loaded, got %q", state.Phase)
	}
	if len(state.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(state.Events))
	}
}

func TestLoadErrorRetainsNothingButReportsMessage(t *testing.T) {
	source := &fakeSource{err: errors.New("store unavailable")}
	m := NewMachine(7, source, &fakeMembership{}, nil, testDebounce)
	defer m.Close()

	if err := m.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}

	state := m.Snapshot()
	if state.Phase != PhaseError {
		t.Fatalf("expected error phase, got %q", state.Phase)
	}
	if state.ErrorMessage == "" {
		t.Fatal("expected an error message")
	}
}

func TestSearchDebounceAppliesOnlyLastQuery(t *testing.T) {
	source := &fakeSource{events: feedEvents(1)}
	m := NewMachine(7, source, &fakeMembership{}, nil, testDebounce)
	defer m.Close()

	m.Search("a")
	m.Search("ab")
	m.Search("abc")

	waitForPhase(t, m, PhaseLoaded)

	queries := source.recordedQueries()
	if len(queries) != 1 || queries[0] != "abc" {
		t.Fatalf("expected only the final query %q to be fetched, got %v", "abc", queries)
	}
	if m.Snapshot().Query != "abc" {
		t.Fatalf("expected query %q in state, got %q", "abc", m.Snapshot().Query)
	}
}

func TestJoinRejectedWhileMutating(t *testing.T) {
	source := &fakeSource{events: feedEvents(1, 2)}
	membership := &fakeMembership{release: make(chan struct{})}
	m := NewMachine(7, source, membership, nil, testDebounce)
	defer m.Close()

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.Join(context.Background(), 1) }()
	waitForPhase(t, m, PhaseMutating)

	if err := m.Join(context.Background(), 2); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	}
	if err := m.Leave(context.Background(), 1); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight for leave, got %v", err)
	}

	close(membership.release)
	if err := <-done; err != nil {
		t.Fatalf("first join failed: %v", err)
	}
}

func TestJoinRequiresLoadedPhase(t *testing.T) {
	m := NewMachine(7, &fakeSource{}, &fakeMembership{}, nil, testDebounce)
	defer m.Close()

	if err := m.Join(context.Background(), 1); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded from idle, got %v", err)
	}
}

func TestMutationFailureRetainsPriorData(t *testing.T) {
	source := &fakeSource{events: feedEvents(1, 2, 3)}
	membership := &fakeMembership{err: errors.New("event is full")}
	m := NewMachine(7, source, membership, nil, testDebounce)
	defer m.Close()

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := m.Join(context.Background(), 1); err == nil {
		t.Fatal("expected join to fail")
	}

	state := m.Snapshot()
	if state.Phase != PhaseLoaded {
		t.Fatalf("expected loaded after failed mutation, got %q", state.Phase)
	}
	if len(state.Events) != 3 {
		t.Fatalf("expected prior 3 events retained, got %d", len(state.Events))
	}
	if state.ErrorMessage == "" {
		t.Fatal("expected mutation error message to surface")
	}
}

func TestJoinSuccessTriggersRefetchAndCacheRefresh(t *testing.T) {
	source := &fakeSource{events: feedEvents(1, 2)}
	store := cache.NewStore()
	m := NewMachine(7, source, &fakeMembership{}, store, testDebounce)
	defer m.Close()

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	source.mu.Lock()
	source.events = feedEvents(1, 2, 3)
	source.mu.Unlock()

	if err := m.Join(context.Background(), 1); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	state := m.Snapshot()
	if state.Phase != PhaseLoaded {
		t.Fatalf("expected loaded after join, got %q", state.Phase)
	}
	if len(state.Events) != 3 {
		t.Fatalf("expected re-fetched 3 events, got %d", len(state.Events))
	}
	if got := len(source.recordedQueries()); got != 2 {
		t.Fatalf("expected 2 fetches (load + refetch), got %d", got)
	}
	if store.Len() != 3 {
		t.Fatalf("expected cache refreshed to 3 events, got %d", store.Len())
	}
}

func TestCloseDropsLateResults(t *testing.T) {
	source := &fakeSource{events: feedEvents(1, 2), release: make(chan struct{})}
	m := NewMachine(7, source, &fakeMembership{}, nil, testDebounce)

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()
	waitForPhase(t, m, PhaseLoading)

	m.Close()
	close(source.release)

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected load error after close: %v", err)
	}
	if got := len(m.Snapshot().Events); got != 0 {
		t.Fatalf("expected late result to be dropped, got %d events", got)
	}
}

func TestSubscribeObservesTransitions(t *testing.T) {
	source := &fakeSource{events: feedEvents(1)}
	m := NewMachine(7, source, &fakeMembership{}, nil, testDebounce)
	defer m.Close()

	sub := m.Subscribe()
	defer sub.Close()

	initial := <-sub.C
	if initial.Phase != PhaseIdle {
		t.Fatalf("expected initial idle snapshot, got %q", initial.Phase)
	}

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-sub.C:
			if state.Phase == PhaseLoaded && len(state.Events) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("never observed loaded snapshot")
		}
	}
}

func TestCloseIsIdempotentAndClosesSubscribers(t *testing.T) {
	m := NewMachine(7, &fakeSource{}, &fakeMembership{}, nil, testDebounce)
	sub := m.Subscribe()
	<-sub.C

	m.Close()
	m.Close()

	if _, open := <-sub.C; open {
		t.Fatal("expected subscriber channel to be closed")
	}
	if err := m.Load(context.Background()); !errors.Is(err, ErrMachineClosed) {
		t.Fatalf("expected ErrMachineClosed, got %v", err)
	}
}
