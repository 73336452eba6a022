// Package feed drives the "available matches" screen: one Machine per
// client session, owning a search query, a phase, and the event list last
// fetched for that query. Mutations are serialized per machine and every
// successful mutation is followed by an authoritative re-fetch rather than
// an optimistic in-place patch.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BizDaniel/go2play/internal/cache"
	"github.com/BizDaniel/go2play/internal/event"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLoading  Phase = "loading"
	PhaseLoaded   Phase = "loaded"
	PhaseMutating Phase = "mutating"
	PhaseError    Phase = "error"
)

var (
	ErrMutationInFlight = errors.New("another membership change is in progress")
	ErrNotLoaded        = errors.New("feed is not loaded")
	ErrMachineClosed    = errors.New("feed session is closed")
)

// EventSource is the fetch side of the feed. Satisfied by the event
// repository.
type EventSource interface {
	SearchEvents(ctx context.Context, query string) ([]event.Event, error)
}

// MembershipStore is the mutation side of the feed. Satisfied by the event
// repository.
type MembershipStore interface {
	AddPlayer(ctx context.Context, eventID, userID uint) error
	RemovePlayer(ctx context.Context, eventID, userID uint) error
}

// State is an immutable snapshot of the machine. Events must not be
// modified by consumers.
type State struct {
	Phase          Phase         `json:"phase"`
	Query          string        `json:"query"`
	Events         []event.Event `json:"events"`
	PendingEventID uint          `json:"pending_event_id,omitempty"`
	PendingAction  string        `json:"pending_action,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	RefreshedAt    time.Time     `json:"refreshed_at"`
}

// StateSubscription delivers state snapshots on C, latest-wins. C is closed
// when the subscription or the machine is closed.
type StateSubscription struct {
	C       chan State
	machine *Machine
}

// Machine is the per-session membership state machine. All exported methods
// are safe for concurrent use.
type Machine struct {
	userID     uint
	source     EventSource
	membership MembershipStore
	cache      *cache.Store
	debounce   time.Duration

	lifeCtx    context.Context
	lifeCancel context.CancelFunc

	mu           sync.Mutex
	state        State
	searchSeq    uint64
	searchCancel context.CancelFunc
	subscribers  map[*StateSubscription]struct{}
	closed       bool
}

// NewMachine returns an idle machine for userID. cacheStore may be nil when
// no shared cache is attached. debounce bounds how long consecutive Search
// calls coalesce before a fetch fires.
func NewMachine(userID uint, source EventSource, membership MembershipStore, cacheStore *cache.Store, debounce time.Duration) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		userID:      userID,
		source:      source,
		membership:  membership,
		cache:       cacheStore,
		debounce:    debounce,
		lifeCtx:     ctx,
		lifeCancel:  cancel,
		state:       State{Phase: PhaseIdle},
		subscribers: make(map[*StateSubscription]struct{}),
	}
}

// Load fetches immediately for the current query, bypassing the debounce.
// Used for the initial load and for pull-to-refresh.
func (m *Machine) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMachineClosed
	}
	seq := m.bumpSearchLocked()
	query := m.state.Query
	m.state.Phase = PhaseLoading
	m.publishLocked()
	m.mu.Unlock()

	events, err := m.source.SearchEvents(ctx, query)
	return m.applyFetch(seq, events, err)
}

// Search schedules a debounced fetch for query. A newer Search cancels the
// scheduled predecessor, so only the last query in a burst reaches the
// source.
func (m *Machine) Search(query string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	seq := m.bumpSearchLocked()
	ctx, cancel := context.WithCancel(m.lifeCtx)
	m.searchCancel = cancel
	m.state.Query = query
	m.publishLocked()
	m.mu.Unlock()

	go func() {
		timer := time.NewTimer(m.debounce)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		m.mu.Lock()
		if m.closed || seq != m.searchSeq {
			m.mu.Unlock()
			return
		}
		m.state.Phase = PhaseLoading
		m.publishLocked()
		m.mu.Unlock()

		events, err := m.source.SearchEvents(ctx, query)
		_ = m.applyFetch(seq, events, err)
	}()
}

// Join adds the session user to an event, then re-fetches. Only legal from
// the loaded phase; a concurrent mutation is rejected, never queued.
func (m *Machine) Join(ctx context.Context, eventID uint) error {
	return m.mutate(ctx, eventID, "join", m.membership.AddPlayer)
}

// Leave removes the session user from an event, then re-fetches. Same phase
// rules as Join.
func (m *Machine) Leave(ctx context.Context, eventID uint) error {
	return m.mutate(ctx, eventID, "leave", m.membership.RemovePlayer)
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a state observer. The current state is delivered
// immediately. On a closed machine the returned subscription's channel is
// already closed.
func (m *Machine) Subscribe() *StateSubscription {
	sub := &StateSubscription{C: make(chan State, 1), machine: m}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		close(sub.C)
		return sub
	}
	m.subscribers[sub] = struct{}{}
	sub.deliver(m.state)
	return sub
}

// Close tears the session down: in-flight fetches are cancelled and any
// result arriving afterwards is discarded. Idempotent.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.searchSeq++
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
	for sub := range m.subscribers {
		close(sub.C)
	}
	m.subscribers = make(map[*StateSubscription]struct{})
	m.mu.Unlock()

	m.lifeCancel()
}

// Close detaches the subscription and closes C. Idempotent.
func (sub *StateSubscription) Close() {
	sub.machine.mu.Lock()
	defer sub.machine.mu.Unlock()
	if _, active := sub.machine.subscribers[sub]; !active {
		return
	}
	delete(sub.machine.subscribers, sub)
	close(sub.C)
}

func (m *Machine) mutate(ctx context.Context, eventID uint, action string, op func(context.Context, uint, uint) error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMachineClosed
	}
	switch m.state.Phase {
	case PhaseMutating:
		m.mu.Unlock()
		return ErrMutationInFlight
	case PhaseLoaded:
	default:
		m.mu.Unlock()
		return ErrNotLoaded
	}
	m.state.Phase = PhaseMutating
	m.state.PendingEventID = eventID
	m.state.PendingAction = action
	m.state.ErrorMessage = ""
	m.publishLocked()
	query := m.state.Query
	m.mu.Unlock()

	if err := op(ctx, eventID, m.userID); err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return err
		}
		// Failure keeps the previous event list intact.
		m.state.Phase = PhaseLoaded
		m.state.PendingEventID = 0
		m.state.PendingAction = ""
		m.state.ErrorMessage = err.Error()
		m.publishLocked()
		return err
	}

	// Success: the server decided; re-fetch instead of patching locally.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	seq := m.bumpSearchLocked()
	m.state.Phase = PhaseLoading
	m.state.PendingEventID = 0
	m.state.PendingAction = ""
	m.publishLocked()
	m.mu.Unlock()

	events, err := m.source.SearchEvents(ctx, query)
	if applyErr := m.applyFetch(seq, events, err); applyErr != nil {
		return applyErr
	}
	return nil
}

// applyFetch installs a fetch result if its sequence token is still current.
// Stale and post-close results are dropped silently.
func (m *Machine) applyFetch(seq uint64, events []event.Event, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || seq != m.searchSeq {
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		m.state.Phase = PhaseError
		m.state.ErrorMessage = err.Error()
		m.publishLocked()
		return err
	}
	m.state.Phase = PhaseLoaded
	m.state.ErrorMessage = ""
	m.state.Events = events
	m.state.RefreshedAt = time.Now()
	m.publishLocked()
	if m.cache != nil {
		m.cache.ReplaceAll(events)
	}
	return nil
}

// bumpSearchLocked invalidates any in-flight fetch and returns the new
// token. Caller holds m.mu.
func (m *Machine) bumpSearchLocked() uint64 {
	m.searchSeq++
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
	return m.searchSeq
}

// publishLocked fans the current state out to subscribers, latest-wins.
// Caller holds m.mu.
func (m *Machine) publishLocked() {
	for sub := range m.subscribers {
		sub.deliver(m.state)
	}
}

func (sub *StateSubscription) deliver(s State) {
	select {
	case sub.C <- s:
	default:
		select {
		case <-sub.C:
		default:
		}
		sub.C <- s
	}
}
