package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/BizDaniel/go2play/internal/cache"
	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session binds a machine to the user who opened it.
type Session struct {
	ID      string
	UserID  uint
	Machine *Machine
}

// SessionRegistry tracks live feed sessions by ID.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

func (r *SessionRegistry) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

func (r *SessionRegistry) get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

func (r *SessionRegistry) remove(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[id]
	delete(r.sessions, id)
	return s
}

// FeedController exposes feed sessions over HTTP: commands as POSTs, state
// as an SSE stream of snapshots.
type FeedController struct {
	registry   *SessionRegistry
	source     EventSource
	membership MembershipStore
	cache      *cache.Store
	debounce   time.Duration
}

// NewFeedController creates a new feed controller. All sessions share one
// cache store; replacements are last-writer-wins.
func NewFeedController(source EventSource, membership MembershipStore, cacheStore *cache.Store, debounce time.Duration) *FeedController {
	return &FeedController{
		registry:   NewSessionRegistry(),
		source:     source,
		membership: membership,
		cache:      cacheStore,
		debounce:   debounce,
	}
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
}

type SearchInput struct {
	Query string `json:"query"`
}

type MembershipInput struct {
	EventID uint `json:"event_id" binding:"required"`
}

// CreateSession godoc
// @Summary Open a feed session
// @Description Creates a per-client machine and kicks off the initial load
// @Tags feed
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /feed/sessions [post]
// @Security Bearer
func (c *FeedController) CreateSession(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	s := &Session{
		ID:      uuid.NewString(),
		UserID:  userID,
		Machine: NewMachine(userID, c.source, c.membership, c.cache, c.debounce),
	}
	c.registry.add(s)

	// Initial load runs detached from the request; subscribers see the
	// loading and loaded snapshots as they happen.
	go func() { _ = s.Machine.Load(context.Background()) }()

	ctx.JSON(http.StatusCreated, SessionResponse{SessionID: s.ID, State: s.Machine.Snapshot()})
}

// Stream godoc
// @Summary Stream state snapshots for a session
// @Description Server-sent events; one data frame per state change, latest-wins for slow consumers
// @Tags feed
// @Produce text/event-stream
// @Param id path string true "Session ID"
// @Router /feed/sessions/{id}/stream [get]
// @Security Bearer
func (c *FeedController) Stream(ctx *gin.Context) {
	s, ok := c.authorizedSession(ctx)
	if !ok {
		return
	}

	sub := s.Machine.Subscribe()
	defer sub.Close()

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	clientGone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case state, open := <-sub.C:
			if !open {
				return false
			}
			payload, err := json.Marshal(state)
			if err != nil {
				return false
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			return true
		}
	})
}

// Search godoc
// @Summary Update the session's search query
// @Description Debounced; rapid successive queries coalesce into one fetch
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param search body SearchInput true "Query"
// @Success 202 {object} State
// @Router /feed/sessions/{id}/search [post]
// @Security Bearer
func (c *FeedController) Search(ctx *gin.Context) {
	s, ok := c.authorizedSession(ctx)
	if !ok {
		return
	}

	var input SearchInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	s.Machine.Search(input.Query)
	ctx.JSON(http.StatusAccepted, s.Machine.Snapshot())
}

// Refresh godoc
// @Summary Re-fetch immediately for the current query
// @Tags feed
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} State
// @Router /feed/sessions/{id}/refresh [post]
// @Security Bearer
func (c *FeedController) Refresh(ctx *gin.Context) {
	s, ok := c.authorizedSession(ctx)
	if !ok {
		return
	}

	if err := s.Machine.Load(ctx.Request.Context()); err != nil {
		respondFeedError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Machine.Snapshot())
}

// Join godoc
// @Summary Join an event through the session
// @Description Serialized per session; a second mutation while one is in flight is rejected
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param membership body MembershipInput true "Event to join"
// @Success 200 {object} State
// @Failure 409 {object} utils.ErrorResponse "Mutation already in flight"
// @Router /feed/sessions/{id}/join [post]
// @Security Bearer
func (c *FeedController) Join(ctx *gin.Context) {
	c.mutate(ctx, func(s *Session, eventID uint) error {
		return s.Machine.Join(ctx.Request.Context(), eventID)
	})
}

// Leave godoc
// @Summary Leave an event through the session
// @Tags feed
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param membership body MembershipInput true "Event to leave"
// @Success 200 {object} State
// @Router /feed/sessions/{id}/leave [post]
// @Security Bearer
func (c *FeedController) Leave(ctx *gin.Context) {
	c.mutate(ctx, func(s *Session, eventID uint) error {
		return s.Machine.Leave(ctx.Request.Context(), eventID)
	})
}

type CachedEventsResponse struct {
	Events      []event.Event `json:"events"`
	RefreshedAt time.Time     `json:"refreshed_at"`
}

// CachedEvents godoc
// @Summary Last fetched event snapshot shared across sessions
// @Description Serves the shared cache without touching the database
// @Tags feed
// @Produce json
// @Success 200 {object} CachedEventsResponse
// @Router /feed/cache [get]
// @Security Bearer
func (c *FeedController) CachedEvents(ctx *gin.Context) {
	if _, err := middleware.GetUserIDFromContext(ctx); err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}
	ctx.JSON(http.StatusOK, CachedEventsResponse{
		Events:      c.cache.Snapshot(),
		RefreshedAt: c.cache.RefreshedAt(),
	})
}

// CloseSession godoc
// @Summary Tear a session down
// @Description Cancels in-flight work; late results are discarded
// @Tags feed
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /feed/sessions/{id} [delete]
// @Security Bearer
func (c *FeedController) CloseSession(ctx *gin.Context) {
	s, ok := c.authorizedSession(ctx)
	if !ok {
		return
	}

	if removed := c.registry.remove(s.ID); removed != nil {
		removed.Machine.Close()
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Session closed", nil)
}

func (c *FeedController) mutate(ctx *gin.Context, op func(*Session, uint) error) {
	s, ok := c.authorizedSession(ctx)
	if !ok {
		return
	}

	var input MembershipInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	if err := op(s, input.EventID); err != nil {
		respondFeedError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, s.Machine.Snapshot())
}

func respondFeedError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMutationInFlight), errors.Is(err, ErrNotLoaded), errors.Is(err, ErrMachineClosed):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, event.ErrEventNotFound):
		utils.NotFoundJSON(ctx, "Event")
	case errors.Is(err, event.ErrCapacityExceeded),
		errors.Is(err, event.ErrAlreadyMember),
		errors.Is(err, event.ErrNotMember),
		errors.Is(err, event.ErrEventClosed):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, event.ErrPermissionDenied):
		utils.ForbiddenJSON(ctx)
	default:
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: err.Error()})
	}
}

func (c *FeedController) authorizedSession(ctx *gin.Context) (*Session, bool) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return nil, false
	}

	s := c.registry.get(ctx.Param("id"))
	if s == nil {
		utils.NotFoundJSON(ctx, "Session")
		return nil, false
	}
	if s.UserID != userID {
		utils.ForbiddenJSON(ctx)
		return nil, false
	}
	return s, true
}
