package event

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
)

// GroupMembership answers whether a user belongs to a group. Satisfied by
// the group repository; declared here so this package never imports group.
type GroupMembership interface {
	IsMember(groupID, userID uint) (bool, error)
}

// EventController handles event-related HTTP requests
type EventController struct {
	repo      EventRepository
	notifRepo notification.NotificationRepository
	groups    GroupMembership
}

// NewEventController creates a new event controller
func NewEventController(repo EventRepository, notifRepo notification.NotificationRepository, groups GroupMembership) *EventController {
	return &EventController{repo: repo, notifRepo: notifRepo, groups: groups}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Schedule a match at a field. The organizer is registered as the first player.
// @Tags events
// @Accept json
// @Produce json
// @Param event body EventInput true "Event information"
// @Success 201 {object} Event
// @Failure 400 {object} utils.ErrorResponse "Invalid input"
// @Router /events [post]
// @Security Bearer
func (c *EventController) CreateEvent(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	var input EventInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	public := true
	if input.Public != nil {
		public = *input.Public
	}
	if !public && input.GroupID == nil {
		utils.BadRequestJSON(ctx, "private events must belong to a group")
		return
	}

	e := &Event{
		FieldID:     input.FieldID,
		OrganizerID: userID,
		MatchDate:   input.MatchDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Status:      StatusEventOpen,
		MaxPlayers:  input.MaxPlayers,
		Description: input.Description,
		Public:      public,
		GroupID:     input.GroupID,
	}

	if err := c.repo.CreateEvent(e); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to create event: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

// GetEvents godoc
// @Summary List events
// @Description Paginated event listing with optional filters
// @Tags events
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param field_id query int false "Filter by field"
// @Param status query string false "Filter by status"
// @Param group_id query int false "Filter by owning group"
// @Param from_date query string false "Inclusive lower date bound (YYYY-MM-DD)"
// @Param to_date query string false "Inclusive upper date bound (YYYY-MM-DD)"
// @Success 200 {object} utils.PaginatedResponse{data=[]Event}
// @Router /events [get]
// @Security Bearer
func (c *EventController) GetEvents(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	var pagination PaginationInput
	if err := ctx.ShouldBindQuery(&pagination); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	// The listing only ever serves events the caller may see: public ones
	// plus private ones reachable through their group memberships or their
	// own participation.
	filters := map[string]interface{}{"visible_to": userID}
	if fieldIDStr := ctx.Query("field_id"); fieldIDStr != "" {
		fieldID, err := strconv.ParseUint(fieldIDStr, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid field_id parameter"})
			return
		}
		filters["field_id"] = uint(fieldID)
	}
	if status := ctx.Query("status"); status != "" {
		filters["status"] = status
	}
	if groupIDStr := ctx.Query("group_id"); groupIDStr != "" {
		groupID, err := strconv.ParseUint(groupIDStr, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group_id parameter"})
			return
		}
		filters["group_id"] = uint(groupID)
	}
	if from := ctx.Query("from_date"); from != "" {
		filters["from_date"] = from
	}
	if to := ctx.Query("to_date"); to != "" {
		filters["to_date"] = to
	}

	events, total, err := c.repo.GetEvents(filters, pagination.Page, pagination.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get events: " + err.Error()})
		return
	}

	utils.PaginatedJSON(ctx, events, pagination.Page, pagination.Limit, total)
}

// GetAvailableEvents godoc
// @Summary List joinable events for the current user
// @Description Public, upcoming, below-capacity events the user has not joined yet
// @Tags events
// @Produce json
// @Param q query string false "Free-text search over description and field name"
// @Success 200 {object} utils.SuccessResponse{data=[]Event}
// @Router /events/available [get]
// @Security Bearer
func (c *EventController) GetAvailableEvents(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	events, err := c.repo.SearchEvents(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to search events: " + err.Error()})
		return
	}

	joinable := FilterJoinable(events, userID, time.Now())
	utils.SuccessJSON(ctx, http.StatusOK, "", joinable)
}

// GetFieldSchedule godoc
// @Summary List events booked on a field within a date range
// @Description Used to check a field's occupancy before scheduling a match
// @Tags events
// @Produce json
// @Param field_id query int true "Field ID"
// @Param from_date query string true "Inclusive lower date bound (YYYY-MM-DD)"
// @Param to_date query string true "Inclusive upper date bound (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponse{data=[]Event}
// @Router /events/schedule [get]
// @Security Bearer
func (c *EventController) GetFieldSchedule(ctx *gin.Context) {
	fieldID, err := strconv.ParseUint(ctx.Query("field_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid field_id parameter"})
		return
	}

	from := ctx.Query("from_date")
	to := ctx.Query("to_date")
	if _, err := time.Parse(DateLayout, from); err != nil {
		utils.BadRequestJSON(ctx, "from_date must be YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(DateLayout, to); err != nil {
		utils.BadRequestJSON(ctx, "to_date must be YYYY-MM-DD")
		return
	}

	events, err := c.repo.GetEventsByFieldAndDateRange(ctx.Request.Context(), uint(fieldID), from, to)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get schedule: " + err.Error()})
		return
	}

	utils.SuccessJSON(ctx, http.StatusOK, "", events)
}

// GetEventByID godoc
// @Summary Get event by ID
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} Event
// @Failure 404 {object} utils.ErrorResponse "Event not found or not visible"
// @Router /events/{id} [get]
// @Security Bearer
func (c *EventController) GetEventByID(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}

	// Private events answer 404 to outsiders, never 403: the response must
	// not reveal that the event exists.
	groupMember := false
	if !e.Public && e.GroupID != nil {
		groupMember, err = c.groups.IsMember(*e.GroupID, userID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to check group membership: " + err.Error()})
			return
		}
	}
	if !e.VisibleTo(userID, groupMember) {
		utils.NotFoundJSON(ctx, "Event")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

// GetUserEvents godoc
// @Summary List the current user's events
// @Tags events
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} utils.PaginatedResponse{data=[]Event}
// @Router /events/user [get]
// @Security Bearer
func (c *EventController) GetUserEvents(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	var pagination PaginationInput
	if err := ctx.ShouldBindQuery(&pagination); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	events, total, err := c.repo.GetUserEvents(userID, ctx.Query("status"), pagination.Page, pagination.Limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get user events: " + err.Error()})
		return
	}

	utils.PaginatedJSON(ctx, events, pagination.Page, pagination.Limit, total)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Organizer-only edits to description, time slot and capacity
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param event body EventUpdateInput true "Fields to update"
// @Success 200 {object} Event
// @Failure 403 {object} utils.ErrorResponse "Not the organizer"
// @Router /events/{id} [put]
// @Security Bearer
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	var input EventUpdateInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}
	if e.OrganizerID != userID {
		utils.ForbiddenJSON(ctx)
		return
	}
	if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
		utils.ConflictJSON(ctx, ErrEventClosed.Error())
		return
	}

	if input.MatchDate != nil {
		e.MatchDate = *input.MatchDate
	}
	if input.StartTime != nil {
		e.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		e.EndTime = *input.EndTime
	}
	if input.MaxPlayers != nil {
		e.MaxPlayers = *input.MaxPlayers
	}
	if input.Description != nil {
		e.Description = *input.Description
	}
	if input.Public != nil {
		e.Public = *input.Public
	}

	if err := c.repo.UpdateEvent(e); err != nil {
		if errors.Is(err, ErrCapacityBelowSize) {
			utils.BadRequestJSON(ctx, err.Error())
			return
		}
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to update event: " + err.Error()})
		return
	}

	notifyPlayers(c.notifRepo, e, userID, notification.TypeUpdate,
		fmt.Sprintf("The match on %s was updated by the organizer", e.MatchDate))

	ctx.JSON(http.StatusOK, e)
}

// JoinEvent godoc
// @Summary Join an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} Event
// @Failure 409 {object} utils.ErrorResponse "Event full, closed, or already joined"
// @Router /events/{id}/join [post]
// @Security Bearer
func (c *EventController) JoinEvent(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	if err := c.repo.AddPlayer(ctx.Request.Context(), uint(eventID), userID); err != nil {
		respondMembershipError(ctx, err)
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil || e == nil {
		utils.SuccessJSON(ctx, http.StatusOK, "Joined event", nil)
		return
	}
	ctx.JSON(http.StatusOK, e)
}

// LeaveEvent godoc
// @Summary Leave an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} Event
// @Failure 403 {object} utils.ErrorResponse "Organizer cannot leave"
// @Router /events/{id}/leave [post]
// @Security Bearer
func (c *EventController) LeaveEvent(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	if err := c.repo.RemovePlayer(ctx.Request.Context(), uint(eventID), userID); err != nil {
		respondMembershipError(ctx, err)
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil || e == nil {
		utils.SuccessJSON(ctx, http.StatusOK, "Left event", nil)
		return
	}
	ctx.JSON(http.StatusOK, e)
}

// InvitePlayer godoc
// @Summary Invite a user to an event
// @Description Any current player may invite. The invitee receives a pending invite notification.
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param invite body InviteInput true "User to invite"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "User already joined or event closed"
// @Router /events/{id}/invite [post]
// @Security Bearer
func (c *EventController) InvitePlayer(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	var input InviteInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}
	if !e.HasPlayer(userID) {
		utils.ForbiddenJSON(ctx)
		return
	}
	if e.Status != StatusEventOpen {
		utils.ConflictJSON(ctx, ErrEventClosed.Error())
		return
	}
	if e.HasPlayer(input.UserID) {
		utils.ConflictJSON(ctx, ErrAlreadyMember.Error())
		return
	}

	n := &notification.Notification{
		RecipientID: input.UserID,
		SenderID:    &userID,
		EventID:     e.ID,
		Type:        notification.TypeInvite,
		Status:      notification.StatusNotifPending,
		Message:     fmt.Sprintf("You have been invited to a match on %s at %s", e.MatchDate, e.StartTime),
	}
	if err := c.notifRepo.CreateNotification(n); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to send invitation: " + err.Error()})
		return
	}

	utils.SuccessJSON(ctx, http.StatusOK, "Invitation sent", nil)
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Organizer-only. Players are notified of the cancellation.
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse "Not the organizer"
// @Router /events/{id}/cancel [post]
// @Security Bearer
func (c *EventController) CancelEvent(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	e, err := c.repo.GetEventByID(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}

	if err := c.repo.CancelEvent(uint(eventID), userID); err != nil {
		respondMembershipError(ctx, err)
		return
	}

	notifyPlayers(c.notifRepo, e, userID, notification.TypeCancelled,
		fmt.Sprintf("The match on %s at %s was cancelled", e.MatchDate, e.StartTime))

	utils.SuccessJSON(ctx, http.StatusOK, "Event cancelled", nil)
}

// CompleteElapsedEvents godoc
// @Summary Mark elapsed events completed
// @Tags events
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /admin/events/complete-elapsed [post]
// @Security Bearer
func (c *EventController) CompleteElapsedEvents(ctx *gin.Context) {
	n, err := c.repo.CompleteElapsedEvents()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to complete events: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, fmt.Sprintf("%d events marked completed", n), nil)
}

// notifyPlayers fans a notification out to every player except the actor.
// Notification writes and the event mutation are independent operations; a
// failed write is logged, never surfaced as a request failure.
func notifyPlayers(repo notification.NotificationRepository, e *Event, actorID uint, notifType notification.NotificationType, message string) {
	if repo == nil {
		return
	}
	for _, p := range e.Players {
		if p.UserID == actorID {
			continue
		}
		n := &notification.Notification{
			RecipientID: p.UserID,
			EventID:     e.ID,
			Type:        notifType,
			Status:      notification.StatusNotifPending,
			Message:     message,
		}
		if err := repo.CreateNotification(n); err != nil {
			log.Printf("failed to notify user %d about event %d: %v", p.UserID, e.ID, err)
		}
	}
}

func respondMembershipError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		utils.NotFoundJSON(ctx, "Event")
	case errors.Is(err, ErrCapacityExceeded):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, ErrAlreadyMember):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, ErrNotMember):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, ErrEventClosed):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		utils.ForbiddenJSON(ctx)
	default:
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: err.Error()})
	}
}
