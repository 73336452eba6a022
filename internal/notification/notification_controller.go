package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
)

// EventJoiner is the membership operation invoked when an event invite is
// accepted. Satisfied by the event repository; declared here so this package
// never imports the event package.
type EventJoiner interface {
	AddPlayer(ctx context.Context, eventID, userID uint) error
}

// GroupJoiner is the membership operation invoked when a group invite is
// accepted. Satisfied by the group repository.
type GroupJoiner interface {
	AddMember(groupID, userID uint) error
}

// NotificationController handles notification-related HTTP requests
type NotificationController struct {
	repo        NotificationRepository
	eventJoiner EventJoiner
	groupJoiner GroupJoiner
}

// NewNotificationController creates a new notification controller
func NewNotificationController(repo NotificationRepository, eventJoiner EventJoiner, groupJoiner GroupJoiner) *NotificationController {
	return &NotificationController{repo: repo, eventJoiner: eventJoiner, groupJoiner: groupJoiner}
}

type GroupedNotificationsResponse struct {
	Pending []Notification `json:"pending"`
	Other   []Notification `json:"other"`
}

// GetNotifications godoc
// @Summary List the current user's notifications
// @Description Returns notifications grouped into pending and everything else, each most recent first
// @Tags notifications
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} GroupedNotificationsResponse
// @Router /notifications [get]
// @Security Bearer
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	notifications, total, err := c.repo.GetUserNotifications(userID, page, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get notifications: " + err.Error()})
		return
	}

	pending, other := Partition(notifications)
	ctx.JSON(http.StatusOK, gin.H{
		"data":  GroupedNotificationsResponse{Pending: pending, Other: other},
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// RespondToNotification godoc
// @Summary Accept or decline an actionable notification
// @Description Accepting an event invite joins the event, then marks the notification accepted. The two steps are independent: a failed join leaves the notification pending.
// @Tags notifications
// @Accept json
// @Produce json
// @Param id path int true "Notification ID"
// @Param response body RespondInput true "Accept or decline"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "Notification is not actionable"
// @Router /notifications/{id}/respond [post]
// @Security Bearer
func (c *NotificationController) RespondToNotification(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	notifID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid notification ID"})
		return
	}

	var input RespondInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	n, err := c.repo.GetNotificationByID(uint(notifID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get notification: " + err.Error()})
		return
	}
	if n == nil {
		utils.NotFoundJSON(ctx, "Notification")
		return
	}
	if n.RecipientID != userID {
		utils.ForbiddenJSON(ctx)
		return
	}
	if !n.Actionable() {
		utils.ConflictJSON(ctx, "notification has already been handled")
		return
	}

	if !input.Accept {
		if err := c.repo.UpdateStatus(n.ID, StatusNotifDeclined); err != nil {
			ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to update notification: " + err.Error()})
			return
		}
		utils.SuccessJSON(ctx, http.StatusOK, "Invitation declined", nil)
		return
	}

	// Joining and the status update are independent writes; a failed join
	// leaves the notification pending so the user can retry.
	if n.Type == TypeInvite && n.EventID != 0 {
		if err := c.eventJoiner.AddPlayer(ctx.Request.Context(), n.EventID, userID); err != nil {
			utils.ConflictJSON(ctx, "could not join event: "+err.Error())
			return
		}
	}
	if n.Type == TypeGroup && n.GroupID != nil {
		if err := c.groupJoiner.AddMember(*n.GroupID, userID); err != nil {
			utils.ConflictJSON(ctx, "could not join group: "+err.Error())
			return
		}
	}
	if err := c.repo.UpdateStatus(n.ID, StatusNotifAccepted); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to update notification: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Invitation accepted", nil)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /notifications/{id}/read [post]
// @Security Bearer
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	notifID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid notification ID"})
		return
	}

	n, err := c.repo.GetNotificationByID(uint(notifID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get notification: " + err.Error()})
		return
	}
	if n == nil {
		utils.NotFoundJSON(ctx, "Notification")
		return
	}
	if n.RecipientID != userID {
		utils.ForbiddenJSON(ctx)
		return
	}

	if err := c.repo.UpdateStatus(n.ID, StatusNotifRead); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to update notification: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Notification marked read", nil)
}

// MarkAllRead godoc
// @Summary Mark all informational notifications read
// @Tags notifications
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /notifications/read-all [post]
// @Security Bearer
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	if err := c.repo.MarkAllRead(userID); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to mark notifications read: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "All notifications marked read", nil)
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /notifications/{id} [delete]
// @Security Bearer
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	notifID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid notification ID"})
		return
	}

	n, err := c.repo.GetNotificationByID(uint(notifID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get notification: " + err.Error()})
		return
	}
	if n == nil {
		utils.NotFoundJSON(ctx, "Notification")
		return
	}
	if n.RecipientID != userID {
		utils.ForbiddenJSON(ctx)
		return
	}

	if err := c.repo.DeleteNotification(n.ID); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to delete notification: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Notification deleted", nil)
}
