package group

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/internal/notification"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
)

// GroupController handles group-related HTTP requests
type GroupController struct {
	repo      GroupRepository
	notifRepo notification.NotificationRepository
}

// NewGroupController creates a new group controller
func NewGroupController(repo GroupRepository, notifRepo notification.NotificationRepository) *GroupController {
	return &GroupController{repo: repo, notifRepo: notifRepo}
}

// CreateGroup godoc
// @Summary Create a group
// @Description The creator becomes the owner and first member
// @Tags groups
// @Accept json
// @Produce json
// @Param group body GroupInput true "Group information"
// @Success 201 {object} Group
// @Failure 409 {object} utils.ErrorResponse "Name already taken"
// @Router /groups [post]
// @Security Bearer
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	var input GroupInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	g := &Group{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     userID,
	}

	if err := c.repo.CreateGroup(g); err != nil {
		if errors.Is(err, ErrNameTaken) {
			utils.ConflictJSON(ctx, err.Error())
			return
		}
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to create group: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, g)
}

// GetMyGroups godoc
// @Summary List the current user's groups
// @Tags groups
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]Group}
// @Router /groups [get]
// @Security Bearer
func (c *GroupController) GetMyGroups(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groups, err := c.repo.GetUserGroups(userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get groups: " + err.Error()})
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "", groups)
}

// GetGroupByID godoc
// @Summary Get a group by ID
// @Description Members only
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} Group
// @Failure 403 {object} utils.ErrorResponse "Not a member"
// @Router /groups/{id} [get]
// @Security Bearer
func (c *GroupController) GetGroupByID(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group ID"})
		return
	}

	g, err := c.repo.GetGroupByID(uint(groupID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get group: " + err.Error()})
		return
	}
	if g == nil {
		utils.NotFoundJSON(ctx, "Group")
		return
	}
	if !g.HasMember(userID) {
		utils.ForbiddenJSON(ctx)
		return
	}

	ctx.JSON(http.StatusOK, g)
}

// InviteMember godoc
// @Summary Invite a user to a group
// @Description Owner-only. The invitee receives a pending group notification.
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param invite body InviteInput true "User to invite"
// @Success 200 {object} utils.SuccessResponse
// @Router /groups/{id}/invite [post]
// @Security Bearer
func (c *GroupController) InviteMember(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group ID"})
		return
	}

	var input InviteInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	g, err := c.repo.GetGroupByID(uint(groupID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get group: " + err.Error()})
		return
	}
	if g == nil {
		utils.NotFoundJSON(ctx, "Group")
		return
	}
	if g.OwnerID != userID {
		utils.ForbiddenJSON(ctx)
		return
	}
	if g.HasMember(input.UserID) {
		utils.ConflictJSON(ctx, ErrAlreadyMember.Error())
		return
	}

	gid := g.ID
	n := &notification.Notification{
		RecipientID: input.UserID,
		SenderID:    &userID,
		GroupID:     &gid,
		Type:        notification.TypeGroup,
		Status:      notification.StatusNotifPending,
		Message:     fmt.Sprintf("You have been invited to join %s", g.Name),
	}
	if err := c.notifRepo.CreateNotification(n); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to send invitation: " + err.Error()})
		return
	}

	utils.SuccessJSON(ctx, http.StatusOK, "Invitation sent", nil)
}

// JoinGroup godoc
// @Summary Join a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse "Already a member"
// @Router /groups/{id}/join [post]
// @Security Bearer
func (c *GroupController) JoinGroup(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group ID"})
		return
	}

	if err := c.repo.AddMember(uint(groupID), userID); err != nil {
		respondGroupError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Joined group", nil)
}

// LeaveGroup godoc
// @Summary Leave a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse "Owner cannot leave"
// @Router /groups/{id}/leave [post]
// @Security Bearer
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group ID"})
		return
	}

	if err := c.repo.RemoveMember(uint(groupID), userID); err != nil {
		respondGroupError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Left group", nil)
}

// DeleteGroup godoc
// @Summary Delete a group
// @Description Owner-only
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} utils.SuccessResponse
// @Router /groups/{id} [delete]
// @Security Bearer
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	groupID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid group ID"})
		return
	}

	if err := c.repo.DeleteGroup(uint(groupID), userID); err != nil {
		respondGroupError(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "Group deleted", nil)
}

func respondGroupError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		utils.NotFoundJSON(ctx, "Group")
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrNotMember):
		utils.ConflictJSON(ctx, err.Error())
	case errors.Is(err, ErrOwnerLeaving), errors.Is(err, ErrNotGroupOwner):
		utils.ForbiddenJSON(ctx)
	default:
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: err.Error()})
	}
}
