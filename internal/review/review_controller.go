package review

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/BizDaniel/go2play/internal/event"
	"github.com/BizDaniel/go2play/internal/middleware"
	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ReviewController handles review-related HTTP requests
type ReviewController struct {
	repo      ReviewRepository
	eventRepo event.EventRepository
}

// NewReviewController creates a new review controller
func NewReviewController(repo ReviewRepository, eventRepo event.EventRepository) *ReviewController {
	return &ReviewController{repo: repo, eventRepo: eventRepo}
}

// CreateReview godoc
// @Summary Review a fellow player
// @Description Only players of a completed event may review each other, once per pair per event
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body ReviewInput true "Review information"
// @Success 201 {object} Review
// @Failure 403 {object} utils.ErrorResponse "Reviewer or reviewed did not play"
// @Failure 409 {object} utils.ErrorResponse "Pair already reviewed or event not completed"
// @Router /reviews [post]
// @Security Bearer
func (c *ReviewController) CreateReview(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	var input ReviewInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	e, err := c.eventRepo.GetEventByID(input.EventID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}
	if !reviewWindowOpen(e, time.Now()) {
		utils.ConflictJSON(ctx, "reviews open once the event is completed and its date has passed")
		return
	}

	existing, err := c.repo.GetReviewsForEvent(input.EventID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get reviews: " + err.Error()})
		return
	}
	if !CanReview(userID, input.ReviewedID, e, existing, time.Now()) {
		utils.ForbiddenJSON(ctx)
		return
	}

	review := &Review{
		ReviewerID:    userID,
		ReviewedID:    input.ReviewedID,
		EventID:       input.EventID,
		Sportsmanship: input.Sportsmanship,
		Punctuality:   input.Punctuality,
		Reliability:   input.Reliability,
		Comment:       input.Comment,
	}
	if err := c.repo.CreateReview(review); err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			utils.ConflictJSON(ctx, err.Error())
			return
		}
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to create review: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, review)
}

// GetEligiblePairs godoc
// @Summary List reviews still writable for an event
// @Tags reviews
// @Produce json
// @Param event_id path int true "Event ID"
// @Success 200 {object} utils.SuccessResponse{data=[]Pair}
// @Router /reviews/eligible/{event_id} [get]
// @Security Bearer
func (c *ReviewController) GetEligiblePairs(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("event_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid event ID"})
		return
	}

	e, err := c.eventRepo.GetEventByID(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get event: " + err.Error()})
		return
	}
	if e == nil {
		utils.NotFoundJSON(ctx, "Event")
		return
	}
	if !reviewWindowOpen(e, time.Now()) {
		utils.SuccessJSON(ctx, http.StatusOK, "", []Pair{})
		return
	}

	existing, err := c.repo.GetReviewsForEvent(uint(eventID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get reviews: " + err.Error()})
		return
	}

	utils.SuccessJSON(ctx, http.StatusOK, "", EligiblePairs(e.PlayerIDs(), existing))
}

// GetMyCandidates godoc
// @Summary List fellow players the current user can still review
// @Description Walks the user's completed events and subtracts reviews already written
// @Tags reviews
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]Candidate}
// @Router /reviews/candidates [get]
// @Security Bearer
func (c *ReviewController) GetMyCandidates(ctx *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		utils.UnauthorizedJSON(ctx)
		return
	}

	events, _, err := c.eventRepo.GetUserEvents(userID, string(event.StatusEventCompleted), 1, 100)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get events: " + err.Error()})
		return
	}

	written, err := c.repo.GetReviewsByReviewer(userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get reviews: " + err.Error()})
		return
	}

	candidates := EligibleCandidates(events, written, userID, time.Now())
	if candidates == nil {
		candidates = []Candidate{}
	}
	utils.SuccessJSON(ctx, http.StatusOK, "", candidates)
}

// GetUserReviews godoc
// @Summary List reviews received by a user
// @Tags reviews
// @Produce json
// @Param user_id path int true "User ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} utils.PaginatedResponse{data=[]Review}
// @Router /reviews/user/{user_id} [get]
// @Security Bearer
func (c *ReviewController) GetUserReviews(ctx *gin.Context) {
	reviewedID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid user ID"})
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	reviews, total, err := c.repo.GetReviewsForUser(uint(reviewedID), page, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get reviews: " + err.Error()})
		return
	}

	utils.PaginatedJSON(ctx, reviews, page, limit, total)
}

// GetRatingSummary godoc
// @Summary Aggregate rating summary for a user
// @Tags reviews
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} RatingSummary
// @Router /reviews/user/{user_id}/summary [get]
// @Security Bearer
func (c *ReviewController) GetRatingSummary(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("user_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid user ID"})
		return
	}

	summary, err := c.repo.GetRatingSummary(uint(userID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get rating summary: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}
