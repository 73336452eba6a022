package field

import (
	"net/http"
	"strconv"

	"github.com/BizDaniel/go2play/pkg/utils"
	"github.com/gin-gonic/gin"
)

// FieldController handles field-related HTTP requests
type FieldController struct {
	repo FieldRepository
}

// NewFieldController creates a new field controller
func NewFieldController(repo FieldRepository) *FieldController {
	return &FieldController{repo: repo}
}

// CreateField godoc
// @Summary Register a new field
// @Description Add a venue to the field catalogue
// @Tags fields
// @Accept json
// @Produce json
// @Param field body FieldInput true "Field information"
// @Success 201 {object} Field "Field created successfully"
// @Failure 400 {object} utils.ErrorResponse "Invalid input"
// @Router /fields [post]
// @Security Bearer
func (c *FieldController) CreateField(ctx *gin.Context) {
	var input FieldInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	f := &Field{
		Name:           input.Name,
		Address:        input.Address,
		Surface:        input.Surface,
		Capacity:       input.Capacity,
		Indoor:         input.Indoor,
		PricePerPerson: input.PricePerPerson,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		Coordinates:    input.Coordinates,
	}

	if err := c.repo.CreateField(f); err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to create field: " + err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, f)
}

// GetFieldByID godoc
// @Summary Get field by ID
// @Tags fields
// @Produce json
// @Param field_id path int true "Field ID"
// @Success 200 {object} Field "Field details"
// @Failure 404 {object} utils.ErrorResponse "Field not found"
// @Router /fields/{field_id} [get]
func (c *FieldController) GetFieldByID(ctx *gin.Context) {
	fieldID, err := strconv.ParseUint(ctx.Param("field_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid field ID"})
		return
	}

	f, err := c.repo.GetFieldByID(uint(fieldID))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get field: " + err.Error()})
		return
	}
	if f == nil {
		utils.NotFoundJSON(ctx, "Field")
		return
	}

	ctx.JSON(http.StatusOK, f)
}

// GetAllFields godoc
// @Summary List fields
// @Description Paginated field catalogue with optional filters
// @Tags fields
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10, max: 100)"
// @Param surface query string false "Filter by surface type"
// @Param indoor query boolean false "Filter by indoor flag"
// @Param max_price query number false "Filter by maximum price per person"
// @Param name query string false "Filter by name (partial match)"
// @Success 200 {object} utils.PaginatedResponse{data=[]Field} "List of fields"
// @Router /fields [get]
func (c *FieldController) GetAllFields(ctx *gin.Context) {
	var pagination PaginationInput
	if err := ctx.ShouldBindQuery(&pagination); err != nil {
		ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: err.Error()})
		return
	}

	filters := make(map[string]interface{})

	if surface := ctx.Query("surface"); surface != "" {
		filters["surface"] = surface
	}
	if indoorStr := ctx.Query("indoor"); indoorStr != "" {
		indoor, err := strconv.ParseBool(indoorStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid indoor parameter"})
			return
		}
		filters["indoor"] = indoor
	}
	if maxPriceStr := ctx.Query("max_price"); maxPriceStr != "" {
		maxPrice, err := strconv.ParseFloat(maxPriceStr, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "invalid max_price parameter"})
			return
		}
		filters["max_price"] = maxPrice
	}
	if name := ctx.Query("name"); name != "" {
		filters["name"] = name
	}

	fields, total, err := c.repo.GetAllFields(pagination.Page, pagination.Limit, filters)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, utils.ErrorResponse{Error: "failed to get fields: " + err.Error()})
		return
	}

	utils.PaginatedJSON(ctx, fields, pagination.Page, pagination.Limit, total)
}
