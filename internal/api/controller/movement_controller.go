package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"kevdhev/personal-finance-api/internal/api/middleware"
	"kevdhev/personal-finance-api/internal/api/models"
	"kevdhev/personal-finance-api/internal/api/repository"
	"kevdhev/personal-finance-api/internal/api/response"
	"kevdhev/personal-finance-api/internal/api/service"

	"github.com/gin-gonic/gin"
)

const dateParamLayout = "2006-01-02"

// MovementController handles the movement ledger HTTP requests. All routes
// run behind the bearer auth middleware.
type MovementController struct {
	movementService service.MovementService
}

// NewMovementController creates a new MovementController.
func NewMovementController(movementService service.MovementService) *MovementController {
	return &MovementController{movementService: movementService}
}

// Create handles POST /movements.
func (mc *MovementController) Create(c *gin.Context) {
	var req models.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	owner := middleware.CurrentUser(c)
	movement, err := mc.movementService.Create(c.Request.Context(), owner.ID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			response.Error(c, http.StatusBadRequest, "Invalid movement")
			return
		}
		response.Error(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.JSON(c, http.StatusCreated, movement)
}

// List handles GET /movements with optional date, type and pagination
// filters.
func (mc *MovementController) List(c *gin.Context) {
	window, ok := bindDateRange(c)
	if !ok {
		return
	}

	query := models.ListQuery{DateRange: *window}

	if raw := c.Query("movement_type"); raw != "" {
		mt := models.MovementType(raw)
		if mt != models.MovementIncome && mt != models.MovementExpense {
			response.Error(c, http.StatusBadRequest, "movement_type must be 'income' or 'expense'")
			return
		}
		query.Type = &mt
	}

	var ok2 bool
	if query.Skip, ok2 = bindIntQuery(c, "skip", 0); !ok2 {
		return
	}
	if query.Limit, ok2 = bindIntQuery(c, "limit", 100); !ok2 {
		return
	}

	owner := middleware.CurrentUser(c)
	movements, err := mc.movementService.List(c.Request.Context(), owner.ID, &query)
	if err != nil {
		mc.respondError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, movements)
}

// Summary handles GET /movements/summary.
func (mc *MovementController) Summary(c *gin.Context) {
	window, ok := bindDateRange(c)
	if !ok {
		return
	}

	owner := middleware.CurrentUser(c)
	summary, err := mc.movementService.Summarize(c.Request.Context(), owner.ID, window)
	if err != nil {
		mc.respondError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary)
}

// Get handles GET /movements/:id.
func (mc *MovementController) Get(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}

	owner := middleware.CurrentUser(c)
	movement, err := mc.movementService.Get(c.Request.Context(), owner.ID, id)
	if err != nil {
		mc.respondError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, movement)
}

// Update handles PUT /movements/:id with a partial body.
func (mc *MovementController) Update(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}

	var req models.UpdateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	owner := middleware.CurrentUser(c)
	movement, err := mc.movementService.Update(c.Request.Context(), owner.ID, id, &req)
	if err != nil {
		mc.respondError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, movement)
}

// Delete handles DELETE /movements/:id.
func (mc *MovementController) Delete(c *gin.Context) {
	id, ok := movementID(c)
	if !ok {
		return
	}

	owner := middleware.CurrentUser(c)
	if err := mc.movementService.Delete(c.Request.Context(), owner.ID, id); err != nil {
		mc.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (mc *MovementController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMovementNotFound):
		response.Error(c, http.StatusNotFound, "Movement not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrConstraint):
		response.Error(c, http.StatusBadRequest, "Invalid movement")
	default:
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

// movementID parses the :id path segment. A non-numeric id is shaped like a
// missing movement.
func movementID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Movement not found")
		return 0, false
	}
	return id, true
}

func bindDateRange(c *gin.Context) (*models.DateRange, bool) {
	var window models.DateRange
	var ok bool
	if window.Start, ok = bindDateQuery(c, "start_date"); !ok {
		return nil, false
	}
	if window.End, ok = bindDateQuery(c, "end_date"); !ok {
		return nil, false
	}
	return &window, true
}

func bindDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(dateParamLayout, raw, time.UTC)
	if err != nil {
		response.Error(c, http.StatusBadRequest, name+" must be formatted as YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func bindIntQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}
