package api

import (
	"errors"
	"net/http"
	"time"

	"giveflow/internal/domain/availability"
	resdto "giveflow/internal/handler/dto/response"
	"giveflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SlotHandler struct {
	queries queries.SlotQueries
}

func NewSlotHandler(qrys queries.SlotQueries) *SlotHandler {
	return &SlotHandler{queries: qrys}
}

// @Summary Get slot options
// @Description Enumerate the selectable hours and minutes for one date
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} resdto.SlotOptionsResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /items/{id}/slots [get]
func (h *SlotHandler) Options(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	opts, err := h.queries.Options(c.Request.Context(), itemID, date)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		case errors.Is(err, availability.ErrMalformedAvailability):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Item availability is malformed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotOptions(opts))
}

// @Summary Get next selectable date
// @Description Find the earliest date from today whose weekday has an availability window
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} resdto.NextDateResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /items/{id}/slots/next [get]
func (h *SlotHandler) NextDate(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
		return
	}

	date, err := h.queries.NextDate(c.Request.Context(), itemID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		case errors.Is(err, availability.ErrNoSelectableDay):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Item has no selectable day"})
		case errors.Is(err, availability.ErrMalformedAvailability):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Item availability is malformed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.NewNextDateResponse(date))
}
