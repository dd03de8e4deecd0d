package api

import (
	"errors"
	"net/http"

	"giveflow/internal/domain/availability"
	domrequest "giveflow/internal/domain/request"
	reqdto "giveflow/internal/handler/dto/request"
	resdto "giveflow/internal/handler/dto/response"
	"giveflow/internal/handler/middleware"
	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	commands commands.RequestCommands
	queries  queries.RequestQueries
}

func NewRequestHandler(cmds commands.RequestCommands, qrys queries.RequestQueries) *RequestHandler {
	return &RequestHandler{
		commands: cmds,
		queries:  qrys,
	}
}

// @Summary Create request
// @Description Request an item as a gift, exchange, or campaign donation
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateRequestRequest true "Request payload"
// @Success 201 {object} resdto.CreateRequestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateRequestRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.commands.Create(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
		case errors.Is(err, availability.ErrMalformedAvailability):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Item availability is malformed",
			})
		case errors.Is(err, availability.ErrIncompleteSelection),
			errors.Is(err, domrequest.ErrNoCandidateInstant):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "At least one complete candidate instant is required",
			})
		case errors.Is(err, availability.ErrOutsideAvailability):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Candidate instant is outside the item's availability",
			})
		case errors.Is(err, availability.ErrBusy):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Candidate instant conflicts with an existing appointment",
			})
		case errors.Is(err, domrequest.ErrSelfRequestNotAllowed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Cannot request your own item",
			})
		case errors.Is(err, domrequest.ErrItemNotRequestable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Item is not open for requests",
			})
		case errors.Is(err, domrequest.ErrCounterItemNotEligible):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Counter item is not eligible for exchange",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateRequestResponse{RequestID: result.RequestID})
}

// @Summary Approve request
// @Description Approve a pending request at one of its candidate instants
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.ApproveRequestRequest true "Approval payload"
// @Success 200 {object} resdto.ApproveRequestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	var req reqdto.ApproveRequestRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.commands.Approve(c.Request.Context(), userID, requestID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, commands.ErrNotItemOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the item owner may approve"})
		case errors.Is(err, domrequest.ErrStaleRequestState):
			c.JSON(http.StatusConflict, gin.H{"error": "Request was already closed"})
		case errors.Is(err, domrequest.ErrNotACandidate):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Chosen instant is not a candidate"})
		case errors.Is(err, domrequest.ErrVolunteerRequired):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Campaign donations require a volunteer"})
		case errors.Is(err, domrequest.ErrVolunteerNotApplicable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Volunteer only applies to campaign donations"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.ApproveRequestResponse{
		TransactionID: result.TransactionID,
		HeldRequests:  result.HeldRequests,
	})
}

// @Summary Reject request
// @Description Reject a pending request with a mandatory reason
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param request body reqdto.RejectRequestRequest true "Rejection payload"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	var req reqdto.RejectRequestRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.commands.Reject(c.Request.Context(), userID, requestID, req.Reason); err != nil {
		switch {
		case errors.Is(err, commands.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, commands.ErrNotItemOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the item owner may reject"})
		case errors.Is(err, domrequest.ErrEmptyRejectReason):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		case errors.Is(err, domrequest.ErrStaleRequestState):
			c.JSON(http.StatusConflict, gin.H{"error": "Request was already closed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Cancel request
// @Description Withdraw an open request as its requester
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /requests/{id} [delete]
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	if err := h.commands.Cancel(c.Request.Context(), userID, requestID); err != nil {
		switch {
		case errors.Is(err, commands.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, commands.ErrNotRequester):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the requester may cancel"})
		case errors.Is(err, domrequest.ErrStaleRequestState):
			c.JSON(http.StatusConflict, gin.H{"error": "Request was already closed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get request
// @Description Get a request visible to its requester or the item owner
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} resdto.RequestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID format"})
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), userID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, queries.ErrRequestViewDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a party to this request"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestView(view))
}

// @Summary List sent requests
// @Description List requests the current user has sent
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {array} resdto.RequestResponse
// @Failure 401 {object} map[string]string
// @Router /requests/sent [get]
func (h *RequestHandler) ListSent(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	views, err := h.queries.ListMine(c.Request.Context(), userID, statusFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestViews(views))
}

// @Summary List received requests
// @Description List requests against the current user's items
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {array} resdto.RequestResponse
// @Failure 401 {object} map[string]string
// @Router /requests/received [get]
func (h *RequestHandler) ListReceived(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	views, err := h.queries.ListReceived(c.Request.Context(), userID, statusFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestViews(views))
}

// @Summary List requests for an item
// @Description List requests against one of the current user's items
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param status query string false "Filter by status"
// @Success 200 {array} resdto.RequestResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /items/{id}/requests [get]
func (h *RequestHandler) ListForItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
		return
	}

	views, err := h.queries.ListForItem(c.Request.Context(), userID, itemID, statusFilter(c))
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrRequestViewDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this item"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromRequestViews(views))
}

func statusFilter(c *gin.Context) queries.RequestListFilter {
	var filter queries.RequestListFilter
	if raw := c.Query("status"); raw != "" {
		status := domrequest.Status(raw)
		if status.IsValid() {
			filter.Status = &status
		}
	}
	return filter
}
