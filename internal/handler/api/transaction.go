package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"giveflow/internal/domain/handoff"
	reqdto "giveflow/internal/handler/dto/request"
	resdto "giveflow/internal/handler/dto/response"
	"giveflow/internal/handler/middleware"
	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	commands commands.TransactionCommands
	queries  queries.TransactionQueries
}

func NewTransactionHandler(cmds commands.TransactionCommands, qrys queries.TransactionQueries) *TransactionHandler {
	return &TransactionHandler{
		commands: cmds,
		queries:  qrys,
	}
}

// @Summary Report arrival
// @Description Report the traveling party's position at the handoff location
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body reqdto.ArrivedRequest true "Current coordinates"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /transactions/{id}/arrived [post]
func (h *TransactionHandler) Arrived(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.ArrivedRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := h.commands.MarkArrived(c.Request.Context(), userID, transactionID, req.ToCoordinates())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, handoff.ErrNotTravelingParty):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the traveling party reports arrival"})
		case errors.Is(err, handoff.ErrNotYetInRange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Not close enough to the handoff location"})
		case errors.Is(err, handoff.ErrStaleTransactionState):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is no longer in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Reveal verification code
// @Description Disclose the handoff code to the requester after arrival
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} resdto.RevealCodeResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /transactions/{id}/code [get]
func (h *TransactionHandler) RevealCode(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	code, err := h.commands.RevealCode(c.Request.Context(), userID, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, handoff.ErrNotRevealingParty):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the requester may reveal the code"})
		case errors.Is(err, handoff.ErrNotYetInRange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Arrival must be reported first"})
		case errors.Is(err, handoff.ErrStaleTransactionState):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is no longer in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.RevealCodeResponse{Code: code})
}

// @Summary Submit verification code
// @Description Verify the handoff by entering or scanning the revealed code
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body reqdto.SubmitCodeRequest true "Presented code"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /transactions/{id}/verify [post]
func (h *TransactionHandler) SubmitCode(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.SubmitCodeRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err := h.commands.SubmitCode(c.Request.Context(), userID, transactionID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, handoff.ErrNotReceivingParty):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the receiving party verifies the code"})
		case errors.Is(err, handoff.ErrNotYetInRange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Arrival must be reported first"})
		case errors.Is(err, handoff.ErrCodeMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Verification code does not match"})
		case errors.Is(err, handoff.ErrStaleTransactionState):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is no longer in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Confirm handoff
// @Description Complete a verified handoff with evidence images
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param evidence formData file true "Evidence images"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /transactions/{id}/confirm [post]
func (h *TransactionHandler) Confirm(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	evidence, err := h.evidenceAssets(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evidence upload"})
		return
	}

	if err := h.commands.Confirm(c.Request.Context(), userID, transactionID, evidence); err != nil {
		h.settleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Confirm handoffs in batch
// @Description Complete every verified in-progress transaction in the list; others are skipped
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param transaction_ids formData []string true "Transaction IDs"
// @Param evidence formData file true "Evidence images"
// @Success 200 {object} resdto.BatchConfirmResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transactions/confirm [post]
func (h *TransactionHandler) ConfirmBatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.BatchConfirmRequest
	if bindErr := c.ShouldBind(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	evidence, err := h.evidenceAssets(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evidence upload"})
		return
	}

	result, err := h.commands.ConfirmBatch(c.Request.Context(), userID, req.TransactionIDs, evidence)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, handoff.ErrNotReceivingParty):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the receiving party settles handoffs"})
		case errors.Is(err, handoff.ErrNoEvidence):
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one evidence image is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBatchConfirmResult(result))
}

// @Summary Reject handoff
// @Description Settle a verified handoff as not completed, with a mandatory message
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param message formData string true "Rejection message"
// @Param evidence formData file false "Evidence images"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /transactions/{id}/reject [post]
func (h *TransactionHandler) Reject(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.RejectTransactionRequest
	if bindErr := c.ShouldBind(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection message is required"})
		return
	}

	evidence, err := h.evidenceAssets(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid evidence upload"})
		return
	}

	if err := h.commands.Reject(c.Request.Context(), userID, transactionID, req.Message, evidence); err != nil {
		h.settleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Cancel handoff
// @Description Walk away from an in-progress handoff once the appointment time has passed
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Cancel(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.commands.Cancel(c.Request.Context(), userID, transactionID); err != nil {
		switch {
		case errors.Is(err, commands.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, handoff.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this transaction"})
		case errors.Is(err, handoff.ErrInvalidCancelWindow):
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot cancel before the appointment time"})
		case errors.Is(err, handoff.ErrStaleTransactionState):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is no longer in progress"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get transaction
// @Description Get a transaction visible to its participants
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} resdto.TransactionResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, transactionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		case errors.Is(err, queries.ErrTransactionViewDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this transaction"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromTransactionView(view))
}

// @Summary List transactions
// @Description List transactions the current user participates in
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {array} resdto.TransactionResponse
// @Failure 401 {object} map[string]string
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var filter queries.TransactionListFilter
	if raw := c.Query("status"); raw != "" {
		status := handoff.Status(raw)
		if status.IsValid() {
			filter.Status = &status
		}
	}

	views, err := h.queries.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.FromTransactionViews(views))
}

func (h *TransactionHandler) actorAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, uuid.Nil, false
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction ID format"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, transactionID, true
}

func (h *TransactionHandler) settleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	case errors.Is(err, handoff.ErrNotReceivingParty):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the receiving party settles the handoff"})
	case errors.Is(err, handoff.ErrNotYetVerified):
		c.JSON(http.StatusConflict, gin.H{"error": "Handoff is not verified yet"})
	case errors.Is(err, handoff.ErrNoEvidence):
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one evidence image is required"})
	case errors.Is(err, handoff.ErrEmptyRejectMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection message is required"})
	case errors.Is(err, handoff.ErrStaleTransactionState):
		c.JSON(http.StatusConflict, gin.H{"error": "Transaction is no longer in progress"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *TransactionHandler) evidenceAssets(c *gin.Context) ([]commands.MediaAsset, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	files := form.File["evidence"]
	assets := make([]commands.MediaAsset, 0, len(files))
	for _, fh := range files {
		asset, err := readAsset(fh)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func readAsset(fh *multipart.FileHeader) (commands.MediaAsset, error) {
	f, err := fh.Open()
	if err != nil {
		return commands.MediaAsset{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return commands.MediaAsset{}, err
	}
	return commands.MediaAsset{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
