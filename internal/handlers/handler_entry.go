package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/cashbook_backend/internal/core/ports/services"
	"github.com/SscSPs/cashbook_backend/internal/dto"
	"github.com/SscSPs/cashbook_backend/internal/middleware"
	"github.com/SscSPs/cashbook_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests related to cashbook entries.
type entryHandler struct {
	entryService          portssvc.EntrySvcFacade
	deleteRequestService  portssvc.DeleteRequestSvc
	reconciliationService portssvc.ReconciliationSvc
	posthogClient         *utils.PosthogClientWrapper
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(es portssvc.EntrySvcFacade, ds portssvc.DeleteRequestSvc, rs portssvc.ReconciliationSvc, ph *utils.PosthogClientWrapper) *entryHandler {
	return &entryHandler{
		entryService:          es,
		deleteRequestService:  ds,
		reconciliationService: rs,
		posthogClient:         ph,
	}
}

// RegisterEntryRoutes registers entry routes on a group scoped to /cashbooks/:cashbook_id.
func RegisterEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade, deleteRequestService portssvc.DeleteRequestSvc, reconciliationService portssvc.ReconciliationSvc, posthogClient *utils.PosthogClientWrapper) {
	registerValidators()
	h := newEntryHandler(entryService, deleteRequestService, reconciliationService, posthogClient)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entry_id", h.getEntry)
		entries.PATCH("/:entry_id", h.updateEntry)
		entries.DELETE("/:entry_id", h.deleteEntry)
		entries.POST("/:entry_id/reconcile", h.toggleReconciliation)
		entries.GET("/:entry_id/audit", h.getEntryAuditTrail)
	}
}

// createEntry godoc
// @Summary Record an entry
// @Description Records an income or expense entry and updates the cashbook balance in the same transaction
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Invalid input or backdated entry"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 404 {object} ErrorResponse "Cashbook not found"
// @Failure 500 {object} ErrorResponse "Failed to create entry"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cashbookID := c.Param("cashbook_id")

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), cashbookID, req, userID)
	if err != nil {
		respondWithError(c, err, "create entry")
		return
	}

	logger.Info("Entry created", slog.String("cashbook_id", cashbookID), slog.String("entry_id", entry.EntryID))
	middleware.PosthogEvent(c, h.posthogClient, "entry_created", map[string]any{
		"cashbook_id": cashbookID,
		"entry_type":  string(entry.Type),
	})
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List entries
// @Description Lists live entries of a cashbook, newest first, with optional filters
// @Tags entries
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   type query string false "INCOME or EXPENSE"
// @Param   categoryID query string false "Category ID"
// @Param   contactID query string false "Contact ID"
// @Param   paymentModeID query string false "Payment mode ID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date, inclusive (YYYY-MM-DD)"
// @Param   isReconciled query bool false "Reconciliation flag"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	cashbookID := c.Param("cashbook_id")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.entryService.ListEntries(c.Request.Context(), cashbookID, userID, params)
	if err != nil {
		respondWithError(c, err, "list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get an entry
// @Tags entries
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries/{entry_id} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.entryService.GetEntry(c.Request.Context(), c.Param("cashbook_id"), c.Param("entry_id"), userID)
	if err != nil {
		respondWithError(c, err, "retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// updateEntry godoc
// @Summary Update an entry
// @Description Applies a partial update and adjusts the balance by the difference between the old and new signed amounts
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry_id path string true "Entry ID"
// @Param   entry body dto.UpdateEntryRequest true "Fields to change"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} ErrorResponse "Invalid input or backdated entry"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "Version conflict"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries/{entry_id} [patch]
func (h *entryHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cashbookID := c.Param("cashbook_id")
	entryID := c.Param("entry_id")

	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), cashbookID, entryID, req, userID)
	if err != nil {
		respondWithError(c, err, "update entry")
		return
	}

	logger.Info("Entry updated", slog.String("entry_id", entryID), slog.Int("version", entry.Version))
	middleware.PosthogEvent(c, h.posthogClient, "entry_updated", map[string]any{"cashbook_id": cashbookID})
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete an entry
// @Description Deletes the entry when the caller may approve deletions, otherwise opens a delete request
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry_id path string true "Entry ID"
// @Param   body body dto.DeleteEntryRequest true "Deletion reason"
// @Success 200 {object} dto.DeleteEntryResponse "Entry deleted"
// @Success 202 {object} dto.DeleteEntryResponse "Delete request created"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Failure 409 {object} ErrorResponse "A delete request is already pending"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries/{entry_id} [delete]
func (h *entryHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cashbookID := c.Param("cashbook_id")
	entryID := c.Param("entry_id")

	var req dto.DeleteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.deleteRequestService.RequestDeletion(c.Request.Context(), cashbookID, entryID, req.Reason, userID)
	if err != nil {
		respondWithError(c, err, "delete entry")
		return
	}

	logger.Info("Entry deletion handled", slog.String("entry_id", entryID), slog.String("outcome", string(result.Outcome)))
	status, event := http.StatusOK, "entry_deleted"
	if result.Request != nil {
		status, event = http.StatusAccepted, "entry_delete_requested"
	}
	middleware.PosthogEvent(c, h.posthogClient, event, map[string]any{"cashbook_id": cashbookID})
	c.JSON(status, dto.ToDeleteEntryResponse(result))
}

// toggleReconciliation godoc
// @Summary Toggle an entry's reconciliation flag
// @Tags entries
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries/{entry_id}/reconcile [post]
func (h *entryHandler) toggleReconciliation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.reconciliationService.ToggleReconciliation(c.Request.Context(), c.Param("cashbook_id"), c.Param("entry_id"), userID)
	if err != nil {
		respondWithError(c, err, "toggle reconciliation")
		return
	}

	middleware.PosthogEvent(c, h.posthogClient, "entry_reconciliation_toggled", map[string]any{"is_reconciled": entry.IsReconciled})
	c.JSON(http.StatusOK, dto.ReconcileResponse{EntryID: entry.EntryID, IsReconciled: entry.IsReconciled})
}

// getEntryAuditTrail godoc
// @Summary Get an entry's audit trail
// @Description Lists every recorded mutation of the entry, oldest first. Deleted entries keep their trail.
// @Tags entries
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.EntryAuditTrailResponse
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/entries/{entry_id}/audit [get]
func (h *entryHandler) getEntryAuditTrail(c *gin.Context) {
	entryID := c.Param("entry_id")
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	audits, err := h.entryService.GetEntryAuditTrail(c.Request.Context(), c.Param("cashbook_id"), entryID, userID)
	if err != nil {
		respondWithError(c, err, "retrieve audit trail")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryAuditTrailResponse(entryID, audits))
}
