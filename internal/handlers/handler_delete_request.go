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

type deleteRequestHandler struct {
	deleteRequestService portssvc.DeleteRequestSvc
	posthogClient        *utils.PosthogClientWrapper
}

// RegisterDeleteRequestRoutes registers approval routes on a group scoped to /cashbooks/:cashbook_id.
func RegisterDeleteRequestRoutes(rg *gin.RouterGroup, deleteRequestService portssvc.DeleteRequestSvc, posthogClient *utils.PosthogClientWrapper) {
	registerValidators()
	h := &deleteRequestHandler{deleteRequestService: deleteRequestService, posthogClient: posthogClient}

	requests := rg.Group("/delete-requests")
	{
		requests.GET("", h.listDeleteRequests)
		requests.POST("/:request_id/review", h.reviewDeleteRequest)
	}
}

// listDeleteRequests godoc
// @Summary List delete requests
// @Tags delete-requests
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {array} dto.DeleteRequestResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/delete-requests [get]
func (h *deleteRequestHandler) listDeleteRequests(c *gin.Context) {
	var params dto.ListDeleteRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	reqs, err := h.deleteRequestService.ListDeleteRequests(c.Request.Context(), c.Param("cashbook_id"), userID, params.Status)
	if err != nil {
		respondWithError(c, err, "list delete requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToDeleteRequestResponses(reqs))
}

// reviewDeleteRequest godoc
// @Summary Approve or reject a delete request
// @Description Approval soft-deletes the entry and reverses its effect on the balance. Requesters cannot review their own requests.
// @Tags delete-requests
// @Accept  json
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   request_id path string true "Delete request ID"
// @Param   review body dto.ReviewDeleteRequestRequest true "Decision"
// @Success 200 {object} dto.DeleteRequestResponse
// @Failure 400 {object} ErrorResponse "Self review or already reviewed"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 404 {object} ErrorResponse "Delete request not found"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/delete-requests/{request_id}/review [post]
func (h *deleteRequestHandler) reviewDeleteRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cashbookID := c.Param("cashbook_id")
	requestID := c.Param("request_id")

	var req dto.ReviewDeleteRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reviewerID, ok := requireUserID(c)
	if !ok {
		return
	}

	reviewed, err := h.deleteRequestService.ReviewDeleteRequest(c.Request.Context(), cashbookID, requestID, req, reviewerID)
	if err != nil {
		respondWithError(c, err, "review delete request")
		return
	}

	logger.Info("Delete request reviewed", slog.String("request_id", requestID), slog.String("status", string(reviewed.Status)))
	middleware.PosthogEvent(c, h.posthogClient, "delete_request_reviewed", map[string]any{
		"cashbook_id": cashbookID,
		"status":      string(reviewed.Status),
	})
	c.JSON(http.StatusOK, dto.ToDeleteRequestResponse(reviewed))
}
