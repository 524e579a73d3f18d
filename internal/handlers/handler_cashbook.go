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

// cashbookHandler serves the aggregate views of a cashbook.
type cashbookHandler struct {
	reconciliationService portssvc.ReconciliationSvc
	reportService         portssvc.ReportSvc
	posthogClient         *utils.PosthogClientWrapper
}

// RegisterCashbookRoutes registers summary, recalculation and report routes on a group scoped to /cashbooks/:cashbook_id.
func RegisterCashbookRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvc, reportService portssvc.ReportSvc, posthogClient *utils.PosthogClientWrapper) {
	registerValidators()
	h := &cashbookHandler{
		reconciliationService: reconciliationService,
		reportService:         reportService,
		posthogClient:         posthogClient,
	}

	rg.GET("/summary", h.getFinancialSummary)
	rg.POST("/recalculate", h.recalculateBalance)
	rg.GET("/reports/summary", h.getPeriodSummary)
	rg.GET("/audit/financial", h.getFinancialAuditLogs)
}

// getFinancialSummary godoc
// @Summary Get a cashbook's balance and totals
// @Tags cashbooks
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Success 200 {object} dto.FinancialSummaryResponse
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 404 {object} ErrorResponse "Cashbook not found"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/summary [get]
func (h *cashbookHandler) getFinancialSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cb, err := h.reconciliationService.GetFinancialSummary(c.Request.Context(), c.Param("cashbook_id"), userID)
	if err != nil {
		respondWithError(c, err, "retrieve cashbook summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToFinancialSummaryResponse(cb))
}

// recalculateBalance godoc
// @Summary Recalculate a cashbook's aggregates from its entries
// @Description Recomputes income, expense and balance from live entries and reports the drift
// @Tags cashbooks
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Success 200 {object} dto.RecalculationResult
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 503 {object} ErrorResponse "Database circuit open"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/recalculate [post]
func (h *cashbookHandler) recalculateBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	cashbookID := c.Param("cashbook_id")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.reconciliationService.RecalculateBalance(c.Request.Context(), cashbookID, userID)
	if err != nil {
		respondWithError(c, err, "recalculate balance")
		return
	}

	logger.Info("Cashbook recalculated", slog.String("cashbook_id", cashbookID), slog.String("drift", result.Drift.String()))
	middleware.PosthogEvent(c, h.posthogClient, "balance_recalculated", map[string]any{
		"cashbook_id": cashbookID,
		"drifted":     !result.Drift.IsZero(),
	})
	c.JSON(http.StatusOK, result)
}

// getPeriodSummary godoc
// @Summary Summarize entries over a period
// @Tags reports
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date, inclusive (YYYY-MM-DD)"
// @Param   type query string false "INCOME or EXPENSE"
// @Success 200 {object} domain.PeriodSummary
// @Failure 400 {object} ErrorResponse "Invalid range"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Failure 503 {object} ErrorResponse "Database circuit open"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/reports/summary [get]
func (h *cashbookHandler) getPeriodSummary(c *gin.Context) {
	var params dto.PeriodSummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.reportService.GetPeriodSummary(c.Request.Context(), c.Param("cashbook_id"), userID, params)
	if err != nil {
		respondWithError(c, err, "build period summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getFinancialAuditLogs godoc
// @Summary List a cashbook's financial audit log
// @Description Balance-changing audit rows, newest first
// @Tags audit
// @Produce  json
// @Param   cashbook_id path string true "Cashbook ID"
// @Param   limit query int false "Max rows (default 50, max 500)"
// @Success 200 {object} dto.FinancialAuditLogResponse
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Failure 403 {object} ErrorResponse "Missing permission"
// @Security BearerAuth
// @Router /cashbooks/{cashbook_id}/audit/financial [get]
func (h *cashbookHandler) getFinancialAuditLogs(c *gin.Context) {
	var params dto.FinancialAuditLogParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.reconciliationService.GetFinancialAuditLogs(c.Request.Context(), c.Param("cashbook_id"), userID, params)
	if err != nil {
		respondWithError(c, err, "retrieve financial audit log")
		return
	}
	c.JSON(http.StatusOK, resp)
}
