package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
)

// reportingHandler handles HTTP requests related to financial statements
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers statement routes on a company group.
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

func (h *reportingHandler) bindAsOf(c *gin.Context, logger *slog.Logger) (time.Time, bool) {
	var params dto.AsOfParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return time.Time{}, false
	}
	asOf, err := params.ParseAsOf(time.Now().UTC())
	if err != nil {
		bindError(c, logger, err, "asOf date")
		return time.Time{}, false
	}
	return asOf, true
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance as of a date. An out-of-balance result is flagged, not rejected.
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, ok := h.bindAsOf(c, logger)
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), c.Param("company_id"), asOf)
	if err != nil {
		respondError(c, logger, err, "generate trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Description Income less expenses for vouchers dated within the period
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param fromDate query string true "Start date (YYYY-MM-DD)"
// @Param toDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}
	from, to, err := parseRange(params.FromDate, params.ToDate)
	if err != nil {
		bindError(c, logger, err, "date range")
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), c.Param("company_id"), from, to)
	if err != nil {
		respondError(c, logger, err, "generate profit and loss")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Assets against liabilities and equity as of a date, with net income folded into equity
// @Tags reports
// @Produce json
// @Param company_id path string true "Company ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /companies/{company_id}/reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	asOf, ok := h.bindAsOf(c, logger)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), c.Param("company_id"), asOf)
	if err != nil {
		respondError(c, logger, err, "generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}
