package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
)

// voucherHandler handles HTTP requests for the draft -> posted lifecycle.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{voucherService: vs}
}

// RegisterVoucherRoutes registers voucher routes on a company group.
func RegisterVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucher_id", h.getVoucher)
		vouchers.PATCH("/:voucher_id", h.updateVoucher)
		vouchers.POST("/:voucher_id/entries", h.addEntry)
		vouchers.DELETE("/:voucher_id/entries/:entry_id", h.removeEntry)
		vouchers.POST("/:voucher_id/post", h.postVoucher)
		vouchers.POST("/:voucher_id/reverse", h.reverseVoucher)
	}
}

// createVoucher godoc
// @Summary Create a draft voucher
// @Description Opens a draft voucher with no entries and assigns its number
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher body dto.CreateVoucherRequest true "Voucher header"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}

	voucher, err := h.voucherService.CreateDraft(c.Request.Context(), c.Param("company_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "create voucher")
		return
	}

	logger.Info("Draft voucher created", slog.String("voucher_id", voucher.VoucherID), slog.String("voucher_no", voucher.VoucherNo))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Lists voucher headers newest first, with token pagination
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   type query string false "Voucher type"
// @Param   status query string false "DRAFT or POSTED"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), c.Param("company_id"), params)
	if err != nil {
		respondError(c, logger, err, "list vouchers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getVoucher godoc
// @Summary Get a voucher
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucherID := c.Param("voucher_id")

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), c.Param("company_id"), voucherID)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// updateVoucher godoc
// @Summary Update a draft voucher
// @Description Changes the date or narration of a draft
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Param   voucher body dto.UpdateVoucherRequest true "Header fields"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Invalid input or voucher not draft"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id} [patch]
func (h *voucherHandler) updateVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucher_id")

	voucher, err := h.voucherService.UpdateDraft(c.Request.Context(), c.Param("company_id"), voucherID, req, userID)
	if err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID)), err, "update voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// addEntry godoc
// @Summary Add a voucher line
// @Description Appends a debit or credit line to a draft voucher
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Param   entry body dto.AddEntryRequest true "Line"
// @Success 201 {object} dto.VoucherEntryResponse
// @Failure 400 {object} map[string]string "Invalid line, inactive or control account, voucher not draft"
// @Failure 404 {object} map[string]string "Voucher or account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id}/entries [post]
func (h *voucherHandler) addEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucher_id")
	logger = logger.With(slog.String("voucher_id", voucherID), slog.String("account_id", req.AccountID))

	entry, err := h.voucherService.AddEntry(c.Request.Context(), c.Param("company_id"), voucherID, req, userID)
	if err != nil {
		respondError(c, logger, err, "add voucher entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToVoucherEntryResponse(entry))
}

// removeEntry godoc
// @Summary Remove a voucher line
// @Tags vouchers
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Param   entry_id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Voucher not draft"
// @Failure 404 {object} map[string]string "Voucher or entry not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id}/entries/{entry_id} [delete]
func (h *voucherHandler) removeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucher_id")
	entryID := c.Param("entry_id")

	if err := h.voucherService.RemoveEntry(c.Request.Context(), c.Param("company_id"), voucherID, entryID, userID); err != nil {
		respondError(c, logger.With(slog.String("voucher_id", voucherID), slog.String("entry_id", entryID)), err, "remove voucher entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// postVoucher godoc
// @Summary Post a voucher
// @Description Validates balance and posts a draft. Posting an already posted voucher returns it unchanged.
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Unbalanced or empty voucher, inactive or control account"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 503 {object} map[string]string "Store busy, retry"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id}/post [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucher_id")
	logger = logger.With(slog.String("voucher_id", voucherID))

	voucher, err := h.voucherService.Post(c.Request.Context(), c.Param("company_id"), voucherID, userID)
	if err != nil {
		respondError(c, logger, err, "post voucher")
		return
	}

	logger.Info("Voucher posted", slog.String("voucher_no", voucher.VoucherNo))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Posts a journal voucher with swapped lines that references the original
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Param   reversal body dto.ReverseVoucherRequest false "Optional date and narration"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Voucher not posted"
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Already reversed"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id}/reverse [post]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReverseVoucherRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, logger, err, "request format")
			return
		}
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	voucherID := c.Param("voucher_id")
	logger = logger.With(slog.String("voucher_id", voucherID))

	reversal, err := h.voucherService.Reverse(c.Request.Context(), c.Param("company_id"), voucherID, req, userID)
	if err != nil {
		respondError(c, logger, err, "reverse voucher")
		return
	}

	logger.Info("Voucher reversed", slog.String("reversal_id", reversal.VoucherID))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(reversal))
}
