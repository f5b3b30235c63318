package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvc
}

func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvc) *accountHandler {
	return &accountHandler{
		accountService: as,
		balanceService: bs,
	}
}

// RegisterAccountRoutes registers account and balance routes on a company group.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, balanceService portssvc.BalanceSvc) {
	h := newAccountHandler(accountService, balanceService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/tree", h.getAccountTree)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PATCH("/:account_id", h.updateAccount)
		accounts.POST("/:account_id/deactivate", h.deactivateAccount)
		accounts.DELETE("/:account_id", h.deleteAccount)
		accounts.GET("/:account_id/balance", h.getAccountBalance)
		accounts.GET("/:account_id/ledger", h.getAccountLedger)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Registers an account in the company's chart of accounts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input or invalid parent"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}

	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	companyID := c.Param("company_id")

	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("nature", string(req.Nature)))

	account, err := h.accountService.CreateAccount(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondError(c, logger, err, "create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   includeInactive query bool false "Include deactivated accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), c.Param("company_id"), params.IncludeInactive)
	if err != nil {
		respondError(c, logger, err, "list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// getAccountTree godoc
// @Summary Chart of accounts tree
// @Description Returns the chart of accounts as a hierarchy
// @Tags accounts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   includeInactive query bool false "Include deactivated accounts"
// @Success 200 {array} dto.AccountTreeNodeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/tree [get]
func (h *accountHandler) getAccountTree(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	tree, err := h.accountService.GetAccountTree(c.Request.Context(), c.Param("company_id"), params.IncludeInactive)
	if err != nil {
		respondError(c, logger, err, "build account tree")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountTreeResponse(tree))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("account_id")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("company_id"), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes name, nature, parent or classification. Nature is locked once postings exist.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("account_id")
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("company_id"), accountID, req, userID)
	if err != nil {
		respondError(c, logger, err, "update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive; it can no longer receive entries
// @Tags accounts
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("account_id")
	logger = logger.With(slog.String("account_id", accountID))

	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("company_id"), accountID, userID); err != nil {
		respondError(c, logger, err, "deactivate account")
		return
	}

	logger.Info("Account deactivated")
	c.Status(http.StatusNoContent)
}

// deleteAccount godoc
// @Summary Delete an account
// @Description Removes an account that no voucher entry or child account references
// @Tags accounts
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account has postings or children"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id} [delete]
func (h *accountHandler) deleteAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := actorFromContext(c, logger)
	if !ok {
		return
	}
	accountID := c.Param("account_id")
	logger = logger.With(slog.String("account_id", accountID))

	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("company_id"), accountID, userID); err != nil {
		respondError(c, logger, err, "delete account")
		return
	}

	logger.Info("Account deleted")
	c.Status(http.StatusNoContent)
}

// getAccountBalance godoc
// @Summary Get account balance
// @Description Natural-signed balance on a date, optionally rolled up over the subtree
// @Tags accounts
// @Produce json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   asOf query string false "Cutoff date (YYYY-MM-DD), default today"
// @Param   subtree query bool false "Sum the active leaf accounts under this account"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.AccountBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}
	asOf, err := dto.AsOfParams{AsOf: params.AsOf}.ParseAsOf(time.Now().UTC())
	if err != nil {
		bindError(c, logger, err, "asOf date")
		return
	}

	companyID := c.Param("company_id")
	accountID := c.Param("account_id")
	logger = logger.With(slog.String("account_id", accountID))

	var balance decimal.Decimal
	if params.Subtree {
		balance, err = h.balanceService.SubtreeBalance(c.Request.Context(), companyID, accountID, asOf)
	} else {
		balance, err = h.balanceService.BalanceAsOf(c.Request.Context(), companyID, accountID, asOf)
	}
	if err != nil {
		respondError(c, logger, err, "calculate balance")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{
		AccountID: accountID,
		AsOf:      asOf.Format(domain.DateLayout),
		Subtree:   params.Subtree,
		Balance:   balance,
	})
}

// getAccountLedger godoc
// @Summary Account ledger
// @Description Posted entries of an account in a date range with running balances
// @Tags accounts
// @Produce json
// @Param   company_id path string true "Company ID"
// @Param   account_id path string true "Account ID"
// @Param   from query string true "Start date (YYYY-MM-DD)"
// @Param   to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.AccountLedgerResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /companies/{company_id}/accounts/{account_id}/ledger [get]
func (h *accountHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.LedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}
	from, to, err := parseRange(params.FromDate, params.ToDate)
	if err != nil {
		bindError(c, logger, err, "date range")
		return
	}

	accountID := c.Param("account_id")
	ledger, err := h.balanceService.AccountLedger(c.Request.Context(), c.Param("company_id"), accountID, from, to)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "build account ledger")
		return
	}
	c.JSON(http.StatusOK, ledger)
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := domain.ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := domain.ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
