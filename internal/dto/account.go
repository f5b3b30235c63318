package dto

import (
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string               `json:"code" binding:"required,max=32"`
	Name            string               `json:"name" binding:"required,max=255"`
	Nature          domain.AccountNature `json:"nature" binding:"required,account_nature"`
	ParentAccountID *string              `json:"parentAccountID"` // Optional, use pointer for nullability
	IsControl       bool                 `json:"isControl"`
	OpeningBalance  decimal.Decimal      `json:"openingBalance"`
	Classification  string               `json:"classification" binding:"omitempty,oneof=CURRENT NON_CURRENT"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name            *string               `json:"name" binding:"omitempty,min=1,max=255"`
	Nature          *domain.AccountNature `json:"nature" binding:"omitempty,account_nature"`
	ParentAccountID *string               `json:"parentAccountID"`
	ClearParent     bool                  `json:"clearParent"` // detach from the current parent
	Classification  *string               `json:"classification" binding:"omitempty,oneof=CURRENT NON_CURRENT ''"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string               `json:"accountID"`
	CompanyID       string               `json:"companyID"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	Nature          domain.AccountNature `json:"nature"`
	ParentAccountID *string              `json:"parentAccountID,omitempty"`
	IsControl       bool                 `json:"isControl"`
	OpeningBalance  decimal.Decimal      `json:"openingBalance"`
	Classification  string               `json:"classification,omitempty"`
	IsActive        bool                 `json:"isActive"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// AccountTreeNodeResponse is one node of the chart-of-accounts tree.
type AccountTreeNodeResponse struct {
	AccountResponse
	Children []AccountTreeNodeResponse `json:"children,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		CompanyID:       acc.CompanyID,
		Code:            acc.Code,
		Name:            acc.Name,
		Nature:          acc.Nature,
		ParentAccountID: acc.ParentAccountID,
		IsControl:       acc.IsControl,
		OpeningBalance:  acc.OpeningBalance,
		Classification:  string(acc.Classification),
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ToAccountTreeResponse converts tree nodes recursively.
func ToAccountTreeResponse(nodes []*domain.AccountNode) []AccountTreeNodeResponse {
	res := make([]AccountTreeNodeResponse, len(nodes))
	for i, n := range nodes {
		res[i] = AccountTreeNodeResponse{
			AccountResponse: ToAccountResponse(&n.Account),
			Children:        ToAccountTreeResponse(n.Children),
		}
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeInactive bool `form:"includeInactive,default=false"`
}

// ListAccountsResponse wraps the account listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// AccountBalanceParams defines query parameters for a balance lookup.
type AccountBalanceParams struct {
	AsOf    string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
	Subtree bool   `form:"subtree,default=false"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      string          `json:"asOf"`
	Subtree   bool            `json:"subtree"`
	Balance   decimal.Decimal `json:"balance"`
}
