package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/apperrors"
)

// AccountNature defines the fundamental accounting nature of an account.
type AccountNature string

const (
	Asset     AccountNature = "ASSET"
	Liability AccountNature = "LIABILITY"
	Equity    AccountNature = "EQUITY"
	Income    AccountNature = "INCOME"
	Expense   AccountNature = "EXPENSE"
)

// Natures lists every valid account nature.
var Natures = []AccountNature{Asset, Liability, Equity, Income, Expense}

// Valid reports whether n is one of the five natures.
func (n AccountNature) Valid() bool {
	switch n {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// DebitNormal reports whether the nature's balance grows with debits.
func (n AccountNature) DebitNormal() bool {
	return n == Asset || n == Expense
}

// ParseNature converts user input to an AccountNature.
func ParseNature(s string) (AccountNature, error) {
	n := AccountNature(strings.ToUpper(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", fmt.Errorf("%w: unknown account nature %q", apperrors.ErrValidation, s)
	}
	return n, nil
}

// Classification places asset and liability accounts on the balance sheet.
// The empty value defers to the name-based heuristic.
type Classification string

const (
	Unclassified Classification = ""
	Current      Classification = "CURRENT"
	NonCurrent   Classification = "NON_CURRENT"
)

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	switch c {
	case Unclassified, Current, NonCurrent:
		return true
	}
	return false
}

// ParseClassification converts user input to a Classification.
func ParseClassification(s string) (Classification, error) {
	c := Classification(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown classification %q", apperrors.ErrValidation, s)
	}
	return c, nil
}

// Account is a node in a company's chart of accounts.
type Account struct {
	AccountID       string          `json:"accountID"`
	CompanyID       string          `json:"companyID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Nature          AccountNature   `json:"nature"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	IsControl       bool            `json:"isControl"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"` // natural sign of the nature
	Classification  Classification  `json:"classification,omitempty"`
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// Postable reports whether entries may be added against the account.
func (a Account) Postable() error {
	if !a.IsActive {
		return fmt.Errorf("%w: account %s (%s)", apperrors.ErrInactiveAccount, a.Code, a.AccountID)
	}
	if a.IsControl {
		return fmt.Errorf("%w: account %s (%s)", apperrors.ErrControlAccountPosting, a.Code, a.AccountID)
	}
	return nil
}

// Validate checks the intrinsic constraints of a new or updated account.
func (a Account) Validate() error {
	if strings.TrimSpace(a.CompanyID) == "" {
		return fmt.Errorf("%w: company id is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(a.Code) == "" {
		return fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if !a.Nature.Valid() {
		return fmt.Errorf("%w: unknown account nature %q", apperrors.ErrValidation, a.Nature)
	}
	if !a.Classification.Valid() {
		return fmt.Errorf("%w: unknown classification %q", apperrors.ErrValidation, a.Classification)
	}
	if !WithinScale(a.OpeningBalance) {
		return fmt.Errorf("%w: opening balance %s has more than %d decimal places", apperrors.ErrValidation, a.OpeningBalance, AmountScale)
	}
	if a.IsControl && !a.OpeningBalance.IsZero() {
		return fmt.Errorf("%w: control account %s must have a zero opening balance", apperrors.ErrValidation, a.Code)
	}
	if a.ParentAccountID != nil && *a.ParentAccountID == a.AccountID {
		return fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrInvalidParent)
	}
	return nil
}

// AccountNode is an account with its children, used for the chart-of-accounts tree.
type AccountNode struct {
	Account
	Children []*AccountNode `json:"children,omitempty"`
}
