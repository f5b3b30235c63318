package models

import (
	"github.com/shopspring/decimal"
)

// Account is the accounts table row.
type Account struct {
	AccountID       string          `db:"account_id"`
	CompanyID       string          `db:"company_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	Nature          string          `db:"nature"`
	ParentAccountID *string         `db:"parent_account_id"` // Nullable
	IsControl       bool            `db:"is_control"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	Classification  string          `db:"classification"` // '' when unset
	IsActive        bool            `db:"is_active"`
	AuditFields
}
