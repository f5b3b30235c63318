package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Voucher is the vouchers table row.
type Voucher struct {
	VoucherID         string          `db:"voucher_id"`
	CompanyID         string          `db:"company_id"`
	VoucherNo         string          `db:"voucher_no"`
	VoucherType       string          `db:"voucher_type"`
	VoucherDate       time.Time       `db:"voucher_date"`
	Status            string          `db:"status"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	Narration         string          `db:"narration"`
	PostedBy          *string         `db:"posted_by"`
	PostedAt          *time.Time      `db:"posted_at"`
	ReversesVoucherID *string         `db:"reverses_voucher_id"`
	AuditFields
}

// VoucherEntry is the voucher_entries table row.
type VoucherEntry struct {
	EntryID      string          `db:"entry_id"`
	VoucherID    string          `db:"voucher_id"`
	AccountID    string          `db:"account_id"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Narration    string          `db:"narration"`
	LineNo       int             `db:"line_no"`
	AuditFields
}
