package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/apperrors"
)

// VoucherType categorises a voucher and selects its numbering sequence.
type VoucherType string

const (
	Journal        VoucherType = "JOURNAL"
	Payment        VoucherType = "PAYMENT"
	Receipt        VoucherType = "RECEIPT"
	Deposit        VoucherType = "DEPOSIT"
	Reconciliation VoucherType = "RECONCILIATION"
)

var voucherPrefixes = map[VoucherType]string{
	Journal:        "JV",
	Payment:        "PV",
	Receipt:        "RV",
	Deposit:        "DV",
	Reconciliation: "RC",
}

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	_, ok := voucherPrefixes[t]
	return ok
}

// Prefix is the voucher number prefix for the type, e.g. "JV".
func (t VoucherType) Prefix() string {
	return voucherPrefixes[t]
}

// ParseVoucherType converts user input to a VoucherType.
func ParseVoucherType(s string) (VoucherType, error) {
	t := VoucherType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, s)
	}
	return t, nil
}

// FormatVoucherNo renders the n-th voucher number of a type.
func FormatVoucherNo(t VoucherType, n int64) string {
	return fmt.Sprintf("%s-%06d", t.Prefix(), n)
}

// VoucherStatus is the lifecycle state of a voucher. There is no void state:
// a posted voucher is corrected with a reversing voucher.
type VoucherStatus string

const (
	Draft  VoucherStatus = "DRAFT"
	Posted VoucherStatus = "POSTED"
)

// Valid reports whether s is a known status.
func (s VoucherStatus) Valid() bool {
	return s == Draft || s == Posted
}

// Voucher is the unit of posting: a dated, typed, balanced set of entries.
type Voucher struct {
	VoucherID         string          `json:"voucherID"`
	CompanyID         string          `json:"companyID"`
	VoucherNo         string          `json:"voucherNo"`
	VoucherType       VoucherType     `json:"voucherType"`
	VoucherDate       time.Time       `json:"voucherDate"`
	Status            VoucherStatus   `json:"status"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	Narration         string          `json:"narration"`
	PostedBy          *string         `json:"postedBy,omitempty"`
	PostedAt          *time.Time      `json:"postedAt,omitempty"`
	ReversesVoucherID *string         `json:"reversesVoucherID,omitempty"`
	Entries           []VoucherEntry  `json:"entries,omitempty"`
	AuditFields
}

// IsDraft reports whether the voucher can still be edited.
func (v Voucher) IsDraft() bool { return v.Status == Draft }

// RequireDraft returns ErrVoucherNotDraft for posted vouchers.
func (v Voucher) RequireDraft() error {
	if v.Status != Draft {
		return fmt.Errorf("%w: voucher %s is %s", apperrors.ErrVoucherNotDraft, v.VoucherNo, v.Status)
	}
	return nil
}

// VoucherEntry is one debit or credit line of a voucher.
type VoucherEntry struct {
	EntryID      string          `json:"entryID"`
	VoucherID    string          `json:"voucherID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Narration    string          `json:"narration,omitempty"`
	LineNo       int             `json:"lineNo"`
	AuditFields
}

// Validate enforces the one-sided, non-negative line rule and the amount scale.
func (e VoucherEntry) Validate() error {
	if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: negative amount on account %s (debit %s, credit %s)",
			apperrors.ErrInvalidLine, e.AccountID, e.DebitAmount, e.CreditAmount)
	}
	if !WithinScale(e.DebitAmount) || !WithinScale(e.CreditAmount) {
		return fmt.Errorf("%w: account %s amount has more than %d decimal places (debit %s, credit %s)",
			apperrors.ErrInvalidLine, e.AccountID, AmountScale, e.DebitAmount, e.CreditAmount)
	}
	hasDebit := e.DebitAmount.IsPositive()
	hasCredit := e.CreditAmount.IsPositive()
	if hasDebit == hasCredit {
		return fmt.Errorf("%w: account %s (debit %s, credit %s)",
			apperrors.ErrInvalidLine, e.AccountID, e.DebitAmount, e.CreditAmount)
	}
	return nil
}

// Reversed returns the entry with debit and credit swapped.
func (e VoucherEntry) Reversed() VoucherEntry {
	e.DebitAmount, e.CreditAmount = e.CreditAmount, e.DebitAmount
	return e
}

// VoucherFilter narrows voucher listings.
type VoucherFilter struct {
	Type     *VoucherType
	Status   *VoucherStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// PostedEntry is a posted voucher line joined with its voucher header,
// used for account ledgers.
type PostedEntry struct {
	VoucherEntry
	VoucherNo   string      `json:"voucherNo"`
	VoucherType VoucherType `json:"voucherType"`
	VoucherDate time.Time   `json:"voucherDate"`
}
