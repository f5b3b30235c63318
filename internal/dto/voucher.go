package dto

import (
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateVoucherRequest defines the data needed to open a draft voucher.
type CreateVoucherRequest struct {
	VoucherType domain.VoucherType `json:"voucherType" binding:"required,voucher_type"`
	VoucherDate string             `json:"voucherDate" binding:"required,datetime=2006-01-02"`
	Narration   string             `json:"narration" binding:"max=1000"`
}

// UpdateVoucherRequest changes the header of a draft voucher.
type UpdateVoucherRequest struct {
	VoucherDate *string `json:"voucherDate" binding:"omitempty,datetime=2006-01-02"`
	Narration   *string `json:"narration" binding:"omitempty,max=1000"`
}

// AddEntryRequest defines one debit or credit line. Exactly one of the two
// amounts must be non-zero.
type AddEntryRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Narration    string          `json:"narration" binding:"max=500"`
}

// ReverseVoucherRequest optionally overrides the reversal's date and narration.
type ReverseVoucherRequest struct {
	VoucherDate *string `json:"voucherDate" binding:"omitempty,datetime=2006-01-02"`
	Narration   *string `json:"narration" binding:"omitempty,max=1000"`
}

// VoucherEntryResponse defines the data returned for a voucher line.
type VoucherEntryResponse struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Narration    string          `json:"narration,omitempty"`
	LineNo       int             `json:"lineNo"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID         string                 `json:"voucherID"`
	CompanyID         string                 `json:"companyID"`
	VoucherNo         string                 `json:"voucherNo"`
	VoucherType       domain.VoucherType     `json:"voucherType"`
	VoucherDate       string                 `json:"voucherDate"`
	Status            domain.VoucherStatus   `json:"status"`
	TotalDebit        decimal.Decimal        `json:"totalDebit"`
	TotalCredit       decimal.Decimal        `json:"totalCredit"`
	Narration         string                 `json:"narration"`
	CreatedBy         string                 `json:"createdBy"`
	CreatedAt         time.Time              `json:"createdAt"`
	PostedBy          *string                `json:"postedBy,omitempty"`
	PostedAt          *time.Time             `json:"postedAt,omitempty"`
	ReversesVoucherID *string                `json:"reversesVoucherID,omitempty"`
	Entries           []VoucherEntryResponse `json:"entries,omitempty"`
}

// ToVoucherEntryResponse converts a domain.VoucherEntry to its DTO.
func ToVoucherEntryResponse(e *domain.VoucherEntry) VoucherEntryResponse {
	return VoucherEntryResponse{
		EntryID:      e.EntryID,
		AccountID:    e.AccountID,
		DebitAmount:  e.DebitAmount,
		CreditAmount: e.CreditAmount,
		Narration:    e.Narration,
		LineNo:       e.LineNo,
	}
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	resp := VoucherResponse{
		VoucherID:         v.VoucherID,
		CompanyID:         v.CompanyID,
		VoucherNo:         v.VoucherNo,
		VoucherType:       v.VoucherType,
		VoucherDate:       v.VoucherDate.Format(domain.DateLayout),
		Status:            v.Status,
		TotalDebit:        v.TotalDebit,
		TotalCredit:       v.TotalCredit,
		Narration:         v.Narration,
		CreatedBy:         v.CreatedBy,
		CreatedAt:         v.CreatedAt,
		PostedBy:          v.PostedBy,
		PostedAt:          v.PostedAt,
		ReversesVoucherID: v.ReversesVoucherID,
	}
	if len(v.Entries) > 0 {
		resp.Entries = make([]VoucherEntryResponse, len(v.Entries))
		for i := range v.Entries {
			resp.Entries[i] = ToVoucherEntryResponse(&v.Entries[i])
		}
	}
	return resp
}

// ListVouchersParams defines query parameters for listing vouchers.
type ListVouchersParams struct {
	Type      string  `form:"type" binding:"omitempty,voucher_type"`
	Status    string  `form:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	FromDate  string  `form:"from" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string  `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit,default=20" binding:"min=0,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListVouchersResponse defines the response for listing vouchers.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}
