package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// VoucherReaderSvc defines read operations for vouchers
type VoucherReaderSvc interface {
	// GetVoucherByID retrieves a voucher with its entries.
	GetVoucherByID(ctx context.Context, companyID string, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a page of vouchers.
	ListVouchers(ctx context.Context, companyID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}

// VoucherWriterSvc drives the draft -> posted lifecycle. It is the only
// writer of ledger postings.
type VoucherWriterSvc interface {
	// CreateDraft opens a new draft voucher with no entries.
	CreateDraft(ctx context.Context, companyID string, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error)

	// UpdateDraft changes the date or narration of a draft.
	UpdateDraft(ctx context.Context, companyID string, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error)

	// AddEntry appends a debit or credit line to a draft.
	AddEntry(ctx context.Context, companyID string, voucherID string, req dto.AddEntryRequest, userID string) (*domain.VoucherEntry, error)

	// RemoveEntry deletes a line from a draft.
	RemoveEntry(ctx context.Context, companyID string, voucherID string, entryID string, userID string) error

	// Post validates and posts a draft. Posting an already posted voucher
	// returns the stored voucher unchanged.
	Post(ctx context.Context, companyID string, voucherID string, actorID string) (*domain.Voucher, error)

	// Reverse posts an offsetting journal voucher that references the original.
	Reverse(ctx context.Context, companyID string, voucherID string, req dto.ReverseVoucherRequest, actorID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
}
