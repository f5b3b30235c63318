package mapping

import (
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/models"
)

// ToModelVoucher converts a domain Voucher header to a model Voucher.
// Entries are mapped separately.
func ToModelVoucher(d domain.Voucher) models.Voucher {
	return models.Voucher{
		VoucherID:         d.VoucherID,
		CompanyID:         d.CompanyID,
		VoucherNo:         d.VoucherNo,
		VoucherType:       string(d.VoucherType),
		VoucherDate:       domain.DateOnly(d.VoucherDate),
		Status:            string(d.Status),
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		Narration:         d.Narration,
		PostedBy:          d.PostedBy,
		PostedAt:          d.PostedAt,
		ReversesVoucherID: d.ReversesVoucherID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucher converts a model Voucher to a domain Voucher without entries.
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	return domain.Voucher{
		VoucherID:         m.VoucherID,
		CompanyID:         m.CompanyID,
		VoucherNo:         m.VoucherNo,
		VoucherType:       domain.VoucherType(m.VoucherType),
		VoucherDate:       domain.DateOnly(m.VoucherDate),
		Status:            domain.VoucherStatus(m.Status),
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		Narration:         m.Narration,
		PostedBy:          m.PostedBy,
		PostedAt:          utcPtr(m.PostedAt),
		ReversesVoucherID: m.ReversesVoucherID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelVoucherEntry converts a domain VoucherEntry to a model VoucherEntry
func ToModelVoucherEntry(d domain.VoucherEntry) models.VoucherEntry {
	return models.VoucherEntry{
		EntryID:      d.EntryID,
		VoucherID:    d.VoucherID,
		AccountID:    d.AccountID,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		Narration:    d.Narration,
		LineNo:       d.LineNo,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucherEntry converts a model VoucherEntry to a domain VoucherEntry
func ToDomainVoucherEntry(m models.VoucherEntry) domain.VoucherEntry {
	return domain.VoucherEntry{
		EntryID:      m.EntryID,
		VoucherID:    m.VoucherID,
		AccountID:    m.AccountID,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Narration:    m.Narration,
		LineNo:       m.LineNo,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainVoucherEntrySlice converts a slice of model entries to domain entries
func ToDomainVoucherEntrySlice(ms []models.VoucherEntry) []domain.VoucherEntry {
	ds := make([]domain.VoucherEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainVoucherEntry(m)
	}
	return ds
}
