package mapping

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

func TestVoucherMapping_NormalisesDate(t *testing.T) {
	parent := "v_0"
	d := domain.Voucher{
		VoucherID:         "v_1",
		VoucherType:       domain.Receipt,
		VoucherDate:       time.Date(2024, 5, 2, 18, 45, 0, 0, time.UTC),
		Status:            domain.Posted,
		TotalDebit:        decimal.NewFromInt(10),
		TotalCredit:       decimal.NewFromInt(10),
		ReversesVoucherID: &parent,
	}

	m := ToModelVoucher(d)
	assert.Equal(t, "RECEIPT", m.VoucherType)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), m.VoucherDate)

	back := ToDomainVoucher(m)
	assert.Equal(t, domain.Posted, back.Status)
	assert.Equal(t, &parent, back.ReversesVoucherID)
}

func TestAccountMapping_KeepsClassification(t *testing.T) {
	d := domain.Account{AccountID: "a", Nature: domain.Liability, Classification: domain.NonCurrent, OpeningBalance: decimal.RequireFromString("12.50")}

	back := ToDomainAccount(ToModelAccount(d))

	assert.Equal(t, domain.NonCurrent, back.Classification)
	assert.Equal(t, domain.Liability, back.Nature)
	assert.True(t, back.OpeningBalance.Equal(d.OpeningBalance))
}

func TestVoucherMapping_ReadsTimestampsAsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	posted := time.Date(2024, 5, 3, 9, 30, 0, 0, ist)
	m := ToModelVoucher(domain.Voucher{VoucherID: "v_1", VoucherDate: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)})
	m.PostedAt = &posted
	m.CreatedAt = posted

	back := ToDomainVoucher(m)

	assert.Equal(t, time.UTC, back.CreatedAt.Location())
	assert.True(t, back.CreatedAt.Equal(posted))
	if assert.NotNil(t, back.PostedAt) {
		assert.Equal(t, time.UTC, back.PostedAt.Location())
		assert.Equal(t, 4, back.PostedAt.Hour())
	}
}
