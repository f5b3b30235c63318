package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format for voucher and report dates.
const DateLayout = "2006-01-02"

// AmountScale is the number of decimal places an amount may carry. It
// matches the NUMERIC(20, 4) columns of the PostgreSQL schema.
const AmountScale = 4

// WithinScale reports whether d needs no more than AmountScale decimal places.
func WithinScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // actor id
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // actor id
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
