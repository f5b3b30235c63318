package accounting

import (
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultEpsilon absorbs last-place rounding when comparing debit and credit
// totals. It is not a tolerance for real imbalance.
var DefaultEpsilon = decimal.RequireFromString("0.01")

// SignedAmount returns the effect of one entry on the balance of an account
// with the given nature.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func SignedAmount(entry domain.VoucherEntry, nature domain.AccountNature) decimal.Decimal {
	return NetMovement(nature, domain.PostingTotals{Debit: entry.DebitAmount, Credit: entry.CreditAmount})
}

// NetMovement converts posted debit and credit totals into the natural sign
// of the nature.
func NetMovement(nature domain.AccountNature, totals domain.PostingTotals) decimal.Decimal {
	if nature.DebitNormal() {
		return totals.Debit.Sub(totals.Credit)
	}
	return totals.Credit.Sub(totals.Debit)
}

// Balance is the opening balance plus the natural-signed posted movement.
func Balance(account domain.Account, totals domain.PostingTotals) decimal.Decimal {
	return account.OpeningBalance.Add(NetMovement(account.Nature, totals))
}

// DebitView expresses a natural-signed balance as debit-minus-credit, so
// positive always means a debit-side balance regardless of nature.
func DebitView(nature domain.AccountNature, natural decimal.Decimal) decimal.Decimal {
	if nature.DebitNormal() {
		return natural
	}
	return natural.Neg()
}

// Totals sums the debit and credit sides of a set of entries.
func Totals(entries []domain.VoucherEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.DebitAmount)
		credit = credit.Add(e.CreditAmount)
	}
	return debit, credit
}

// WithinEpsilon reports whether |a-b| <= epsilon.
func WithinEpsilon(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}
