package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostingTotals is the sum of posted debits and credits against one account.
type PostingTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Add accumulates another set of totals.
func (p PostingTotals) Add(o PostingTotals) PostingTotals {
	return PostingTotals{Debit: p.Debit.Add(o.Debit), Credit: p.Credit.Add(o.Credit)}
}

// LedgerSnapshot is a consistent read of a company's chart of accounts and
// its posted totals for one date window. Every statement is built from a
// single snapshot.
type LedgerSnapshot struct {
	CompanyID string                   `json:"companyID"`
	From      *time.Time               `json:"from,omitempty"` // nil: from the beginning
	To        time.Time                `json:"to"`
	Accounts  []Account                `json:"accounts"`
	Totals    map[string]PostingTotals `json:"totals"` // by account id
}

// TrialBalanceRow represents a single row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Nature      AccountNature   `json:"nature"`
	IsActive    bool            `json:"isActive"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance lists every postable account with its balance in the debit or
// credit column. Balanced is false when the column totals differ by more
// than the tolerance; the report is still returned.
type TrialBalance struct {
	CompanyID        string            `json:"companyID"`
	AsOf             time.Time         `json:"asOf"`
	Rows             []TrialBalanceRow `json:"rows"`
	TotalDebit       decimal.Decimal   `json:"totalDebit"`
	TotalCredit      decimal.Decimal   `json:"totalCredit"`
	Balanced         bool              `json:"balanced"`
	IntegrityWarning string            `json:"integrityWarning,omitempty"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// ReportSection is a titled group of account lines with a subtotal.
type ReportSection struct {
	Lines []AccountAmount `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheet reports assets, liabilities and equity at a date. Net income
// for all periods up to AsOf is carried inside equity.
type BalanceSheet struct {
	CompanyID                 string          `json:"companyID"`
	AsOf                      time.Time       `json:"asOf"`
	CurrentAssets             ReportSection   `json:"currentAssets"`
	FixedAssets               ReportSection   `json:"fixedAssets"`
	CurrentLiabilities        ReportSection   `json:"currentLiabilities"`
	LongTermLiabilities       ReportSection   `json:"longTermLiabilities"`
	Equity                    ReportSection   `json:"equity"`
	NetIncome                 decimal.Decimal `json:"netIncome"`
	TotalAssets               decimal.Decimal `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal `json:"totalLiabilities"`
	TotalEquity               decimal.Decimal `json:"totalEquity"` // includes NetIncome
	TotalLiabilitiesAndEquity decimal.Decimal `json:"totalLiabilitiesAndEquity"`
	Balanced                  bool            `json:"balanced"`
	IntegrityWarning          string          `json:"integrityWarning,omitempty"`
}

// ProfitAndLoss reports income and expense activity over a closed date range.
type ProfitAndLoss struct {
	CompanyID string          `json:"companyID"`
	FromDate  time.Time       `json:"fromDate"`
	ToDate    time.Time       `json:"toDate"`
	Income    ReportSection   `json:"income"`
	Expenses  ReportSection   `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// LedgerLine is a posted entry with the account's running balance after it.
type LedgerLine struct {
	PostedEntry
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedger is the statement of one account over a date range.
type AccountLedger struct {
	Account        Account         `json:"account"`
	FromDate       time.Time       `json:"fromDate"`
	ToDate         time.Time       `json:"toDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Lines          []LedgerLine    `json:"lines"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}
