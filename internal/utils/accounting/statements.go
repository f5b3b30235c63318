package accounting

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

func sortByCode(accounts []domain.Account) []domain.Account {
	sorted := make([]domain.Account, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return sorted
}

// reportable selects accounts that carry their own balance: control accounts
// never do, and inactive accounts only appear while they still hold money.
func reportable(account domain.Account, balance decimal.Decimal) bool {
	if account.IsControl {
		return false
	}
	return account.IsActive || !balance.IsZero()
}

func amountLine(account domain.Account, amount decimal.Decimal) domain.AccountAmount {
	return domain.AccountAmount{
		AccountID: account.AccountID,
		Code:      account.Code,
		Name:      account.Name,
		NetAmount: amount,
	}
}

type sectionBuilder struct {
	section domain.ReportSection
}

func (s *sectionBuilder) add(account domain.Account, amount decimal.Decimal) {
	s.section.Lines = append(s.section.Lines, amountLine(account, amount))
	s.section.Total = s.section.Total.Add(amount)
}

func newSection() *sectionBuilder {
	return &sectionBuilder{section: domain.ReportSection{Lines: []domain.AccountAmount{}, Total: decimal.Zero}}
}

// BuildTrialBalance lists the balance of every reportable account in the
// snapshot, split into debit and credit columns by sign.
func BuildTrialBalance(snap domain.LedgerSnapshot, epsilon decimal.Decimal) domain.TrialBalance {
	tb := domain.TrialBalance{
		CompanyID:   snap.CompanyID,
		AsOf:        snap.To,
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, acc := range sortByCode(snap.Accounts) {
		balance := Balance(acc, snap.Totals[acc.AccountID])
		if !reportable(acc, balance) {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			AccountCode: acc.Code,
			AccountName: acc.Name,
			Nature:      acc.Nature,
			IsActive:    acc.IsActive,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if dv := DebitView(acc.Nature, balance); dv.IsNegative() {
			row.Credit = dv.Neg()
		} else {
			row.Debit = dv
		}
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}

	tb.Balanced = WithinEpsilon(tb.TotalDebit, tb.TotalCredit, epsilon)
	if !tb.Balanced {
		tb.IntegrityWarning = fmt.Sprintf("trial balance out of balance: debit %s, credit %s, difference %s",
			tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2), tb.TotalDebit.Sub(tb.TotalCredit).StringFixed(2))
	}
	return tb
}

// BuildBalanceSheet classifies asset and liability balances, sums equity and
// folds all-time net income into it.
func BuildBalanceSheet(snap domain.LedgerSnapshot, epsilon decimal.Decimal) domain.BalanceSheet {
	currentAssets, fixedAssets := newSection(), newSection()
	currentLiabilities, longTermLiabilities := newSection(), newSection()
	equity := newSection()
	netIncome := decimal.Zero

	for _, acc := range sortByCode(snap.Accounts) {
		balance := Balance(acc, snap.Totals[acc.AccountID])
		if !reportable(acc, balance) {
			continue
		}
		switch acc.Nature {
		case domain.Asset:
			if Classify(acc) == domain.Current {
				currentAssets.add(acc, balance)
			} else {
				fixedAssets.add(acc, balance)
			}
		case domain.Liability:
			if Classify(acc) == domain.Current {
				currentLiabilities.add(acc, balance)
			} else {
				longTermLiabilities.add(acc, balance)
			}
		case domain.Equity:
			equity.add(acc, balance)
		case domain.Income:
			netIncome = netIncome.Add(balance)
		case domain.Expense:
			netIncome = netIncome.Sub(balance)
		}
	}

	bs := domain.BalanceSheet{
		CompanyID:           snap.CompanyID,
		AsOf:                snap.To,
		CurrentAssets:       currentAssets.section,
		FixedAssets:         fixedAssets.section,
		CurrentLiabilities:  currentLiabilities.section,
		LongTermLiabilities: longTermLiabilities.section,
		Equity:              equity.section,
		NetIncome:           netIncome,
	}
	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.FixedAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.LongTermLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total.Add(netIncome)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.Balanced = WithinEpsilon(bs.TotalAssets, bs.TotalLiabilitiesAndEquity, epsilon)
	if !bs.Balanced {
		bs.IntegrityWarning = fmt.Sprintf("balance sheet out of balance: assets %s, liabilities and equity %s",
			bs.TotalAssets.StringFixed(2), bs.TotalLiabilitiesAndEquity.StringFixed(2))
	}
	return bs
}

// BuildProfitAndLoss nets income against expense activity inside the
// snapshot window. Opening balances are not period activity and are ignored.
func BuildProfitAndLoss(snap domain.LedgerSnapshot) domain.ProfitAndLoss {
	income, expenses := newSection(), newSection()

	for _, acc := range sortByCode(snap.Accounts) {
		if acc.Nature != domain.Income && acc.Nature != domain.Expense {
			continue
		}
		movement := NetMovement(acc.Nature, snap.Totals[acc.AccountID])
		if !reportable(acc, movement) {
			continue
		}
		if acc.Nature == domain.Income {
			income.add(acc, movement)
		} else {
			expenses.add(acc, movement)
		}
	}

	pl := domain.ProfitAndLoss{
		CompanyID: snap.CompanyID,
		ToDate:    snap.To,
		Income:    income.section,
		Expenses:  expenses.section,
		NetProfit: income.section.Total.Sub(expenses.section.Total),
	}
	if snap.From != nil {
		pl.FromDate = *snap.From
	}
	return pl
}

// SubtreeLeaves returns the active leaf accounts under rootID. A root without
// children is its own subtree.
func SubtreeLeaves(accounts []domain.Account, rootID string) []domain.Account {
	children := make(map[string][]domain.Account)
	var root *domain.Account
	for i := range accounts {
		acc := accounts[i]
		if acc.AccountID == rootID {
			root = &accounts[i]
		}
		if acc.ParentAccountID != nil {
			children[*acc.ParentAccountID] = append(children[*acc.ParentAccountID], acc)
		}
	}
	if root == nil {
		return nil
	}
	if len(children[rootID]) == 0 {
		return []domain.Account{*root}
	}

	var leaves []domain.Account
	visited := map[string]bool{rootID: true}
	stack := append([]domain.Account(nil), children[rootID]...)
	for len(stack) > 0 {
		acc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[acc.AccountID] {
			continue
		}
		visited[acc.AccountID] = true
		if kids := children[acc.AccountID]; len(kids) > 0 {
			stack = append(stack, kids...)
			continue
		}
		if acc.IsActive {
			leaves = append(leaves, acc)
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Code < leaves[j].Code })
	return leaves
}

// BuildAccountTree nests accounts under their parents. Accounts whose parent
// is absent from the input become roots.
func BuildAccountTree(accounts []domain.Account) []*domain.AccountNode {
	sorted := sortByCode(accounts)
	nodes := make(map[string]*domain.AccountNode, len(sorted))
	for _, acc := range sorted {
		nodes[acc.AccountID] = &domain.AccountNode{Account: acc}
	}
	roots := []*domain.AccountNode{}
	for _, acc := range sorted {
		node := nodes[acc.AccountID]
		if acc.ParentAccountID != nil {
			if parent, ok := nodes[*acc.ParentAccountID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// BuildAccountLedger attaches running balances to posted entries, which must
// be ordered by voucher date.
func BuildAccountLedger(account domain.Account, from, to time.Time, opening decimal.Decimal, entries []domain.PostedEntry) domain.AccountLedger {
	ledger := domain.AccountLedger{
		Account:        account,
		FromDate:       from,
		ToDate:         to,
		OpeningBalance: opening,
		Lines:          make([]domain.LedgerLine, 0, len(entries)),
	}
	running := opening
	for _, e := range entries {
		running = running.Add(SignedAmount(e.VoucherEntry, account.Nature))
		ledger.Lines = append(ledger.Lines, domain.LedgerLine{PostedEntry: e, RunningBalance: running})
	}
	ledger.ClosingBalance = running
	return ledger
}
