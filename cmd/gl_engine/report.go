package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
)

type reportFlags struct {
	company string
	asOf    string
	from    string
	to      string
	account string
	subtree bool
}

// newReportCmd prints statements straight from the store as JSON.
func newReportCmd(a *app) *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print financial statements and balances as JSON",
	}
	cmd.PersistentFlags().StringVar(&f.company, "company", "", "Company ID (required)")
	cmd.PersistentFlags().StringVar(&f.asOf, "as-of", "", "Report date YYYY-MM-DD (default today)")
	_ = cmd.MarkPersistentFlagRequired("company")

	trial := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance as of a date",
		RunE: a.withServices(func(cmd *cobra.Command, svc *portssvc.ServiceContainer) (any, error) {
			asOf, err := f.asOfDate()
			if err != nil {
				return nil, err
			}
			return svc.Reporting.TrialBalance(cmd.Context(), f.company, asOf)
		}),
	}

	balanceSheet := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance sheet as of a date",
		RunE: a.withServices(func(cmd *cobra.Command, svc *portssvc.ServiceContainer) (any, error) {
			asOf, err := f.asOfDate()
			if err != nil {
				return nil, err
			}
			return svc.Reporting.BalanceSheet(cmd.Context(), f.company, asOf)
		}),
	}

	pl := &cobra.Command{
		Use:   "profit-and-loss",
		Short: "Profit and loss for a period",
		RunE: a.withServices(func(cmd *cobra.Command, svc *portssvc.ServiceContainer) (any, error) {
			from, err := domain.ParseDate(f.from)
			if err != nil {
				return nil, fmt.Errorf("invalid --from: %w", err)
			}
			to, err := domain.ParseDate(f.to)
			if err != nil {
				return nil, fmt.Errorf("invalid --to: %w", err)
			}
			return svc.Reporting.ProfitAndLoss(cmd.Context(), f.company, from, to)
		}),
	}
	pl.Flags().StringVar(&f.from, "from", "", "Period start YYYY-MM-DD")
	pl.Flags().StringVar(&f.to, "to", "", "Period end YYYY-MM-DD")
	_ = pl.MarkFlagRequired("from")
	_ = pl.MarkFlagRequired("to")

	balance := &cobra.Command{
		Use:   "balance",
		Short: "Balance of one account, by code",
		RunE: a.withServices(func(cmd *cobra.Command, svc *portssvc.ServiceContainer) (any, error) {
			asOf, err := f.asOfDate()
			if err != nil {
				return nil, err
			}
			account, err := svc.Account.GetAccountByCode(cmd.Context(), f.company, f.account)
			if err != nil {
				return nil, err
			}
			calc := svc.Balance.BalanceAsOf
			if f.subtree {
				calc = svc.Balance.SubtreeBalance
			}
			bal, err := calc(cmd.Context(), f.company, account.AccountID, asOf)
			if err != nil {
				return nil, err
			}
			return dto.AccountBalanceResponse{
				AccountID: account.AccountID,
				AsOf:      asOf.Format(domain.DateLayout),
				Subtree:   f.subtree,
				Balance:   bal,
			}, nil
		}),
	}
	balance.Flags().StringVar(&f.account, "account", "", "Account code")
	balance.Flags().BoolVar(&f.subtree, "subtree", false, "Sum the account's leaf descendants")
	_ = balance.MarkFlagRequired("account")

	cmd.AddCommand(trial, balanceSheet, pl, balance)
	return cmd
}

func (f *reportFlags) asOfDate() (time.Time, error) {
	return dto.AsOfParams{AsOf: f.asOf}.ParseAsOf(time.Now().UTC())
}

// withServices opens the store, runs fn and prints its result.
func (a *app) withServices(fn func(cmd *cobra.Command, svc *portssvc.ServiceContainer) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.close()

		result, err := fn(cmd, services.NewServiceContainer(a.cfg, st.repos))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	}
}

func printJSON(w io.Writer, v any) error {
	if v == nil {
		return errors.New("nothing to print")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
