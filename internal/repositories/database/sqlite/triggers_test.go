package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
)

func TestPostedRowsRejectDirectWrites(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	repos := store.Repositories()
	accounts := services.NewAccountService(repos.AccountRepo)
	vouchers := services.NewVoucherService(repos.VoucherRepo)

	cash, err := accounts.CreateAccount(ctx, "co_1", dto.CreateAccountRequest{Code: "1000", Name: "Cash", Nature: domain.Asset}, "user_1")
	require.NoError(t, err)
	sales, err := accounts.CreateAccount(ctx, "co_1", dto.CreateAccountRequest{Code: "4000", Name: "Sales", Nature: domain.Income}, "user_1")
	require.NoError(t, err)

	v, err := vouchers.CreateDraft(ctx, "co_1", dto.CreateVoucherRequest{VoucherType: domain.Journal, VoucherDate: "2024-01-15"}, "user_1")
	require.NoError(t, err)
	_, err = vouchers.AddEntry(ctx, "co_1", v.VoucherID, dto.AddEntryRequest{AccountID: cash.AccountID, DebitAmount: decimal.NewFromInt(500), CreditAmount: decimal.Zero}, "user_1")
	require.NoError(t, err)
	_, err = vouchers.AddEntry(ctx, "co_1", v.VoucherID, dto.AddEntryRequest{AccountID: sales.AccountID, DebitAmount: decimal.Zero, CreditAmount: decimal.NewFromInt(500)}, "user_1")
	require.NoError(t, err)
	_, err = vouchers.Post(ctx, "co_1", v.VoucherID, "user_1")
	require.NoError(t, err)

	writes := map[string]string{
		"update header":  `UPDATE vouchers SET narration = 'edited' WHERE voucher_id = ?`,
		"delete voucher": `DELETE FROM vouchers WHERE voucher_id = ?`,
		"update entries": `UPDATE voucher_entries SET debit_amount = '1' WHERE voucher_id = ?`,
		"delete entries": `DELETE FROM voucher_entries WHERE voucher_id = ?`,
	}
	for name, stmt := range writes {
		t.Run(name, func(t *testing.T) {
			_, err := store.writer.ExecContext(ctx, stmt, v.VoucherID)
			require.Error(t, err)
			assert.ErrorIs(t, mapSQLiteError(err, name), apperrors.ErrConflict)
		})
	}

	var status string
	require.NoError(t, store.reader.QueryRowContext(ctx, `SELECT status FROM vouchers WHERE voucher_id = ?`, v.VoucherID).Scan(&status))
	assert.Equal(t, "POSTED", status)
}

func TestDraftVoucherCanBeDeleted(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	vouchers := services.NewVoucherService(store.Repositories().VoucherRepo)
	v, err := vouchers.CreateDraft(ctx, "co_1", dto.CreateVoucherRequest{VoucherType: domain.Journal, VoucherDate: "2024-01-15"}, "user_1")
	require.NoError(t, err)

	_, err = store.writer.ExecContext(ctx, `DELETE FROM vouchers WHERE voucher_id = ?`, v.VoucherID)
	assert.NoError(t, err)
}
