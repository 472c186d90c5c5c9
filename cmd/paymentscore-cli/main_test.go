package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/jeffleon2/draftea-paymentscore/internal/publisher"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/memory"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paidAt = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

// seededStore holds two completed M1 payments made at paidAt.
func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	store.SaveMerchant(models.MerchantAccount{
		MerchantID:        "M1",
		Status:            models.MerchantActive,
		CommissionType:    models.CommissionPercentage,
		CommissionValue:   decimal.RequireFromString("0.02"),
		BankAccountNumber: "000111222",
		BankRoutingNumber: "021000021",
	})

	clock := func() time.Time { return paidAt }
	ledger := service.NewLedgerService(store)
	ledger.Now = clock
	fraud := service.NewFraudService(store, config.DefaultFraudRules())
	fraud.Now = clock
	payments := service.NewPaymentService(store, publisher.NewLogPublisher(), service.NewCommissionService(), fraud, ledger)
	payments.Now = clock

	ctx := context.Background()
	for _, amount := range []string{"100.00", "50.00"} {
		intent, err := payments.CreateIntent(ctx, &dto.InitiatePayment{
			MerchantID:     "M1",
			TerminalID:     "T1",
			Amount:         decimal.RequireFromString(amount),
			TransactionRef: "REF-" + amount,
		})
		require.NoError(t, err)
		_, err = payments.CompletePayment(ctx, &dto.CompletePayment{
			SessionID:   intent.SessionID,
			FromAccount: "CUST_001",
			Amount:      decimal.RequireFromString(amount),
		})
		require.NoError(t, err)
	}
	return store
}

func runCLI(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	open := func() (ledgerStore, error) { return store, nil }
	now := func() time.Time { return paidAt.Add(30 * time.Minute) }

	root := newRootCmd(open, now)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSummaryCmd_PrintsMerchantTotals(t *testing.T) {
	out, err := runCLI(t, seededStore(t), "summary", "M1")
	require.NoError(t, err)

	var summary models.TransactionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "M1", summary.MerchantID)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.True(t, summary.TotalAmount.Equal(decimal.RequireFromString("150.00")), summary.TotalAmount.String())
	assert.True(t, summary.TotalCommission.Equal(decimal.RequireFromString("3.00")), summary.TotalCommission.String())
	assert.True(t, summary.TotalNetAmount.Equal(decimal.RequireFromString("147.00")), summary.TotalNetAmount.String())
	assert.True(t, summary.PeriodStart.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
}

func TestSummaryCmd_ExplicitPeriodExcludesPayments(t *testing.T) {
	out, err := runCLI(t, seededStore(t), "summary", "M1",
		"--from", "2024-03-13T00:00:00Z", "--to", "2024-03-13T23:59:59Z")
	require.NoError(t, err)

	var summary models.TransactionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 0, summary.TotalTransactions)
	assert.True(t, summary.TotalAmount.IsZero())
}

func TestSettlementCmd_PrintsPendingBatch(t *testing.T) {
	out, err := runCLI(t, seededStore(t), "settlement", "M1", "--from", "2024-03-14T00:00:00Z")
	require.NoError(t, err)

	var batch models.SettlementBatch
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	assert.Equal(t, "SETTLE_M1_20240314_123000", batch.SettlementID)
	assert.Equal(t, "000111222", batch.BankAccountNumber)
	assert.Equal(t, 2, batch.TransactionCount)
	assert.Len(t, batch.Transactions, 2)
	assert.True(t, batch.TotalFees.Equal(decimal.RequireFromString("3.00")), batch.TotalFees.String())
	assert.True(t, batch.TotalNetAmount.Equal(decimal.RequireFromString("147.00")), batch.TotalNetAmount.String())
}

func TestPeriodCommands_RejectBadArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "summary without merchant", args: []string{"summary"}, wantErr: "accepts 1 arg(s), received 0"},
		{name: "settlement with two merchants", args: []string{"settlement", "M1", "M2"}, wantErr: "accepts 1 arg(s), received 2"},
		{name: "summary bad from", args: []string{"summary", "M1", "--from", "yesterday"}, wantErr: "invalid --from"},
		{name: "settlement bad to", args: []string{"settlement", "M1", "--to", "2024-03-14"}, wantErr: "invalid --to"},
		{name: "settlement unknown merchant", args: []string{"settlement", "NO_SUCH"}, wantErr: "merchant not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, memory.New(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReconcileCmd_ReportsConsistentAccounts(t *testing.T) {
	store := seededStore(t)
	account := models.MerchantLedgerAccount("M1")

	out, err := runCLI(t, store, "reconcile", account)
	require.NoError(t, err)
	assert.Contains(t, out, account)
	assert.Contains(t, out, "OK")

	out, err = runCLI(t, store, "balance", account)
	require.NoError(t, err)
	balance, err := service.NewLedgerService(store).GetBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, account+" "+balance.StringFixed(2)+"\n", out)
}
