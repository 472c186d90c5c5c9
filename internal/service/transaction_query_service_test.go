package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMerchantActivity completes one M1 payment and posts one credit that has no intent.
func seedMerchantActivity(t *testing.T, f *fixture) *service.CompletionResult {
	f.allowPublishing()
	result := completePayment(t, f, "M1", "100.00")

	f.advance(time.Minute)
	_, err := f.ledger.PostEntry(context.Background(), service.Posting{
		PaymentIntentID: "orphan",
		AccountNumber:   models.MerchantLedgerAccount("M1"),
		EntryType:       models.EntryCredit,
		Amount:          dec("5.00"),
	})
	require.NoError(t, err)

	f.advance(time.Minute)
	return result
}

func TestGetTodayTransactions_JoinsCredits(t *testing.T) {
	f := newFixture(t)
	completed := seedMerchantActivity(t, f)

	txs, err := f.queries.GetTodayTransactions(context.Background(), "M1", "")

	require.NoError(t, err)
	require.Equal(t, 2, txs.TotalCount)
	assert.Equal(t, "M1", txs.MerchantID)
	assert.True(t, txs.TotalAmount.Equal(dec("105.00")), txs.TotalAmount.String())

	paid := txs.Transactions[0]
	assert.Equal(t, completed.Intent.SessionID, paid.SessionID)
	assert.Equal(t, completed.Intent.TransactionRef, paid.TransactionRef)
	assert.True(t, paid.Amount.Equal(dec("100.00")))
	assert.True(t, paid.CommissionAmount.Equal(dec("2.00")))
	assert.True(t, paid.NetAmount.Equal(dec("98.00")))
	assert.Equal(t, string(models.TransferAcknowledged), paid.Status)
	require.NotNil(t, paid.SettlementDate)
	assert.Equal(t, time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC), *paid.SettlementDate)

	orphan := txs.Transactions[1]
	assert.Equal(t, "N/A", orphan.SessionID)
	assert.Equal(t, "N/A", orphan.TransactionRef)
	assert.Equal(t, models.TransferStatusUnknown, orphan.Status)
	assert.True(t, orphan.CommissionAmount.IsZero())
	assert.True(t, orphan.NetAmount.Equal(dec("5.00")))
	assert.Nil(t, orphan.CompletedAt)
}

func TestGetMerchantTransactions_StatusFilter(t *testing.T) {
	f := newFixture(t)
	seedMerchantActivity(t, f)
	ctx := context.Background()
	from, to := f.now.Add(-time.Hour), f.now

	acknowledged, err := f.queries.GetMerchantTransactions(ctx, "M1", from, to, "ACKNOWLEDGED")
	require.NoError(t, err)
	assert.Equal(t, 1, acknowledged.TotalCount)
	assert.True(t, acknowledged.TotalAmount.Equal(dec("100.00")))

	pending, err := f.queries.GetMerchantTransactions(ctx, "M1", from, to, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, 0, pending.TotalCount)
	assert.NotNil(t, pending.Transactions)
	assert.True(t, pending.TotalAmount.IsZero())
}

func TestGetMerchantTransactions_WindowIsHalfOpen(t *testing.T) {
	f := newFixture(t)
	f.allowPublishing()
	ctx := context.Background()
	completedAt := f.now
	completePayment(t, f, "M1", "40.00")

	excluded, err := f.queries.GetMerchantTransactions(ctx, "M1", completedAt.Add(-time.Hour), completedAt, "")
	require.NoError(t, err)
	assert.Equal(t, 0, excluded.TotalCount)

	included, err := f.queries.GetMerchantTransactions(ctx, "M1", completedAt, completedAt.Add(time.Second), "")
	require.NoError(t, err)
	assert.Equal(t, 1, included.TotalCount)
}

func TestGetMerchantTransactions_OtherMerchantIsolated(t *testing.T) {
	f := newFixture(t)
	seedMerchantActivity(t, f)

	txs, err := f.queries.GetTodayTransactions(context.Background(), "M2", "")

	require.NoError(t, err)
	assert.Equal(t, 0, txs.TotalCount)
}

func TestGetTransactionSummary(t *testing.T) {
	f := newFixture(t)
	seedMerchantActivity(t, f)
	from, to := f.now.Add(-time.Hour), f.now

	summary, err := f.queries.GetTransactionSummary(context.Background(), "M1", from, to)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTransactions)
	assert.True(t, summary.TotalAmount.Equal(dec("100.00")), summary.TotalAmount.String())
	assert.True(t, summary.TotalCommission.Equal(dec("2.00")))
	assert.True(t, summary.TotalNetAmount.Equal(dec("98.00")))
	assert.Equal(t, map[string]int64{"ACKNOWLEDGED": 1, "UNKNOWN": 1}, summary.StatusBreakdown)
	assert.Equal(t, from, summary.PeriodStart)
	assert.Equal(t, to, summary.PeriodEnd)
}

func TestGetTransactionSummary_Empty(t *testing.T) {
	f := newFixture(t)

	summary, err := f.queries.GetTransactionSummary(context.Background(), "M1", f.now.Add(-time.Hour), f.now)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTransactions)
	assert.True(t, summary.TotalAmount.IsZero())
	assert.Empty(t, summary.StatusBreakdown)
}
