package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchSettlement_SumsAcknowledgedTransactions(t *testing.T) {
	f := newFixture(t)
	f.allowPublishing()
	ctx := context.Background()
	start := f.now

	completePayment(t, f, "M1", "100.00")
	f.advance(10 * time.Minute)
	completePayment(t, f, "M1", "50.00")
	f.advance(20 * time.Minute)

	batch, err := f.settlements.BatchSettlement(ctx, "M1", start.Add(-time.Hour), f.now)

	require.NoError(t, err)
	assert.Equal(t, "SETTLE_M1_20240314_123000", batch.SettlementID)
	assert.Equal(t, models.SettlementPending, batch.Status)
	assert.Equal(t, "000111222", batch.BankAccountNumber)
	assert.Equal(t, "021000021", batch.BankRoutingNumber)
	assert.Equal(t, 2, batch.TransactionCount)
	assert.True(t, batch.TotalAmount.Equal(dec("150.00")), batch.TotalAmount.String())
	assert.True(t, batch.TotalFees.Equal(dec("3.00")), batch.TotalFees.String())
	assert.True(t, batch.TotalNetAmount.Equal(dec("147.00")), batch.TotalNetAmount.String())
	assert.Equal(t, start, batch.PeriodFrom)
	assert.Equal(t, start.Add(10*time.Minute), batch.PeriodTo)
	assert.Equal(t, f.now, batch.GeneratedAt)
}

func TestBatchSettlement_SkipsUnacknowledgedCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.PostEntry(ctx, service.Posting{
		PaymentIntentID: "manual",
		AccountNumber:   models.MerchantLedgerAccount("M1"),
		EntryType:       models.EntryCredit,
		Amount:          dec("12.00"),
	})
	require.NoError(t, err)
	f.advance(time.Minute)

	batch, err := f.settlements.TodayPendingSettlement(ctx, "M1")

	require.NoError(t, err)
	assert.Equal(t, 0, batch.TransactionCount)
	assert.NotNil(t, batch.Transactions)
	assert.True(t, batch.TotalAmount.IsZero())
	assert.Equal(t, f.now, batch.PeriodFrom)
	assert.Equal(t, f.now, batch.PeriodTo)
}

func TestPendingSettlement_DefaultsToToday(t *testing.T) {
	f := newFixture(t)
	f.allowPublishing()
	ctx := context.Background()

	f.now = time.Date(2024, 3, 13, 23, 0, 0, 0, time.UTC)
	completePayment(t, f, "M1", "70.00")
	f.now = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	completePayment(t, f, "M1", "30.00")
	f.advance(time.Hour)

	today, err := f.settlements.PendingSettlement(ctx, "M1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, today.TransactionCount)
	assert.True(t, today.TotalAmount.Equal(dec("30.00")))

	from := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	both, err := f.settlements.PendingSettlement(ctx, "M1", &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, both.TransactionCount)
}

func TestBatchSettlement_UnknownMerchant(t *testing.T) {
	f := newFixture(t)

	_, err := f.settlements.BatchSettlement(context.Background(), "NOPE", f.now.Add(-time.Hour), f.now)

	assert.ErrorIs(t, err, service.ErrMerchantNotFound)
}

func TestMarkSettled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := func() *dto.MarkSettlement {
		return &dto.MarkSettlement{
			SettlementID:    "SETTLE_M1_20240314_123000",
			MerchantID:      "M1",
			TransactionRefs: []string{" REF-1 ", "", "REF-2"},
			TotalAmount:     dec("150.00"),
			TotalFees:       dec("3.00"),
			TotalNetAmount:  dec("147.00"),
		}
	}

	settled, err := f.settlements.MarkSettled(ctx, req())
	require.NoError(t, err)
	assert.Equal(t, models.SettlementProcessed, settled.Status)
	assert.Equal(t, 2, settled.TransactionCount)
	assert.Equal(t, []string{"REF-1", "REF-2"}, []string(settled.TransactionRefs))
	assert.Equal(t, f.now, settled.ProcessedAt)

	archived, err := f.store.FindSettlement(ctx, settled.SettlementID)
	require.NoError(t, err)
	assert.True(t, archived.TotalNetAmount.Equal(dec("147.00")))

	_, err = f.settlements.MarkSettled(ctx, req())
	assert.ErrorIs(t, err, service.ErrSettlementAlreadyProcessed)
}

func TestMarkSettled_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *dto.MarkSettlement
	}{
		{name: "blank id", req: &dto.MarkSettlement{SettlementID: "  ", TransactionRefs: []string{"REF-1"}}},
		{name: "no refs", req: &dto.MarkSettlement{SettlementID: "S1"}},
		{name: "only blank refs", req: &dto.MarkSettlement{SettlementID: "S1", TransactionRefs: []string{" ", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.settlements.MarkSettled(context.Background(), tt.req)

			assert.ErrorIs(t, err, service.ErrInvalidSettlement)
			assert.Equal(t, service.KindInvalidInput, service.KindOf(err))
		})
	}
}
