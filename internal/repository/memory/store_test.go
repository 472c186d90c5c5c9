package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/memory"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func pendingIntent(session string) *models.PaymentIntent {
	return &models.PaymentIntent{
		MerchantID: "M1",
		SessionID:  session,
		Amount:     decimal.RequireFromString("10.00"),
		Currency:   models.CurrencyUSD,
		Status:     models.StatusPending,
		CreatedAt:  t0,
	}
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx service.Store) error {
		return tx.CreateIntent(ctx, pendingIntent("SESS_A"))
	})
	require.NoError(t, err)

	intent, err := store.FindIntentBySessionID(ctx, "SESS_A")
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ID)
	assert.Equal(t, t0, intent.CreatedAt)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx service.Store) error {
		require.NoError(t, tx.CreateIntent(ctx, pendingIntent("SESS_A")))
		require.NoError(t, tx.CreateLedgerEntry(ctx, &models.LedgerEntry{
			AccountNumber: "ACC", EntryType: models.EntryCredit, Amount: decimal.NewFromInt(1),
		}))
		_, err := tx.FindIntentBySessionID(ctx, "SESS_A")
		require.NoError(t, err)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = store.FindIntentBySessionID(ctx, "SESS_A")
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
	credits, debits, err := store.SumAccount(ctx, "ACC")
	require.NoError(t, err)
	assert.True(t, credits.IsZero())
	assert.True(t, debits.IsZero())
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx service.Store) error {
		if err := tx.WithinTx(ctx, func(inner service.Store) error {
			return inner.CreateIntent(ctx, pendingIntent("SESS_A"))
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})

	assert.Error(t, err)
	_, err = store.FindIntentBySessionID(ctx, "SESS_A")
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestCreateIntent_DuplicateSession(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateIntent(ctx, pendingIntent("SESS_A")))

	err := store.CreateIntent(ctx, pendingIntent("SESS_A"))

	assert.ErrorIs(t, err, service.ErrDuplicate)
}

func TestCompareAndSetStatus(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateIntent(ctx, pendingIntent("SESS_A")))
	amount := decimal.RequireFromString("12.50")

	ok, err := store.CompareAndSetStatus(ctx, "SESS_A", models.StatusPending, models.StatusCompleted, &amount, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.CompareAndSetStatus(ctx, "SESS_A", models.StatusPending, models.StatusCancelled, nil, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	intent, err := store.FindIntentBySessionID(ctx, "SESS_A")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, intent.Status)
	assert.True(t, intent.Amount.Equal(amount))
	assert.Equal(t, t0.Add(time.Minute), intent.UpdatedAt)

	ok, err = store.CompareAndSetStatus(ctx, "SESS_MISSING", models.StatusPending, models.StatusCancelled, nil, t0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindActiveMerchant_SkipsInactive(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	store.SaveMerchant(models.MerchantAccount{MerchantID: "M1", Status: models.MerchantActive})
	store.SaveMerchant(models.MerchantAccount{MerchantID: "M3", Status: models.MerchantSuspended})

	_, err := store.FindActiveMerchant(ctx, "M1")
	assert.NoError(t, err)
	_, err = store.FindActiveMerchant(ctx, "M3")
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
	merchant, err := store.FindMerchant(ctx, "M3")
	require.NoError(t, err)
	assert.Equal(t, models.MerchantSuspended, merchant.Status)
}

func TestLedgerEntryOrdering(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, store.CreateLedgerEntry(ctx, &models.LedgerEntry{
			PaymentIntentID: id,
			AccountNumber:   "ACC",
			EntryType:       models.EntryCredit,
			Amount:          decimal.NewFromInt(1),
			CreatedAt:       t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	newest, err := store.FindEntriesByAccount(ctx, "ACC")
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "p3", newest[0].PaymentIntentID)

	window, err := store.FindEntriesByAccountAndType(ctx, "ACC", models.EntryCredit, t0, t0.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "p1", window[0].PaymentIntentID)
	assert.Equal(t, "p2", window[1].PaymentIntentID)

	debits, err := store.FindEntriesByAccountAndType(ctx, "ACC", models.EntryDebit, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, debits)
}

func TestFailOn(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	boom := errors.New("disk full")
	store.FailOn("CreateEvent", boom)

	err := store.CreateEvent(ctx, &models.PaymentEvent{PaymentIntentID: "p1", EventType: models.EventCreated})

	assert.ErrorIs(t, err, boom)
	events, err := store.FindEventsByIntentID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSaveSettlement_Once(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	settlement := &models.MerchantSettlement{SettlementID: "S1", MerchantID: "M1", Status: models.SettlementProcessed}

	require.NoError(t, store.SaveSettlement(ctx, settlement))
	assert.ErrorIs(t, store.SaveSettlement(ctx, settlement), service.ErrDuplicate)

	found, err := store.FindSettlement(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, "M1", found.MerchantID)
	_, err = store.FindSettlement(ctx, "S2")
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestSameInstantKeepsInsertOrder(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, store.CreateLedgerEntry(ctx, &models.LedgerEntry{
			PaymentIntentID: "p1",
			AccountNumber:   "ACC",
			EntryType:       models.EntryCredit,
			Amount:          decimal.NewFromInt(1),
			Description:     id,
			CreatedAt:       t0,
		}))
	}
	for _, eventType := range []string{models.EventCreated, models.EventCompleted, models.EventCommissionCalculated} {
		require.NoError(t, store.CreateEvent(ctx, &models.PaymentEvent{PaymentIntentID: "p1", EventType: eventType, CreatedAt: t0}))
	}

	newest, err := store.FindEntriesByAccount(ctx, "ACC")
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{newest[0].Description, newest[1].Description, newest[2].Description})

	byIntent, err := store.FindEntriesByIntentID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, byIntent, 3)
	assert.Equal(t, "e1", byIntent[0].Description)

	events, err := store.FindEventsByIntentID(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventCreated, events[0].EventType)
	assert.Equal(t, models.EventCompleted, events[1].EventType)
	assert.Equal(t, models.EventCommissionCalculated, events[2].EventType)
	assert.Less(t, events[0].Seq, events[1].Seq)
}
