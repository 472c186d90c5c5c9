package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/memory"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/jeffleon2/draftea-paymentscore/internal/service/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixture wires every service to one in-memory store and a manual clock.
type fixture struct {
	now         time.Time
	store       *memory.Store
	publisher   *mocks.MockPublisher
	ledger      *service.LedgerService
	fraud       *service.FraudService
	payments    *service.PaymentService
	queries     *service.TransactionQueryService
	settlements *service.SettlementService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		now:       time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
		store:     memory.New(),
		publisher: mocks.NewMockPublisher(t),
	}
	clock := func() time.Time { return f.now }

	f.ledger = service.NewLedgerService(f.store)
	f.ledger.Now = clock
	f.fraud = service.NewFraudService(f.store, config.DefaultFraudRules())
	f.fraud.Now = clock
	f.payments = service.NewPaymentService(f.store, f.publisher, service.NewCommissionService(), f.fraud, f.ledger)
	f.payments.Now = clock
	f.queries = service.NewTransactionQueryService(f.store)
	f.queries.Now = clock
	f.settlements = service.NewSettlementService(f.queries, f.store, f.store)
	f.settlements.Now = clock

	f.store.SaveMerchant(models.MerchantAccount{
		MerchantID:        "M1",
		StoreName:         "Corner Coffee",
		Status:            models.MerchantActive,
		CommissionType:    models.CommissionPercentage,
		CommissionValue:   dec("0.02"),
		CallbackURL:       "http://merchant.test/callback",
		BankAccountNumber: "000111222",
		BankRoutingNumber: "021000021",
	})
	f.store.SaveMerchant(models.MerchantAccount{
		MerchantID:      "M2",
		Status:          models.MerchantActive,
		CommissionType:  models.CommissionFixed,
		CommissionValue: dec("5.00"),
	})
	f.store.SaveMerchant(models.MerchantAccount{
		MerchantID:      "M3",
		Status:          models.MerchantSuspended,
		CommissionType:  models.CommissionPercentage,
		CommissionValue: dec("0.02"),
	})

	return f
}

// allowPublishing accepts any event on any topic.
func (f *fixture) allowPublishing() {
	f.publisher.EXPECT().Publish(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// completePayment opens and completes a session paid from CUST_001.
func completePayment(t *testing.T, f *fixture, merchantID, amount string) *service.CompletionResult {
	t.Helper()
	ctx := context.Background()
	intent, err := f.payments.CreateIntent(ctx, initiateRequest(merchantID, amount, "REF-"+amount))
	require.NoError(t, err)
	result, err := f.payments.CompletePayment(ctx, &dto.CompletePayment{
		SessionID:   intent.SessionID,
		FromAccount: "CUST_001",
		Amount:      dec(amount),
	})
	require.NoError(t, err)
	return result
}
