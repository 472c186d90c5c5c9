package service

import (
	"context"
	"errors"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
)

// Store implementations translate their own not-found and unique-violation errors into these.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

// MerchantDirectory reads merchant accounts. FindActiveMerchant returns ErrRecordNotFound
// for merchants that exist but are not ACTIVE.
type MerchantDirectory interface {
	FindActiveMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error)
	FindMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error)
}

type IntentRepo interface {
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	FindIntentBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	FindIntentByTransactionRef(ctx context.Context, transactionRef string) (*models.PaymentIntent, error)
	FindIntentsByIDs(ctx context.Context, ids []string) ([]models.PaymentIntent, error)
	// CompareAndSetStatus moves the intent from one status to another only if it is still in
	// from. A non-nil amount overwrites the intent amount in the same update.
	CompareAndSetStatus(ctx context.Context, sessionID string, from, to models.PaymentStatus, amount *decimal.Decimal, at time.Time) (bool, error)
	CountIntentsSince(ctx context.Context, merchantID string, since time.Time) (int64, error)
	FindSimilarIntentsSince(ctx context.Context, merchantID string, amount decimal.Decimal, status models.PaymentStatus, since time.Time) ([]models.PaymentIntent, error)
}

type FraudCheckRepo interface {
	CreateFraudCheck(ctx context.Context, check *models.FraudCheck) error
	FindFraudCheckByIntentID(ctx context.Context, paymentIntentID string) (*models.FraudCheck, error)
}

type CommissionRepo interface {
	CreateCommission(ctx context.Context, commission *models.TransactionCommission) error
	FindCommissionsByIntentIDs(ctx context.Context, ids []string) ([]models.TransactionCommission, error)
}

type TransferRepo interface {
	CreateRailTransfer(ctx context.Context, transfer *models.RailTransfer) error
	// FindRailTransfersByIntentIDs returns transfers oldest first.
	FindRailTransfersByIntentIDs(ctx context.Context, ids []string) ([]models.RailTransfer, error)
}

type LedgerRepo interface {
	// LockAccounts serializes balance computation per account until the enclosing
	// transaction ends.
	LockAccounts(ctx context.Context, accounts ...string) error
	SumAccount(ctx context.Context, account string) (credits, debits decimal.Decimal, err error)
	CreateLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error
	// FindEntriesByAccount returns entries newest first.
	FindEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error)
	// FindEntriesByAccountAndType returns entries in [from, to), oldest first.
	FindEntriesByAccountAndType(ctx context.Context, account string, entryType models.EntryType, from, to time.Time) ([]models.LedgerEntry, error)
	FindEntriesByIntentID(ctx context.Context, paymentIntentID string) ([]models.LedgerEntry, error)
}

type EventRepo interface {
	CreateEvent(ctx context.Context, event *models.PaymentEvent) error
	// FindEventsByIntentID returns the audit trail oldest first.
	FindEventsByIntentID(ctx context.Context, paymentIntentID string) ([]models.PaymentEvent, error)
}

// Store is the persistence contract of the engine. WithinTx runs fn in one atomic unit of
// work; fn's Store sees its own writes and nothing lands if fn returns an error.
type Store interface {
	MerchantDirectory
	IntentRepo
	FraudCheckRepo
	CommissionRepo
	TransferRepo
	LedgerRepo
	EventRepo
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Publisher defines the interface for publishing events to Kafka topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, message interface{}) error
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time
