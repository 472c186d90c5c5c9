package posgrest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// Rows written in one transaction share created_at; seq keeps their insert order.
const (
	newestFirst = "created_at DESC, seq DESC"
	oldestFirst = "created_at ASC, seq ASC"
)

// Store implements service.Store on PostgreSQL through gorm.
type Store struct {
	db          *gorm.DB
	merchants   *repository[models.MerchantAccount]
	intents     *repository[models.PaymentIntent]
	fraudChecks *repository[models.FraudCheck]
	commissions *repository[models.TransactionCommission]
	transfers   *repository[models.RailTransfer]
	entries     *repository[models.LedgerEntry]
	events      *repository[models.PaymentEvent]
	settlements *repository[models.MerchantSettlement]
}

var _ service.Store = (*Store)(nil)
var _ service.SettlementArchive = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		merchants:   New[models.MerchantAccount](db),
		intents:     New[models.PaymentIntent](db),
		fraudChecks: New[models.FraudCheck](db),
		commissions: New[models.TransactionCommission](db),
		transfers:   New[models.RailTransfer](db),
		entries:     New[models.LedgerEntry](db),
		events:      New[models.PaymentEvent](db),
		settlements: New[models.MerchantSettlement](db),
	}
}

// AutoMigrate creates or updates every table the engine uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MerchantAccount{},
		&models.PaymentIntent{},
		&models.FraudCheck{},
		&models.TransactionCommission{},
		&models.RailTransfer{},
		&models.LedgerEntry{},
		&models.PaymentEvent{},
		&models.MerchantSettlement{},
	)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *Store) FindActiveMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	return s.merchants.First(ctx, "merchant_id = ? AND status = ?", merchantID, models.MerchantActive)
}

func (s *Store) FindMerchant(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	return s.merchants.First(ctx, "merchant_id = ?", merchantID)
}

func (s *Store) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	return s.intents.Create(ctx, intent)
}

func (s *Store) FindIntentBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	return s.intents.First(ctx, "session_id = ?", sessionID)
}

func (s *Store) FindIntentByTransactionRef(ctx context.Context, transactionRef string) (*models.PaymentIntent, error) {
	return s.intents.First(ctx, "transaction_ref = ?", transactionRef)
}

func (s *Store) FindIntentsByIDs(ctx context.Context, ids []string) ([]models.PaymentIntent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.intents.Find(ctx, "", "id IN ?", ids)
}

func (s *Store) CompareAndSetStatus(ctx context.Context, sessionID string, from, to models.PaymentStatus, amount *decimal.Decimal, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if amount != nil {
		updates["amount"] = *amount
	}

	result := s.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("session_id = ? AND status = ?", sessionID, from).
		Updates(updates)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) CountIntentsSince(ctx context.Context, merchantID string, since time.Time) (int64, error) {
	return s.intents.Count(ctx, "merchant_id = ? AND created_at >= ?", merchantID, since)
}

func (s *Store) FindSimilarIntentsSince(ctx context.Context, merchantID string, amount decimal.Decimal, status models.PaymentStatus, since time.Time) ([]models.PaymentIntent, error) {
	return s.intents.Find(ctx, "", "merchant_id = ? AND amount = ? AND status = ? AND created_at >= ?",
		merchantID, amount, status, since)
}

func (s *Store) CreateFraudCheck(ctx context.Context, check *models.FraudCheck) error {
	return s.fraudChecks.Create(ctx, check)
}

func (s *Store) FindFraudCheckByIntentID(ctx context.Context, paymentIntentID string) (*models.FraudCheck, error) {
	return s.fraudChecks.First(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (s *Store) CreateCommission(ctx context.Context, commission *models.TransactionCommission) error {
	return s.commissions.Create(ctx, commission)
}

func (s *Store) FindCommissionsByIntentIDs(ctx context.Context, ids []string) ([]models.TransactionCommission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.commissions.Find(ctx, "", "payment_intent_id IN ?", ids)
}

func (s *Store) CreateRailTransfer(ctx context.Context, transfer *models.RailTransfer) error {
	return s.transfers.Create(ctx, transfer)
}

func (s *Store) FindRailTransfersByIntentIDs(ctx context.Context, ids []string) ([]models.RailTransfer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.transfers.Find(ctx, "created_at ASC, id ASC", "payment_intent_id IN ?", ids)
}

// LockAccounts takes a transaction scoped advisory lock per account. Other dialects rely
// on their own transaction isolation.
func (s *Store) LockAccounts(ctx context.Context, accounts ...string) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, account := range accounts {
		if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", account).Error; err != nil {
			return err
		}
	}
	return nil
}

type accountSums struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

func (s *Store) SumAccount(ctx context.Context, account string) (decimal.Decimal, decimal.Decimal, error) {
	var sums accountSums
	err := s.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(
			"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) AS credits, "+
				"COALESCE(SUM(CASE WHEN entry_type = ? THEN amount ELSE 0 END), 0) AS debits",
			models.EntryCredit, models.EntryDebit).
		Where("account_number = ?", account).
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, translateError(err)
	}
	return sums.Credits, sums.Debits, nil
}

func (s *Store) CreateLedgerEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return s.entries.Create(ctx, entry)
}

func (s *Store) FindEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	return s.entries.Find(ctx, newestFirst, "account_number = ?", account)
}

func (s *Store) FindEntriesByAccountAndType(ctx context.Context, account string, entryType models.EntryType, from, to time.Time) ([]models.LedgerEntry, error) {
	return s.entries.Find(ctx, oldestFirst,
		"account_number = ? AND entry_type = ? AND created_at >= ? AND created_at < ?",
		account, entryType, from, to)
}

func (s *Store) FindEntriesByIntentID(ctx context.Context, paymentIntentID string) ([]models.LedgerEntry, error) {
	return s.entries.Find(ctx, oldestFirst, "payment_intent_id = ?", paymentIntentID)
}

func (s *Store) CreateEvent(ctx context.Context, event *models.PaymentEvent) error {
	return s.events.Create(ctx, event)
}

func (s *Store) FindEventsByIntentID(ctx context.Context, paymentIntentID string) ([]models.PaymentEvent, error) {
	return s.events.Find(ctx, oldestFirst, "payment_intent_id = ?", paymentIntentID)
}

func (s *Store) SaveSettlement(ctx context.Context, settlement *models.MerchantSettlement) error {
	return s.settlements.Create(ctx, settlement)
}

func (s *Store) FindSettlement(ctx context.Context, settlementID string) (*models.MerchantSettlement, error) {
	return s.settlements.First(ctx, "settlement_id = ?", settlementID)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrRecordNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return service.ErrDuplicate
	}
	return err
}
