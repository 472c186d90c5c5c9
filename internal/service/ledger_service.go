package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/metrics"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Posting is a single ledger movement to append.
type Posting struct {
	PaymentIntentID     string
	AccountNumber       string
	EntryType           models.EntryType
	Amount              decimal.Decimal
	Description         string
	SourceRoutingNumber string
}

// PaymentPosting describes the legs of one completed payment.
type PaymentPosting struct {
	PaymentIntentID     string
	TransactionRef      string
	MerchantID          string
	FromAccount         string
	GrossAmount         decimal.Decimal
	NetAmount           decimal.Decimal
	CommissionAmount    decimal.Decimal
	SourceRoutingNumber string
}

type Reconciliation struct {
	AccountNumber   string          `json:"account_number"`
	SummedBalance   decimal.Decimal `json:"summed_balance"`
	SnapshotBalance decimal.Decimal `json:"snapshot_balance"`
	EntryCount      int             `json:"entry_count"`
	Consistent      bool            `json:"consistent"`
}

// LedgerService owns every write to the ledger. Balances are always derived from the
// entries; the BalanceAfter column is only a snapshot.
type LedgerService struct {
	Store Store
	Now   Clock
}

func NewLedgerService(store Store) *LedgerService {
	return &LedgerService{
		Store: store,
		Now:   time.Now,
	}
}

// PostEntry appends a single entry in its own transaction.
func (s *LedgerService) PostEntry(ctx context.Context, posting Posting) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		if err := tx.LockAccounts(ctx, posting.AccountNumber); err != nil {
			return fmt.Errorf("error locking account %s: %w", posting.AccountNumber, err)
		}
		var err error
		entry, err = s.appendEntry(ctx, tx, posting)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// PostPayment writes the legs of a completed payment through repo, which must belong to
// the caller's transaction: a DEBIT of the gross amount on the payer, a CREDIT of the net
// amount on the merchant and, only when the commission is positive, a CREDIT of the
// commission on SYSTEM_COMMISSION.
func (s *LedgerService) PostPayment(ctx context.Context, repo LedgerRepo, p PaymentPosting) ([]models.LedgerEntry, error) {
	merchantAccount := models.MerchantLedgerAccount(p.MerchantID)
	postings := []Posting{
		{
			PaymentIntentID:     p.PaymentIntentID,
			AccountNumber:       p.FromAccount,
			EntryType:           models.EntryDebit,
			Amount:              p.GrossAmount,
			Description:         fmt.Sprintf("Payment to merchant %s - %s", p.MerchantID, p.TransactionRef),
			SourceRoutingNumber: p.SourceRoutingNumber,
		},
		{
			PaymentIntentID:     p.PaymentIntentID,
			AccountNumber:       merchantAccount,
			EntryType:           models.EntryCredit,
			Amount:              p.NetAmount,
			Description:         fmt.Sprintf("Payment received from customer - Ref: %s", p.TransactionRef),
			SourceRoutingNumber: p.SourceRoutingNumber,
		},
	}
	if p.CommissionAmount.IsPositive() {
		postings = append(postings, Posting{
			PaymentIntentID:     p.PaymentIntentID,
			AccountNumber:       models.SystemCommissionAccount,
			EntryType:           models.EntryCredit,
			Amount:              p.CommissionAmount,
			Description:         fmt.Sprintf("Commission from merchant %s - Ref: %s", p.MerchantID, p.TransactionRef),
			SourceRoutingNumber: p.SourceRoutingNumber,
		})
	}

	if err := repo.LockAccounts(ctx, lockOrder(postings)...); err != nil {
		return nil, fmt.Errorf("error locking ledger accounts: %w", err)
	}

	entries := make([]models.LedgerEntry, 0, len(postings))
	for _, posting := range postings {
		if posting.EntryType == models.EntryCredit && posting.Amount.IsZero() {
			// a fully commissioned payment leaves nothing for the merchant
			continue
		}
		entry, err := s.appendEntry(ctx, repo, posting)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// GetBalance recomputes Σcredits − Σdebits for the account.
func (s *LedgerService) GetBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	return s.balance(ctx, s.Store, account)
}

// GetStatement returns all entries of the account, newest first.
func (s *LedgerService) GetStatement(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	entries, err := s.Store.FindEntriesByAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error loading statement for %s: %w", account, err)
	}
	return entries, nil
}

// Reconcile compares the latest BalanceAfter snapshot with the summed balance.
func (s *LedgerService) Reconcile(ctx context.Context, account string) (*Reconciliation, error) {
	result := &Reconciliation{AccountNumber: account}
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		summed, err := s.balance(ctx, tx, account)
		if err != nil {
			return err
		}
		entries, err := tx.FindEntriesByAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("error loading entries for %s: %w", account, err)
		}

		result.SummedBalance = summed
		result.EntryCount = len(entries)
		if len(entries) > 0 {
			result.SnapshotBalance = entries[0].BalanceAfter
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Consistent = result.SummedBalance.Equal(result.SnapshotBalance)
	if !result.Consistent {
		logrus.WithFields(logrus.Fields{
			"account":  account,
			"summed":   result.SummedBalance.String(),
			"snapshot": result.SnapshotBalance.String(),
		}).Warn("ledger snapshot differs from summed balance")
	}
	return result, nil
}

// appendEntry expects the account lock to be held by the enclosing transaction.
func (s *LedgerService) appendEntry(ctx context.Context, repo LedgerRepo, p Posting) (*models.LedgerEntry, error) {
	if strings.TrimSpace(p.AccountNumber) == "" || !p.EntryType.IsValid() || !p.Amount.IsPositive() {
		return nil, ErrInvalidLedgerEntry
	}

	current, err := s.balance(ctx, repo, p.AccountNumber)
	if err != nil {
		return nil, err
	}

	amount := p.Amount.Round(moneyScale)
	newBalance := current.Add(amount)
	if p.EntryType == models.EntryDebit {
		newBalance = current.Sub(amount)
	}

	entry := &models.LedgerEntry{
		PaymentIntentID:     p.PaymentIntentID,
		AccountNumber:       p.AccountNumber,
		EntryType:           p.EntryType,
		Amount:              amount,
		BalanceAfter:        newBalance,
		Description:         p.Description,
		ReferenceID:         models.LedgerReference(p.PaymentIntentID),
		SourceRoutingNumber: p.SourceRoutingNumber,
		CreatedAt:           s.Now(),
	}
	if err := repo.CreateLedgerEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("error appending ledger entry for %s: %w", p.AccountNumber, err)
	}

	metrics.LedgerEntriesTotal.WithLabelValues(string(p.EntryType)).Inc()
	logrus.WithFields(logrus.Fields{
		"account":       p.AccountNumber,
		"entry_type":    p.EntryType,
		"amount":        amount.StringFixed(moneyScale),
		"balance_after": newBalance.StringFixed(moneyScale),
	}).Debug("ledger entry posted")

	return entry, nil
}

func (s *LedgerService) balance(ctx context.Context, repo LedgerRepo, account string) (decimal.Decimal, error) {
	credits, debits, err := repo.SumAccount(ctx, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error summing account %s: %w", account, err)
	}
	return credits.Sub(debits).Round(moneyScale), nil
}

// lockOrder returns the distinct accounts sorted, so concurrent posts lock in the same order.
func lockOrder(postings []Posting) []string {
	seen := make(map[string]struct{}, len(postings))
	accounts := make([]string, 0, len(postings))
	for _, p := range postings {
		if _, ok := seen[p.AccountNumber]; ok {
			continue
		}
		seen[p.AccountNumber] = struct{}{}
		accounts = append(accounts, p.AccountNumber)
	}
	sort.Strings(accounts)
	return accounts
}
