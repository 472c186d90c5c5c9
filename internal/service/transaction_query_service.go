package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// TransactionReader is the read side the aggregator joins over.
type TransactionReader interface {
	FindEntriesByAccountAndType(ctx context.Context, account string, entryType models.EntryType, from, to time.Time) ([]models.LedgerEntry, error)
	FindIntentsByIDs(ctx context.Context, ids []string) ([]models.PaymentIntent, error)
	FindCommissionsByIntentIDs(ctx context.Context, ids []string) ([]models.TransactionCommission, error)
	FindRailTransfersByIntentIDs(ctx context.Context, ids []string) ([]models.RailTransfer, error)
}

// TransactionQueryService builds merchant reporting views from ledger credits joined with
// intents, commissions and rail transfers. It never writes.
type TransactionQueryService struct {
	Repo TransactionReader
	Now  Clock
}

func NewTransactionQueryService(repo TransactionReader) *TransactionQueryService {
	return &TransactionQueryService{
		Repo: repo,
		Now:  time.Now,
	}
}

// joinSet holds the records referenced by a window of merchant credits.
type joinSet struct {
	entries     []models.LedgerEntry
	intents     map[string]models.PaymentIntent
	commissions map[string]models.TransactionCommission
	transfers   map[string]models.RailTransfer
}

// GetMerchantTransactions lists the merchant's credits in [from, to). A non-empty status
// keeps only rows whose first rail transfer has exactly that status.
func (s *TransactionQueryService) GetMerchantTransactions(ctx context.Context, merchantID string, from, to time.Time, status string) (*models.MerchantTransactions, error) {
	set, err := s.load(ctx, merchantID, from, to)
	if err != nil {
		return nil, err
	}

	result := &models.MerchantTransactions{
		MerchantID:   merchantID,
		Transactions: make([]models.MerchantTransaction, 0, len(set.entries)),
		TotalAmount:  decimal.Zero,
	}
	for _, entry := range set.entries {
		transfer, hasTransfer := set.transfers[entry.PaymentIntentID]
		if status != "" && (!hasTransfer || string(transfer.Status) != status) {
			continue
		}

		row := set.row(entry)
		result.Transactions = append(result.Transactions, row)
		result.TotalAmount = result.TotalAmount.Add(row.Amount)
	}
	result.TotalCount = len(result.Transactions)

	return result, nil
}

// GetTodayTransactions is GetMerchantTransactions from the start of the local day until now.
func (s *TransactionQueryService) GetTodayTransactions(ctx context.Context, merchantID, status string) (*models.MerchantTransactions, error) {
	now := s.Now()
	return s.GetMerchantTransactions(ctx, merchantID, startOfDay(now), now, status)
}

// GetTransactionSummary reduces the merchant's credits in [from, to) to totals and a
// histogram of rail transfer statuses.
func (s *TransactionQueryService) GetTransactionSummary(ctx context.Context, merchantID string, from, to time.Time) (*models.TransactionSummary, error) {
	set, err := s.load(ctx, merchantID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &models.TransactionSummary{
		MerchantID:        merchantID,
		PeriodStart:       from,
		PeriodEnd:         to,
		TotalTransactions: len(set.entries),
		TotalAmount:       decimal.Zero,
		TotalCommission:   decimal.Zero,
		StatusBreakdown:   make(map[string]int64),
	}

	for _, intent := range set.intents {
		summary.TotalAmount = summary.TotalAmount.Add(intent.Amount)
	}
	for _, commission := range set.commissions {
		summary.TotalCommission = summary.TotalCommission.Add(commission.CommissionAmount)
	}
	summary.TotalNetAmount = summary.TotalAmount.Sub(summary.TotalCommission)

	for _, entry := range set.entries {
		status := models.TransferStatusUnknown
		if transfer, ok := set.transfers[entry.PaymentIntentID]; ok {
			status = string(transfer.Status)
		}
		summary.StatusBreakdown[status]++
	}

	return summary, nil
}

func (s *TransactionQueryService) load(ctx context.Context, merchantID string, from, to time.Time) (*joinSet, error) {
	entries, err := s.Repo.FindEntriesByAccountAndType(ctx, models.MerchantLedgerAccount(merchantID), models.EntryCredit, from, to)
	if err != nil {
		return nil, fmt.Errorf("error loading merchant credits: %w", err)
	}

	ids := distinctIntentIDs(entries)
	set := &joinSet{
		entries:     entries,
		intents:     make(map[string]models.PaymentIntent, len(ids)),
		commissions: make(map[string]models.TransactionCommission, len(ids)),
		transfers:   make(map[string]models.RailTransfer, len(ids)),
	}
	if len(ids) == 0 {
		return set, nil
	}

	intents, err := s.Repo.FindIntentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading payment intents: %w", err)
	}
	for _, intent := range intents {
		set.intents[intent.ID] = intent
	}

	commissions, err := s.Repo.FindCommissionsByIntentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading commissions: %w", err)
	}
	for _, commission := range commissions {
		set.commissions[commission.PaymentIntentID] = commission
	}

	transfers, err := s.Repo.FindRailTransfersByIntentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading rail transfers: %w", err)
	}
	for _, transfer := range transfers {
		if _, seen := set.transfers[transfer.PaymentIntentID]; !seen {
			set.transfers[transfer.PaymentIntentID] = transfer
		}
	}

	return set, nil
}

// row joins one credit. The merchant received the credit amount, which is the net.
func (j *joinSet) row(entry models.LedgerEntry) models.MerchantTransaction {
	row := models.MerchantTransaction{
		PaymentIntentID:  entry.PaymentIntentID,
		SessionID:        notAvailable,
		TransactionRef:   notAvailable,
		Amount:           entry.Amount,
		Currency:         string(models.CurrencyUSD),
		Status:           models.TransferStatusUnknown,
		CreatedAt:        entry.CreatedAt,
		CommissionAmount: decimal.Zero,
		NetAmount:        entry.Amount,
	}

	if intent, ok := j.intents[entry.PaymentIntentID]; ok {
		row.SessionID = intent.SessionID
		row.TransactionRef = intent.TransactionRef
		row.Amount = intent.Amount
		row.Currency = string(intent.Currency)
	}
	if commission, ok := j.commissions[entry.PaymentIntentID]; ok {
		row.CommissionAmount = commission.CommissionAmount
	}
	if transfer, ok := j.transfers[entry.PaymentIntentID]; ok {
		settled := transfer.SettlementDate
		row.Status = string(transfer.Status)
		row.CompletedAt = &settled
		row.SettlementDate = &settled
	}
	return row
}

func distinctIntentIDs(entries []models.LedgerEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.PaymentIntentID]; ok {
			continue
		}
		seen[entry.PaymentIntentID] = struct{}{}
		ids = append(ids, entry.PaymentIntentID)
	}
	return ids
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
