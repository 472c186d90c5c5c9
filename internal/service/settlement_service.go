package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SettlementArchive keeps settlements marked as processed. SaveSettlement returns
// ErrDuplicate when the settlement id was already stored.
type SettlementArchive interface {
	SaveSettlement(ctx context.Context, settlement *models.MerchantSettlement) error
	FindSettlement(ctx context.Context, settlementID string) (*models.MerchantSettlement, error)
}

type MerchantTransactionsReader interface {
	GetMerchantTransactions(ctx context.Context, merchantID string, from, to time.Time, status string) (*models.MerchantTransactions, error)
}

// SettlementService assembles settlement batches from acknowledged merchant transactions.
type SettlementService struct {
	Transactions MerchantTransactionsReader
	Merchants    MerchantDirectory
	Archive      SettlementArchive
	Now          Clock
}

func NewSettlementService(transactions MerchantTransactionsReader, merchants MerchantDirectory, archive SettlementArchive) *SettlementService {
	return &SettlementService{
		Transactions: transactions,
		Merchants:    merchants,
		Archive:      archive,
		Now:          time.Now,
	}
}

// PendingSettlement batches acknowledged transactions between from and to. A nil from
// means the start of the current day and a nil to means now.
func (s *SettlementService) PendingSettlement(ctx context.Context, merchantID string, from, to *time.Time) (*models.SettlementBatch, error) {
	now := s.Now()
	start, end := startOfDay(now), now
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	return s.BatchSettlement(ctx, merchantID, start, end)
}

func (s *SettlementService) TodayPendingSettlement(ctx context.Context, merchantID string) (*models.SettlementBatch, error) {
	return s.PendingSettlement(ctx, merchantID, nil, nil)
}

func (s *SettlementService) BatchSettlement(ctx context.Context, merchantID string, from, to time.Time) (*models.SettlementBatch, error) {
	merchant, err := s.Merchants.FindMerchant(ctx, merchantID)
	if err != nil {
		return nil, notFoundAs(err, ErrMerchantNotFound)
	}

	txs, err := s.Transactions.GetMerchantTransactions(ctx, merchantID, from, to, string(models.TransferAcknowledged))
	if err != nil {
		return nil, err
	}

	return BuildSettlementBatch(merchant, txs, s.Now()), nil
}

// BuildSettlementBatch sums a joined transaction view into a PENDING_SETTLEMENT batch.
// The period spans the earliest and latest transaction; an empty view spans now.
func BuildSettlementBatch(merchant *models.MerchantAccount, txs *models.MerchantTransactions, now time.Time) *models.SettlementBatch {
	batch := &models.SettlementBatch{
		SettlementID:      models.NewSettlementID(merchant.MerchantID, now),
		MerchantID:        merchant.MerchantID,
		BankAccountNumber: merchant.BankAccountNumber,
		BankRoutingNumber: merchant.BankRoutingNumber,
		GeneratedAt:       now,
		PeriodFrom:        now,
		PeriodTo:          now,
		Transactions:      make([]models.SettlementTransaction, 0, len(txs.Transactions)),
		TotalAmount:       decimal.Zero,
		TotalFees:         decimal.Zero,
		TotalNetAmount:    decimal.Zero,
		Status:            models.SettlementPending,
	}

	for i, tx := range txs.Transactions {
		if i == 0 || tx.CreatedAt.Before(batch.PeriodFrom) {
			batch.PeriodFrom = tx.CreatedAt
		}
		if i == 0 || tx.CreatedAt.After(batch.PeriodTo) {
			batch.PeriodTo = tx.CreatedAt
		}

		batch.Transactions = append(batch.Transactions, models.SettlementTransaction{
			TransactionRef: tx.TransactionRef,
			SessionID:      tx.SessionID,
			Amount:         tx.Amount,
			Fees:           tx.CommissionAmount,
			NetAmount:      tx.NetAmount,
			Currency:       tx.Currency,
			Status:         tx.Status,
			CreatedAt:      tx.CreatedAt,
			CompletedAt:    tx.CompletedAt,
			SettlementDate: tx.SettlementDate,
		})
		batch.TotalAmount = batch.TotalAmount.Add(tx.Amount)
		batch.TotalFees = batch.TotalFees.Add(tx.CommissionAmount)
		batch.TotalNetAmount = batch.TotalNetAmount.Add(tx.NetAmount)
	}
	batch.TransactionCount = len(batch.Transactions)

	return batch
}

// MarkSettled archives a processed settlement. Each settlement id is accepted once.
func (s *SettlementService) MarkSettled(ctx context.Context, req *dto.MarkSettlement) (*models.MerchantSettlement, error) {
	req.Sanitize()
	if req.SettlementID == "" || len(req.TransactionRefs) == 0 {
		return nil, ErrInvalidSettlement
	}

	settlement := &models.MerchantSettlement{
		SettlementID:     req.SettlementID,
		MerchantID:       req.MerchantID,
		TransactionRefs:  req.TransactionRefs,
		TransactionCount: len(req.TransactionRefs),
		TotalAmount:      req.TotalAmount,
		TotalFees:        req.TotalFees,
		TotalNetAmount:   req.TotalNetAmount,
		Status:           models.SettlementProcessed,
		ProcessedAt:      s.Now(),
	}

	if err := s.Archive.SaveSettlement(ctx, settlement); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrSettlementAlreadyProcessed
		}
		return nil, fmt.Errorf("error archiving settlement: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"settlement_id": settlement.SettlementID,
		"transactions":  settlement.TransactionCount,
	}).Info("settlement marked as processed")

	return settlement, nil
}
