package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	SettlementPending   = "PENDING_SETTLEMENT"
	SettlementProcessed = "SETTLED"

	settlementIDLayout = "20060102_150405"
)

// MerchantTransaction is one merchant credit joined with its intent, commission and transfer.
type MerchantTransaction struct {
	PaymentIntentID  string          `json:"payment_intent_id"`
	SessionID        string          `json:"session_id"`
	TransactionRef   string          `json:"transaction_ref"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	SettlementDate   *time.Time      `json:"settlement_date,omitempty"`
}

type MerchantTransactions struct {
	MerchantID   string                `json:"merchant_id"`
	Transactions []MerchantTransaction `json:"transactions"`
	TotalCount   int                   `json:"total_count"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
}

type TransactionSummary struct {
	MerchantID        string           `json:"merchant_id"`
	PeriodStart       time.Time        `json:"period_start"`
	PeriodEnd         time.Time        `json:"period_end"`
	TotalTransactions int              `json:"total_transactions"`
	TotalAmount       decimal.Decimal  `json:"total_amount"`
	TotalCommission   decimal.Decimal  `json:"total_commission"`
	TotalNetAmount    decimal.Decimal  `json:"total_net_amount"`
	StatusBreakdown   map[string]int64 `json:"status_breakdown"`
}

type SettlementTransaction struct {
	TransactionRef string          `json:"transaction_ref"`
	SessionID      string          `json:"session_id"`
	Amount         decimal.Decimal `json:"amount"`
	Fees           decimal.Decimal `json:"fees"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	SettlementDate *time.Time      `json:"settlement_date,omitempty"`
}

type SettlementBatch struct {
	SettlementID      string                  `json:"settlement_id"`
	MerchantID        string                  `json:"merchant_id"`
	BankAccountNumber string                  `json:"bank_account_number"`
	BankRoutingNumber string                  `json:"bank_routing_number"`
	GeneratedAt       time.Time               `json:"generated_at"`
	PeriodFrom        time.Time               `json:"period_from"`
	PeriodTo          time.Time               `json:"period_to"`
	Transactions      []SettlementTransaction `json:"transactions"`
	TransactionCount  int                     `json:"transaction_count"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	TotalFees         decimal.Decimal         `json:"total_fees"`
	TotalNetAmount    decimal.Decimal         `json:"total_net_amount"`
	Status            string                  `json:"status"`
}

// MerchantSettlement is the archived record of a batch marked as processed.
type MerchantSettlement struct {
	SettlementID     string                      `json:"settlement_id" gorm:"primaryKey;type:varchar(100)"`
	MerchantID       string                      `json:"merchant_id" gorm:"index"`
	TransactionRefs  datatypes.JSONSlice[string] `json:"transaction_refs"`
	TransactionCount int                         `json:"transaction_count"`
	TotalAmount      decimal.Decimal             `json:"total_amount" gorm:"type:numeric(15,2)"`
	TotalFees        decimal.Decimal             `json:"total_fees" gorm:"type:numeric(15,2)"`
	TotalNetAmount   decimal.Decimal             `json:"total_net_amount" gorm:"type:numeric(15,2)"`
	Status           string                      `json:"status" gorm:"type:varchar(20)"`
	ProcessedAt      time.Time                   `json:"processed_at"`
}

func NewSettlementID(merchantID string, at time.Time) string {
	return fmt.Sprintf("SETTLE_%s_%s", merchantID, at.Format(settlementIDLayout))
}
