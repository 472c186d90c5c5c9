package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EntryType string

const (
	EntryCredit EntryType = "CREDIT"
	EntryDebit  EntryType = "DEBIT"

	LedgerReferencePrefix = "TXN_"
)

// LedgerEntry is append-only. BalanceAfter is a snapshot taken at insert time.
type LedgerEntry struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentIntentID     string          `json:"payment_intent_id" gorm:"index;not null"`
	AccountNumber       string          `json:"account_number" gorm:"index:idx_ledger_account_type_created,priority:1;not null"`
	EntryType           EntryType       `json:"entry_type" gorm:"index:idx_ledger_account_type_created,priority:2;type:varchar(10);not null"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	BalanceAfter        decimal.Decimal `json:"balance_after" gorm:"type:numeric(15,2);not null"`
	Description         string          `json:"description"`
	ReferenceID         string          `json:"reference_id" gorm:"index"`
	SourceRoutingNumber string          `json:"source_routing_number,omitempty"`
	CreatedAt           time.Time       `json:"created_at" gorm:"index:idx_ledger_account_type_created,priority:3"`
	Seq                 int64           `json:"-" gorm:"autoIncrement;index"`
}

func (l *LedgerEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	return
}

func (t EntryType) IsValid() bool {
	return t == EntryCredit || t == EntryDebit
}

// Signed returns the amount as it moves the account balance.
func (l *LedgerEntry) Signed() decimal.Decimal {
	if l.EntryType == EntryDebit {
		return l.Amount.Neg()
	}
	return l.Amount
}

func LedgerReference(paymentIntentID string) string {
	return LedgerReferencePrefix + paymentIntentID
}
