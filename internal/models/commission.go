package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionCommission struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentIntentID   string          `json:"payment_intent_id" gorm:"uniqueIndex;not null"`
	TransactionAmount decimal.Decimal `json:"transaction_amount" gorm:"type:numeric(15,2);not null"`
	CommissionAmount  decimal.Decimal `json:"commission_amount" gorm:"type:numeric(15,2);not null"`
	NetAmount         decimal.Decimal `json:"net_amount" gorm:"type:numeric(15,2);not null"`
	CommissionRate    decimal.Decimal `json:"commission_rate" gorm:"type:numeric(10,6)"`
	CommissionType    CommissionType  `json:"commission_type" gorm:"type:varchar(20)"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (c *TransactionCommission) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	return
}

// CommissionCalculation is the split of one transaction amount.
type CommissionCalculation struct {
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionType   CommissionType  `json:"commission_type"`
}

func (c CommissionCalculation) ToEntity(paymentIntentID string, amount decimal.Decimal) *TransactionCommission {
	return &TransactionCommission{
		PaymentIntentID:   paymentIntentID,
		TransactionAmount: amount,
		CommissionAmount:  c.CommissionAmount,
		NetAmount:         c.NetAmount,
		CommissionRate:    c.CommissionRate,
		CommissionType:    c.CommissionType,
	}
}
