package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransferStatus string

const (
	TransferAcknowledged TransferStatus = "ACKNOWLEDGED"
	TransferPending      TransferStatus = "PENDING"
	TransferFailed       TransferStatus = "FAILED"

	TransferStatusUnknown = "UNKNOWN"
)

type RailTransfer struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentIntentID string          `json:"payment_intent_id" gorm:"index;not null"`
	FromAccount     string          `json:"from_account"`
	ToAccount       string          `json:"to_account"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	Status          TransferStatus  `json:"status" gorm:"type:varchar(20);not null"`
	SettlementDate  time.Time       `json:"settlement_date"`
	ResponsePayload datatypes.JSON  `json:"response_payload"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (r *RailTransfer) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	return
}
