package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MerchantStatus string
type CommissionType string

const (
	MerchantActive    MerchantStatus = "ACTIVE"
	MerchantInactive  MerchantStatus = "INACTIVE"
	MerchantSuspended MerchantStatus = "SUSPENDED"

	CommissionPercentage CommissionType = "PERCENTAGE"
	CommissionFixed      CommissionType = "FIXED"

	MerchantAccountPrefix   = "MERCHANT_"
	SystemCommissionAccount = "SYSTEM_COMMISSION"
)

// MerchantAccount is owned by the merchant directory. This service only reads it.
type MerchantAccount struct {
	MerchantID        string              `json:"merchant_id" gorm:"primaryKey;type:varchar(50)"`
	StoreName         string              `json:"store_name"`
	Status            MerchantStatus      `json:"status" gorm:"type:varchar(20);not null"`
	CommissionType    CommissionType      `json:"commission_type" gorm:"type:varchar(20);not null"`
	CommissionValue   decimal.Decimal     `json:"commission_value" gorm:"type:numeric(10,6);not null"`
	MinCommission     decimal.NullDecimal `json:"min_commission" gorm:"type:numeric(15,2)"`
	MaxCommission     decimal.NullDecimal `json:"max_commission" gorm:"type:numeric(15,2)"`
	CallbackURL       string              `json:"callback_url"`
	BankAccountNumber string              `json:"bank_account_number"`
	BankRoutingNumber string              `json:"bank_routing_number"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (m *MerchantAccount) IsActive() bool {
	return m.Status == MerchantActive
}

// LedgerAccount is the ledger account credited with the merchant's net amounts.
func (m *MerchantAccount) LedgerAccount() string {
	return MerchantLedgerAccount(m.MerchantID)
}

func MerchantLedgerAccount(merchantID string) string {
	return MerchantAccountPrefix + merchantID
}
