package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"

	RuleHighAmount        = "HIGH_AMOUNT_TRANSACTION"
	RuleMediumAmount      = "MEDIUM_AMOUNT_TRANSACTION"
	RuleHighVelocity      = "HIGH_TRANSACTION_VELOCITY"
	RuleMediumVelocity    = "MEDIUM_TRANSACTION_VELOCITY"
	RuleUnusualHours      = "UNUSUAL_TRANSACTION_HOURS"
	RulePossibleDuplicate = "POSSIBLE_DUPLICATE_TRANSACTION"
)

type FraudCheck struct {
	ID              string                      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentIntentID string                      `json:"payment_intent_id" gorm:"uniqueIndex;not null"`
	RiskScore       int                         `json:"risk_score"`
	RiskLevel       RiskLevel                   `json:"risk_level" gorm:"type:varchar(10)"`
	RulesTriggered  datatypes.JSONSlice[string] `json:"rules_triggered"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func (f *FraudCheck) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	return
}

// RiskLevelFor maps a score onto the level bands.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 60:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}
