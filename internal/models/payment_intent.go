package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string
type Currency string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusCompleted PaymentStatus = "COMPLETED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"

	CurrencyUSD Currency = "USD"

	SessionPrefix   = "SESS_"
	SessionLifetime = 15 * time.Minute
)

// allowedTransitions is the whole lifecycle. Terminal states map to nothing.
var allowedTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:   {StatusFailed, StatusCancelled, StatusCompleted},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

type PaymentIntent struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MerchantID     string          `json:"merchant_id" gorm:"index;not null"`
	TerminalID     string          `json:"terminal_id"`
	SessionID      string          `json:"session_id" gorm:"uniqueIndex;not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(15,2);not null"`
	Currency       Currency        `json:"currency" gorm:"type:varchar(3);not null"`
	Status         PaymentStatus   `json:"status" gorm:"type:varchar(20);index;not null"`
	ExpiryTime     time.Time       `json:"expiry_time"`
	TransactionRef string          `json:"transaction_ref" gorm:"index"`
	CallbackURL    string          `json:"callback_url"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (p *PaymentIntent) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	return
}

// IsExpired reports whether the session is past its expiry at now.
func (p *PaymentIntent) IsExpired(now time.Time) bool {
	return now.After(p.ExpiryTime)
}

// NewSessionID returns SESS_ followed by 24 uppercase hex characters of a random UUID.
func NewSessionID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return SessionPrefix + strings.ToUpper(raw[:24])
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsTerminal() bool {
	return s.IsValid() && len(allowedTransitions[s]) == 0
}

// CanTransitionTo checks next against the transition table.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
