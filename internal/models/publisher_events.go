package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusTopic = "payments.status"
	FraudCheckedTopic  = "payments.fraud.checked"
	PaymentsDLQTopic   = "payments.dlq"
)

// PaymentStatusEvent carries the final status of an intent to downstream callback delivery.
type PaymentStatusEvent struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	SessionID       string          `json:"session_id"`
	MerchantID      string          `json:"merchant_id"`
	TransactionRef  string          `json:"transaction_ref"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CallbackURL     string          `json:"callback_url"`
	Reason          string          `json:"reason,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

type FraudCheckedEvent struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	SessionID       string    `json:"session_id"`
	MerchantID      string    `json:"merchant_id"`
	RiskScore       int       `json:"risk_score"`
	RiskLevel       string    `json:"risk_level"`
	RulesTriggered  []string  `json:"rules_triggered"`
	Blocked         bool      `json:"blocked"`
	CheckedAt       time.Time `json:"checked_at"`
}

type DLQMessage struct {
	OriginalTopic string    `json:"original_topic"`
	Key           string    `json:"key"`
	Value         string    `json:"value"`
	Timestamp     time.Time `json:"timestamp"`
	Attempts      int       `json:"attempts"`
}

func NewPaymentStatusEvent(intent *PaymentIntent, reason string, at time.Time) PaymentStatusEvent {
	return PaymentStatusEvent{
		PaymentIntentID: intent.ID,
		SessionID:       intent.SessionID,
		MerchantID:      intent.MerchantID,
		TransactionRef:  intent.TransactionRef,
		Status:          string(intent.Status),
		Amount:          intent.Amount,
		Currency:        string(intent.Currency),
		CallbackURL:     intent.CallbackURL,
		Reason:          reason,
		OccurredAt:      at,
	}
}
