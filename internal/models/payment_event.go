package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventCreated              = "CREATED"
	EventVerified             = "VERIFIED"
	EventExpired              = "EXPIRED"
	EventCompleted            = "COMPLETED"
	EventCommissionCalculated = "COMMISSION_CALCULATED"
	EventCancelled            = "CANCELLED"

	fraudSystemSuffix = "_BY_FRAUD_SYSTEM"
)

type PaymentEvent struct {
	ID              string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PaymentIntentID string         `json:"payment_intent_id" gorm:"index;not null"`
	EventType       string         `json:"event_type" gorm:"type:varchar(50);not null"`
	Payload         datatypes.JSON `json:"payload"`
	CreatedAt       time.Time      `json:"created_at"`
	Seq             int64          `json:"-" gorm:"autoIncrement;index"`
}

type EventPayload struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *PaymentEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	return
}

// NewPaymentEvent builds an audit event with a {message, timestamp} payload.
func NewPaymentEvent(paymentIntentID, eventType, message string, at time.Time) *PaymentEvent {
	payload, _ := json.Marshal(EventPayload{Message: message, Timestamp: at})
	return &PaymentEvent{
		PaymentIntentID: paymentIntentID,
		EventType:       eventType,
		Payload:         datatypes.JSON(payload),
		CreatedAt:       at,
	}
}

func FraudSystemEventType(status PaymentStatus) string {
	return string(status) + fraudSystemSuffix
}
