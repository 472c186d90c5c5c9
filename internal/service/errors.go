package service

import (
	"errors"
	"fmt"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
)

type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindInvalidStateTransition ErrorKind = "INVALID_STATE_TRANSITION"
	KindExpired                ErrorKind = "EXPIRED"
	KindBlocked                ErrorKind = "BLOCKED"
)

// PaymentError is the typed failure returned by every payment operation.
// Two PaymentErrors match under errors.Is when their codes are equal.
type PaymentError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Status  models.PaymentStatus
}

func (e *PaymentError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Status)
	}
	return e.Message
}

func (e *PaymentError) Is(target error) bool {
	var t *PaymentError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrMerchantNotFound   = &PaymentError{Kind: KindNotFound, Code: "MERCHANT_NOT_FOUND", Message: "merchant not found or inactive"}
	ErrSessionNotFound    = &PaymentError{Kind: KindNotFound, Code: "SESSION_NOT_FOUND", Message: "payment session not found"}
	ErrIntentNotFound     = &PaymentError{Kind: KindNotFound, Code: "INTENT_NOT_FOUND", Message: "payment intent not found"}
	ErrFraudCheckNotFound = &PaymentError{Kind: KindNotFound, Code: "FRAUD_CHECK_NOT_FOUND", Message: "fraud check not found"}

	ErrInvalidAmount      = &PaymentError{Kind: KindInvalidInput, Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"}
	ErrMissingField       = &PaymentError{Kind: KindInvalidInput, Code: "MISSING_FIELD", Message: "required field is blank"}
	ErrMerchantMismatch   = &PaymentError{Kind: KindInvalidInput, Code: "MERCHANT_MISMATCH", Message: "merchant does not own this payment session"}
	ErrInvalidLedgerEntry = &PaymentError{Kind: KindInvalidInput, Code: "INVALID_LEDGER_ENTRY", Message: "ledger entry requires an account, a valid type and a positive amount"}
	ErrInvalidSettlement  = &PaymentError{Kind: KindInvalidInput, Code: "INVALID_SETTLEMENT", Message: "settlement id and transaction refs are required"}

	ErrSessionExpired             = &PaymentError{Kind: KindExpired, Code: "SESSION_EXPIRED", Message: "payment session expired"}
	ErrAlreadyProcessed           = &PaymentError{Kind: KindInvalidStateTransition, Code: "ALREADY_PROCESSED", Message: "payment already processed"}
	ErrInvalidStatus              = &PaymentError{Kind: KindInvalidStateTransition, Code: "INVALID_STATUS", Message: "payment cannot be cancelled in its current status"}
	ErrInvalidTransition          = &PaymentError{Kind: KindInvalidStateTransition, Code: "INVALID_TRANSITION", Message: "status transition not allowed"}
	ErrSettlementAlreadyProcessed = &PaymentError{Kind: KindInvalidStateTransition, Code: "SETTLEMENT_ALREADY_PROCESSED", Message: "settlement already marked as processed"}

	ErrTransactionBlocked = &PaymentError{Kind: KindBlocked, Code: "TRANSACTION_BLOCKED", Message: "transaction blocked due to high fraud risk"}
)

// AlreadyProcessed carries the status the intent was found in.
func AlreadyProcessed(status models.PaymentStatus) error {
	return withStatus(ErrAlreadyProcessed, status)
}

func InvalidStatus(status models.PaymentStatus) error {
	return withStatus(ErrInvalidStatus, status)
}

func InvalidTransition(from, to models.PaymentStatus) error {
	return &PaymentError{
		Kind:    ErrInvalidTransition.Kind,
		Code:    ErrInvalidTransition.Code,
		Message: fmt.Sprintf("status transition not allowed: %s -> %s", from, to),
	}
}

func MissingField(field string) error {
	return &PaymentError{
		Kind:    ErrMissingField.Kind,
		Code:    ErrMissingField.Code,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func withStatus(base *PaymentError, status models.PaymentStatus) error {
	return &PaymentError{Kind: base.Kind, Code: base.Code, Message: base.Message, Status: status}
}

// KindOf returns the kind of a PaymentError in err's chain, or "" for anything else.
func KindOf(err error) ErrorKind {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
