package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/metrics"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	blockedReason           = "Transaction flagged by fraud system"
	sessionCollisionRetries = 3
)

var transferAcknowledgement = datatypes.JSON(`{"status": "success", "message": "Transfer acknowledged"}`)

type CommissionCalculator interface {
	Calculate(merchant *models.MerchantAccount, amount decimal.Decimal) models.CommissionCalculation
}

type FraudScorer interface {
	PerformFraudCheck(ctx context.Context, intent *models.PaymentIntent) (*models.FraudCheck, error)
	ShouldBlock(check *models.FraudCheck) bool
}

type LedgerPoster interface {
	PostPayment(ctx context.Context, repo LedgerRepo, p PaymentPosting) ([]models.LedgerEntry, error)
}

type InitiationResult struct {
	Intent     *models.PaymentIntent `json:"intent"`
	FraudCheck *models.FraudCheck    `json:"fraud_check"`
	QRData     string                `json:"qr_data"`
}

type CompletionResult struct {
	Intent        *models.PaymentIntent         `json:"intent"`
	Commission    *models.TransactionCommission `json:"commission"`
	Transfer      *models.RailTransfer          `json:"transfer"`
	LedgerEntries []models.LedgerEntry          `json:"ledger_entries"`
}

// PaymentService owns the payment intent lifecycle.
// Every status change is checked against the transition table and persisted with a
// compare-and-set on (session id, current status), so concurrent callers racing on the same
// session cannot both win. Audit events are written in the same transaction as the change
// they describe, and status events are published to Kafka only after commit.
type PaymentService struct {
	Store      Store
	Publisher  Publisher
	Commission CommissionCalculator
	Fraud      FraudScorer
	Ledger     LedgerPoster
	Now        Clock
}

// NewPaymentService creates a new PaymentService wired to the store, the event publisher
// and the three engines it orchestrates.
func NewPaymentService(store Store, publisher Publisher, commission CommissionCalculator, fraud FraudScorer, ledger LedgerPoster) *PaymentService {
	return &PaymentService{
		Store:      store,
		Publisher:  publisher,
		Commission: commission,
		Fraud:      fraud,
		Ledger:     ledger,
		Now:        time.Now,
	}
}

// InitiatePayment creates an intent and screens it for fraud.
// When the score reaches the block threshold the intent is moved to FAILED and the result
// is returned together with ErrTransactionBlocked.
func (s *PaymentService) InitiatePayment(ctx context.Context, req *dto.InitiatePayment) (*InitiationResult, error) {
	intent, err := s.CreateIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	check, err := s.Fraud.PerformFraudCheck(ctx, intent)
	if err != nil {
		return nil, err
	}

	blocked := s.Fraud.ShouldBlock(check)
	s.publish(ctx, models.FraudCheckedTopic, models.FraudCheckedEvent{
		PaymentIntentID: intent.ID,
		SessionID:       intent.SessionID,
		MerchantID:      intent.MerchantID,
		RiskScore:       check.RiskScore,
		RiskLevel:       string(check.RiskLevel),
		RulesTriggered:  check.RulesTriggered,
		Blocked:         blocked,
		CheckedAt:       check.CreatedAt,
	})

	result := &InitiationResult{
		Intent:     intent,
		FraudCheck: check,
		QRData:     qrData(intent),
	}

	if blocked {
		logrus.WithFields(logrus.Fields{
			"session_id": intent.SessionID,
			"risk_score": check.RiskScore,
		}).Warn("transaction blocked by fraud system")

		failed, err := s.UpdateStatus(ctx, intent.SessionID, models.StatusFailed, blockedReason)
		if err != nil {
			return nil, err
		}
		result.Intent = failed
		return result, ErrTransactionBlocked
	}

	return result, nil
}

// CreateIntent opens a PENDING payment session for an ACTIVE merchant.
// The session expires 15 minutes after creation and the callback URL falls back to the
// merchant's configured one.
func (s *PaymentService) CreateIntent(ctx context.Context, req *dto.InitiatePayment) (*models.PaymentIntent, error) {
	req.Sanitize()

	merchant, err := s.Store.FindActiveMerchant(ctx, req.MerchantID)
	if err != nil {
		return nil, notFoundAs(err, ErrMerchantNotFound)
	}
	amount := req.Amount.Round(moneyScale)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.TransactionRef == "" {
		return nil, MissingField("transaction_ref")
	}
	if req.TerminalID == "" {
		return nil, MissingField("terminal_id")
	}

	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = merchant.CallbackURL
	}

	for attempt := 1; ; attempt++ {
		now := s.Now()
		intent := &models.PaymentIntent{
			MerchantID:     merchant.MerchantID,
			TerminalID:     req.TerminalID,
			SessionID:      models.NewSessionID(),
			Amount:         amount,
			Currency:       models.CurrencyUSD,
			Status:         models.StatusPending,
			ExpiryTime:     now.Add(models.SessionLifetime),
			TransactionRef: req.TransactionRef,
			CallbackURL:    callbackURL,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err := s.Store.WithinTx(ctx, func(tx Store) error {
			if err := tx.CreateIntent(ctx, intent); err != nil {
				return err
			}
			return s.recordEvent(ctx, tx, intent.ID, models.EventCreated,
				fmt.Sprintf("Payment intent created for amount: %s USD", intent.Amount.StringFixed(moneyScale)), now)
		})
		if errors.Is(err, ErrDuplicate) && attempt < sessionCollisionRetries {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error saving payment intent: %w", err)
		}

		metrics.PaymentsTotal.WithLabelValues(string(models.StatusPending)).Inc()
		logrus.WithFields(logrus.Fields{
			"session_id":  intent.SessionID,
			"merchant_id": intent.MerchantID,
			"amount":      intent.Amount.StringFixed(moneyScale),
		}).Info("payment intent created")

		return intent, nil
	}
}

// VerifySession checks that a session can still be paid.
//
// An expired PENDING session is cancelled and an EXPIRED event is recorded before
// ErrSessionExpired is returned; that change is committed even though the call fails.
// Sessions that are no longer PENDING fail with AlreadyProcessed.
func (s *PaymentService) VerifySession(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	var (
		intent    *models.PaymentIntent
		expired   bool
		cancelled bool
	)

	err := s.Store.WithinTx(ctx, func(tx Store) error {
		now := s.Now()
		found, err := tx.FindIntentBySessionID(ctx, sessionID)
		if err != nil {
			return notFoundAs(err, ErrSessionNotFound)
		}
		intent = found

		if found.IsExpired(now) {
			expired = true
			if found.Status != models.StatusPending {
				return nil
			}
			if err := s.transition(ctx, tx, found, models.StatusCancelled, nil, now, AlreadyProcessed); err != nil {
				return err
			}
			cancelled = true
			return s.recordEvent(ctx, tx, found.ID, models.EventExpired, "Payment session expired", now)
		}

		if found.Status != models.StatusPending {
			return AlreadyProcessed(found.Status)
		}
		return s.recordEvent(ctx, tx, found.ID, models.EventVerified, "Payment session verified", now)
	})
	if err != nil {
		return nil, err
	}

	if expired {
		if cancelled {
			s.afterTransition(ctx, intent, "Payment session expired")
		}
		return nil, ErrSessionExpired
	}
	return intent, nil
}

// CompletePayment settles a PENDING session in a single transaction.
//
// The commission split is computed from the merchant's configuration, the intent amount
// is replaced by the completion amount and the intent becomes COMPLETED, a rail transfer
// acknowledgement is stored, the ledger legs are posted and COMPLETED and
// COMMISSION_CALCULATED events are recorded. Either all of it lands or none of it does.
// Completing the same session twice fails the second time with AlreadyProcessed.
func (s *PaymentService) CompletePayment(ctx context.Context, req *dto.CompletePayment) (*CompletionResult, error) {
	req.Sanitize()
	if req.SessionID == "" {
		return nil, MissingField("session_id")
	}
	if req.FromAccount == "" {
		return nil, MissingField("from_account")
	}
	gross := req.Amount.Round(moneyScale)
	if !gross.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var result *CompletionResult
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		now := s.Now()
		intent, err := tx.FindIntentBySessionID(ctx, req.SessionID)
		if err != nil {
			return notFoundAs(err, ErrSessionNotFound)
		}
		if intent.IsExpired(now) {
			return ErrSessionExpired
		}
		if intent.Status != models.StatusPending {
			return AlreadyProcessed(intent.Status)
		}

		merchantID := req.MerchantID
		if merchantID == "" {
			merchantID = intent.MerchantID
		}
		merchant, err := tx.FindMerchant(ctx, merchantID)
		if err != nil {
			return notFoundAs(err, ErrMerchantNotFound)
		}
		if merchant.MerchantID != intent.MerchantID {
			return ErrMerchantMismatch
		}

		calc := s.Commission.Calculate(merchant, gross)

		if err := s.transition(ctx, tx, intent, models.StatusCompleted, &gross, now, AlreadyProcessed); err != nil {
			return err
		}

		commission := calc.ToEntity(intent.ID, gross)
		commission.CreatedAt = now
		if err := tx.CreateCommission(ctx, commission); err != nil {
			return fmt.Errorf("error saving commission: %w", err)
		}

		transfer := &models.RailTransfer{
			PaymentIntentID: intent.ID,
			FromAccount:     req.FromAccount,
			ToAccount:       merchant.LedgerAccount(),
			Amount:          gross,
			Status:          models.TransferAcknowledged,
			SettlementDate:  now,
			ResponsePayload: transferAcknowledgement,
			CreatedAt:       now,
		}
		if err := tx.CreateRailTransfer(ctx, transfer); err != nil {
			return fmt.Errorf("error saving rail transfer: %w", err)
		}

		entries, err := s.Ledger.PostPayment(ctx, tx, PaymentPosting{
			PaymentIntentID:     intent.ID,
			TransactionRef:      intent.TransactionRef,
			MerchantID:          merchant.MerchantID,
			FromAccount:         req.FromAccount,
			GrossAmount:         gross,
			NetAmount:           calc.NetAmount,
			CommissionAmount:    calc.CommissionAmount,
			SourceRoutingNumber: req.SourceRoutingNumber,
		})
		if err != nil {
			return err
		}

		if err := s.recordEvent(ctx, tx, intent.ID, models.EventCompleted, "Payment completed successfully", now); err != nil {
			return err
		}
		if err := s.recordEvent(ctx, tx, intent.ID, models.EventCommissionCalculated,
			fmt.Sprintf("Commission: %s, Net: %s", calc.CommissionAmount.StringFixed(moneyScale), calc.NetAmount.StringFixed(moneyScale)), now); err != nil {
			return err
		}

		result = &CompletionResult{
			Intent:        intent,
			Commission:    commission,
			Transfer:      transfer,
			LedgerEntries: entries,
		}
		return nil
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": req.SessionID,
		}).Errorf("payment completion failed: %s", err.Error())
		return nil, err
	}

	metrics.ObserveMoney(metrics.PaymentAmounts, string(result.Intent.Currency), result.Intent.Amount)
	metrics.ObserveMoney(metrics.CommissionAmounts, string(result.Commission.CommissionType), result.Commission.CommissionAmount)
	s.afterTransition(ctx, result.Intent, "")

	return result, nil
}

// CancelIntent cancels a PENDING session. Any other status fails with InvalidStatus.
func (s *PaymentService) CancelIntent(ctx context.Context, sessionID, reason string) (*models.PaymentIntent, error) {
	var intent *models.PaymentIntent
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		now := s.Now()
		found, err := tx.FindIntentBySessionID(ctx, sessionID)
		if err != nil {
			return notFoundAs(err, ErrSessionNotFound)
		}
		if found.Status != models.StatusPending {
			return InvalidStatus(found.Status)
		}
		if err := s.transition(ctx, tx, found, models.StatusCancelled, nil, now, InvalidStatus); err != nil {
			return err
		}
		intent = found
		return s.recordEvent(ctx, tx, found.ID, models.EventCancelled, fmt.Sprintf("Payment cancelled: %s", reason), now)
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, intent, reason)
	return intent, nil
}

// UpdateStatus applies a status decided by the fraud path.
// COMPLETED is refused here because completion must post the ledger; use CompletePayment.
func (s *PaymentService) UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus, reason string) (*models.PaymentIntent, error) {
	var intent *models.PaymentIntent
	err := s.Store.WithinTx(ctx, func(tx Store) error {
		now := s.Now()
		found, err := tx.FindIntentBySessionID(ctx, sessionID)
		if err != nil {
			return notFoundAs(err, ErrSessionNotFound)
		}
		if !status.IsValid() || status == models.StatusCompleted || !found.Status.CanTransitionTo(status) {
			return InvalidTransition(found.Status, status)
		}

		conflict := func(current models.PaymentStatus) error {
			return InvalidTransition(current, status)
		}
		if err := s.transition(ctx, tx, found, status, nil, now, conflict); err != nil {
			return err
		}
		intent = found
		return s.recordEvent(ctx, tx, found.ID, models.FraudSystemEventType(status),
			fmt.Sprintf("Status updated to %s: %s", status, reason), now)
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, intent, reason)
	return intent, nil
}

func (s *PaymentService) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error) {
	intent, err := s.Store.FindIntentBySessionID(ctx, sessionID)
	if err != nil {
		return nil, notFoundAs(err, ErrSessionNotFound)
	}
	return intent, nil
}

func (s *PaymentService) GetByTransactionRef(ctx context.Context, transactionRef string) (*models.PaymentIntent, error) {
	intent, err := s.Store.FindIntentByTransactionRef(ctx, transactionRef)
	if err != nil {
		return nil, notFoundAs(err, ErrIntentNotFound)
	}
	return intent, nil
}

// GetEvents returns the audit trail of a session, oldest first.
func (s *PaymentService) GetEvents(ctx context.Context, sessionID string) ([]models.PaymentEvent, error) {
	intent, err := s.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := s.Store.FindEventsByIntentID(ctx, intent.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading payment events: %w", err)
	}
	return events, nil
}

// transition validates next against the table and applies it with a compare-and-set.
// When another writer moved the intent first, conflict builds the error from the status
// found in the store.
func (s *PaymentService) transition(
	ctx context.Context,
	tx IntentRepo,
	intent *models.PaymentIntent,
	next models.PaymentStatus,
	amount *decimal.Decimal,
	now time.Time,
	conflict func(models.PaymentStatus) error,
) error {
	if !intent.Status.CanTransitionTo(next) {
		return InvalidTransition(intent.Status, next)
	}

	ok, err := tx.CompareAndSetStatus(ctx, intent.SessionID, intent.Status, next, amount, now)
	if err != nil {
		return fmt.Errorf("error updating payment status: %w", err)
	}
	if !ok {
		current, err := tx.FindIntentBySessionID(ctx, intent.SessionID)
		if err != nil {
			return fmt.Errorf("error reloading payment intent: %w", err)
		}
		return conflict(current.Status)
	}

	intent.Status = next
	intent.UpdatedAt = now
	if amount != nil {
		intent.Amount = *amount
	}
	return nil
}

func (s *PaymentService) recordEvent(ctx context.Context, tx EventRepo, paymentIntentID, eventType, message string, at time.Time) error {
	if err := tx.CreateEvent(ctx, models.NewPaymentEvent(paymentIntentID, eventType, message, at)); err != nil {
		return fmt.Errorf("error recording %s event: %w", eventType, err)
	}
	return nil
}

func (s *PaymentService) afterTransition(ctx context.Context, intent *models.PaymentIntent, reason string) {
	metrics.PaymentsTotal.WithLabelValues(string(intent.Status)).Inc()
	logrus.WithFields(logrus.Fields{
		"session_id": intent.SessionID,
		"status":     intent.Status,
	}).Info("payment status changed")

	s.publish(ctx, models.PaymentStatusTopic, models.NewPaymentStatusEvent(intent, reason, s.Now()))
}

// publish runs after commit, so a failure is logged and never undoes the state change.
func (s *PaymentService) publish(ctx context.Context, topic string, message interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, topic, message); err != nil {
		logrus.Errorf("Error publishing to %s: %s", topic, err.Error())
	}
}

func qrData(intent *models.PaymentIntent) string {
	return fmt.Sprintf("QRPAY|%s|%s|%s|%s|%s",
		intent.SessionID, intent.Amount.StringFixed(moneyScale), intent.Currency, intent.MerchantID, intent.TransactionRef)
}
