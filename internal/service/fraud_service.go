package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/metrics"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	highAmountWeight     = 30
	mediumAmountWeight   = 15
	highVelocityWeight   = 25
	mediumVelocityWeight = 10
	unusualHoursWeight   = 20
	duplicateWeight      = 25

	velocityWindow  = time.Hour
	duplicateWindow = 10 * time.Minute
	unusualHourFrom = 0
	unusualHourTo   = 5
)

var mediumAmountFactor = decimal.RequireFromString("0.7")

// FraudRepo is the slice of the store the scorer reads and writes.
type FraudRepo interface {
	FindIntentBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	CountIntentsSince(ctx context.Context, merchantID string, since time.Time) (int64, error)
	FindSimilarIntentsSince(ctx context.Context, merchantID string, amount decimal.Decimal, status models.PaymentStatus, since time.Time) ([]models.PaymentIntent, error)
	FraudCheckRepo
}

// FraudService scores payment intents with additive rules and persists the result.
// Thresholds are fixed at construction.
type FraudService struct {
	Repo  FraudRepo
	Rules config.FraudRules
	Now   Clock
}

// NewFraudService creates a FraudService reading history from repo and scoring with rules.
func NewFraudService(repo FraudRepo, rules config.FraudRules) *FraudService {
	return &FraudService{
		Repo:  repo,
		Rules: rules,
		Now:   time.Now,
	}
}

// PerformFraudCheck evaluates the intent and stores an immutable FraudCheck.
//
// Rules run in a fixed order and each adds its weight at most once:
//   - amount above the threshold (+30) or above 70% of it (+15)
//   - merchant intents in the last hour above the velocity threshold (+25) or above half of it (+10)
//   - local hour between 00:00 and 05:00 (+20)
//   - a completed intent with the same merchant and amount in the last 10 minutes (+25)
//
// The order of RulesTriggered is the evaluation order.
func (s *FraudService) PerformFraudCheck(ctx context.Context, intent *models.PaymentIntent) (*models.FraudCheck, error) {
	now := s.Now()
	rules := make([]string, 0, 4)
	score := 0

	score += s.checkAmount(intent.Amount, &rules)

	velocity, err := s.checkVelocity(ctx, intent.MerchantID, now, &rules)
	if err != nil {
		return nil, err
	}
	score += velocity

	score += s.checkHour(now, &rules)

	duplicate, err := s.checkDuplicate(ctx, intent, now, &rules)
	if err != nil {
		return nil, err
	}
	score += duplicate

	check := &models.FraudCheck{
		PaymentIntentID: intent.ID,
		RiskScore:       score,
		RiskLevel:       models.RiskLevelFor(score),
		RulesTriggered:  rules,
		CreatedAt:       now,
	}
	if err := s.Repo.CreateFraudCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("error saving fraud check: %w", err)
	}

	decision := "allowed"
	if s.ShouldBlock(check) {
		decision = "blocked"
	}
	metrics.FraudChecksTotal.WithLabelValues(string(check.RiskLevel), decision).Inc()
	metrics.FraudRiskScores.Observe(float64(score))

	logrus.WithFields(logrus.Fields{
		"session_id": intent.SessionID,
		"risk_score": score,
		"risk_level": check.RiskLevel,
		"rules":      rules,
	}).Info("fraud check completed")

	return check, nil
}

// ShouldBlock compares the score against the block threshold, independent of the level bands.
func (s *FraudService) ShouldBlock(check *models.FraudCheck) bool {
	return check.RiskScore >= s.Rules.BlockRiskScore
}

func (s *FraudService) GetFraudCheckBySessionID(ctx context.Context, sessionID string) (*models.FraudCheck, error) {
	intent, err := s.Repo.FindIntentBySessionID(ctx, sessionID)
	if err != nil {
		return nil, notFoundAs(err, ErrSessionNotFound)
	}

	check, err := s.Repo.FindFraudCheckByIntentID(ctx, intent.ID)
	if err != nil {
		return nil, notFoundAs(err, ErrFraudCheckNotFound)
	}
	return check, nil
}

func (s *FraudService) checkAmount(amount decimal.Decimal, rules *[]string) int {
	threshold := s.Rules.AmountThreshold
	if amount.GreaterThan(threshold) {
		*rules = append(*rules, models.RuleHighAmount)
		return highAmountWeight
	}
	if amount.GreaterThan(threshold.Mul(mediumAmountFactor)) {
		*rules = append(*rules, models.RuleMediumAmount)
		return mediumAmountWeight
	}
	return 0
}

func (s *FraudService) checkVelocity(ctx context.Context, merchantID string, now time.Time, rules *[]string) (int, error) {
	count, err := s.Repo.CountIntentsSince(ctx, merchantID, now.Add(-velocityWindow))
	if err != nil {
		return 0, fmt.Errorf("error counting recent transactions: %w", err)
	}

	if count > int64(s.Rules.VelocityThreshold) {
		*rules = append(*rules, models.RuleHighVelocity)
		return highVelocityWeight, nil
	}
	if count > int64(s.Rules.VelocityThreshold/2) {
		*rules = append(*rules, models.RuleMediumVelocity)
		return mediumVelocityWeight, nil
	}
	return 0, nil
}

func (s *FraudService) checkHour(now time.Time, rules *[]string) int {
	if hour := now.Hour(); hour >= unusualHourFrom && hour < unusualHourTo {
		*rules = append(*rules, models.RuleUnusualHours)
		return unusualHoursWeight
	}
	return 0
}

func (s *FraudService) checkDuplicate(ctx context.Context, intent *models.PaymentIntent, now time.Time, rules *[]string) (int, error) {
	similar, err := s.Repo.FindSimilarIntentsSince(ctx, intent.MerchantID, intent.Amount, models.StatusCompleted, now.Add(-duplicateWindow))
	if err != nil {
		return 0, fmt.Errorf("error finding similar transactions: %w", err)
	}

	if len(similar) > 0 {
		*rules = append(*rules, models.RulePossibleDuplicate)
		return duplicateWeight, nil
	}
	return 0, nil
}

// notFoundAs maps a store miss onto a typed not-found error and wraps anything else.
func notFoundAs(err error, target *PaymentError) error {
	if errors.Is(err, ErrRecordNotFound) {
		return target
	}
	return fmt.Errorf("lookup failed: %w", err)
}
