package service

import (
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	moneyScale        = 2
	intermediateScale = 6
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// CommissionService splits a transaction amount into the platform fee and the merchant net.
type CommissionService struct{}

// NewCommissionService creates a CommissionService. It holds no state.
func NewCommissionService() *CommissionService {
	return &CommissionService{}
}

// Calculate applies the merchant's commission configuration to amount.
//
// A PERCENTAGE value of 1 or less is a fraction (0.02 is 2%); a value above 1 is in
// percentage points (2.0 is 2%) and is rounded to six places after dividing by 100.
// FIXED uses the value as is. The result is clamped to the merchant's min and max when
// those are set, never goes below zero and never exceeds amount. Commission is rounded to
// cents half-up and net is what remains, so commission + net always equals amount.
func (s *CommissionService) Calculate(merchant *models.MerchantAccount, amount decimal.Decimal) models.CommissionCalculation {
	amount = amount.Round(moneyScale)
	value := merchant.CommissionValue

	var commission decimal.Decimal
	if merchant.CommissionType == models.CommissionPercentage {
		if value.LessThanOrEqual(one) {
			commission = amount.Mul(value)
		} else {
			commission = amount.Mul(value).DivRound(hundred, intermediateScale)
		}
	} else {
		commission = value
	}

	if merchant.MinCommission.Valid && commission.LessThan(merchant.MinCommission.Decimal) {
		commission = merchant.MinCommission.Decimal
	}
	if merchant.MaxCommission.Valid && commission.GreaterThan(merchant.MaxCommission.Decimal) {
		commission = merchant.MaxCommission.Decimal
	}
	if commission.IsNegative() {
		commission = decimal.Zero
	}
	if commission.GreaterThan(amount) {
		commission = amount
	}

	commission = commission.Round(moneyScale)
	net := amount.Sub(commission).Round(moneyScale)

	logrus.WithFields(logrus.Fields{
		"merchant_id": merchant.MerchantID,
		"amount":      amount.StringFixed(moneyScale),
		"commission":  commission.StringFixed(moneyScale),
		"net":         net.StringFixed(moneyScale),
	}).Debug("commission calculated")

	return models.CommissionCalculation{
		CommissionAmount: commission,
		NetAmount:        net,
		CommissionRate:   value,
		CommissionType:   merchant.CommissionType,
	}
}
