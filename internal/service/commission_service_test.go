package service_test

import (
	"testing"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate_FractionalPercentage(t *testing.T) {
	merchant := &models.MerchantAccount{
		MerchantID:      "M1",
		CommissionType:  models.CommissionPercentage,
		CommissionValue: dec("0.02"),
	}

	calc := service.NewCommissionService().Calculate(merchant, dec("1000.00"))

	assert.True(t, calc.CommissionAmount.Equal(dec("20.00")), calc.CommissionAmount.String())
	assert.True(t, calc.NetAmount.Equal(dec("980.00")), calc.NetAmount.String())
	assert.Equal(t, models.CommissionPercentage, calc.CommissionType)
}

func TestCalculate_PercentagePoints(t *testing.T) {
	merchant := &models.MerchantAccount{
		MerchantID:      "M1",
		CommissionType:  models.CommissionPercentage,
		CommissionValue: dec("2.0"),
	}

	calc := service.NewCommissionService().Calculate(merchant, dec("500.00"))

	assert.True(t, calc.CommissionAmount.Equal(dec("10.00")), calc.CommissionAmount.String())
	assert.True(t, calc.NetAmount.Equal(dec("490.00")), calc.NetAmount.String())
}

func TestCalculate_FixedCappedAtAmount(t *testing.T) {
	merchant := &models.MerchantAccount{
		MerchantID:      "M2",
		CommissionType:  models.CommissionFixed,
		CommissionValue: dec("5.00"),
	}

	calc := service.NewCommissionService().Calculate(merchant, dec("3.00"))

	assert.True(t, calc.CommissionAmount.Equal(dec("3.00")), calc.CommissionAmount.String())
	assert.True(t, calc.NetAmount.IsZero(), calc.NetAmount.String())
}

func TestCalculate_MinAndMaxBounds(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		min        decimal.NullDecimal
		max        decimal.NullDecimal
		commission string
	}{
		{name: "min wins over small commission", amount: "10.00", min: decimal.NewNullDecimal(dec("0.50")), commission: "0.50"},
		{name: "max wins over large commission", amount: "100000.00", max: decimal.NewNullDecimal(dec("25.00")), commission: "25.00"},
		{name: "no bounds", amount: "100.00", commission: "3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchant := &models.MerchantAccount{
				CommissionType:  models.CommissionPercentage,
				CommissionValue: dec("0.03"),
				MinCommission:   tt.min,
				MaxCommission:   tt.max,
			}

			calc := service.NewCommissionService().Calculate(merchant, dec(tt.amount))

			assert.True(t, calc.CommissionAmount.Equal(dec(tt.commission)), calc.CommissionAmount.String())
		})
	}
}

func TestCalculate_NetPlusCommissionEqualsAmount(t *testing.T) {
	merchants := []*models.MerchantAccount{
		{CommissionType: models.CommissionPercentage, CommissionValue: dec("0.0275")},
		{CommissionType: models.CommissionPercentage, CommissionValue: dec("2.9")},
		{CommissionType: models.CommissionPercentage, CommissionValue: dec("1.333333")},
		{CommissionType: models.CommissionFixed, CommissionValue: dec("0.30"), MaxCommission: decimal.NewNullDecimal(dec("0.25"))},
	}
	amounts := []string{"0.01", "0.99", "1.00", "12.34", "333.33", "999.99", "5000.00"}

	svc := service.NewCommissionService()
	for _, merchant := range merchants {
		for _, raw := range amounts {
			amount := dec(raw)
			calc := svc.Calculate(merchant, amount)

			assert.True(t, calc.CommissionAmount.Add(calc.NetAmount).Equal(amount),
				"%s %s: %s + %s", merchant.CommissionValue, raw, calc.CommissionAmount, calc.NetAmount)
			assert.False(t, calc.CommissionAmount.IsNegative())
			assert.True(t, calc.CommissionAmount.LessThanOrEqual(amount))
			assert.LessOrEqual(t, calc.CommissionAmount.Exponent(), int32(0))
			assert.GreaterOrEqual(t, calc.CommissionAmount.Exponent(), int32(-2))
		}
	}
}
