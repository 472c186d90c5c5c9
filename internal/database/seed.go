package database

import (
	"time"

	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MerchantSaver is satisfied by the in-memory store.
type MerchantSaver interface {
	SaveMerchant(merchant models.MerchantAccount)
}

// DemoMerchants returns the merchant accounts used for local runs.
func DemoMerchants() []models.MerchantAccount {
	now := time.Now()
	return []models.MerchantAccount{
		{
			MerchantID:        "M1",
			StoreName:         "Corner Coffee",
			Status:            models.MerchantActive,
			CommissionType:    models.CommissionPercentage,
			CommissionValue:   decimal.RequireFromString("2.5"),
			MinCommission:     decimal.NewNullDecimal(decimal.RequireFromString("0.50")),
			CallbackURL:       "http://localhost:9000/callbacks/m1",
			BankAccountNumber: "000111222",
			BankRoutingNumber: "021000021",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			MerchantID:        "M2",
			StoreName:         "Books & Co",
			Status:            models.MerchantActive,
			CommissionType:    models.CommissionFixed,
			CommissionValue:   decimal.RequireFromString("1.00"),
			BankAccountNumber: "000333444",
			BankRoutingNumber: "021000021",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			MerchantID:        "M3",
			StoreName:         "Closed Store",
			Status:            models.MerchantSuspended,
			CommissionType:    models.CommissionPercentage,
			CommissionValue:   decimal.RequireFromString("0.03"),
			BankAccountNumber: "000555666",
			BankRoutingNumber: "021000021",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

func SeedMerchants(db *gorm.DB) error {
	for _, merchant := range DemoMerchants() {
		result := db.Where(models.MerchantAccount{MerchantID: merchant.MerchantID}).FirstOrCreate(&merchant)
		if result.Error != nil {
			return result.Error
		}
	}

	logrus.Info("Merchants seeded successfully")
	return nil
}

func SeedMemoryMerchants(store MerchantSaver) {
	for _, merchant := range DemoMerchants() {
		store.SaveMerchant(merchant)
	}
	logrus.Info("Merchants seeded successfully")
}
