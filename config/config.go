package config

import (
	"os"
	"reflect"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func New() (*Config, error) {
	var Config Config
	if os.Getenv("GO_ENV") == "local" {
		if err := godotenv.Load(".env"); err != nil {
			logrus.Error("Error can't get the environment variables by file")
		}
	}
	if err := env.ParseWithFuncs(&Config, parsers()); err != nil {
		logrus.Fatalf("Error initializing: %s", err.Error())
		os.Exit(1)
	}
	return &Config, nil
}

func parsers() map[reflect.Type]env.ParserFunc {
	return map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(decimal.Decimal{}): func(v string) (interface{}, error) {
			return decimal.NewFromString(v)
		},
	}
}

type Config struct {
	APP
	DB
	Kafka
	Fraud
	Dynamo
}

type DB struct {
	HOST     string `env:"DB_HOST" envDefault:"localhost"`
	USER     string `env:"DB_USER"`
	PASSWORD string `env:"DB_PASSWORD"`
	NAME     string `env:"DB_NAME"`
	PORT     string `env:"DB_PORT" envDefault:"5432"`
	SSLMODE  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type APP struct {
	PORT          string `env:"APP_PORT" envDefault:"8080"`
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	SeedMerchants bool   `env:"SEED_MERCHANTS" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

type Kafka struct {
	Enabled               bool   `env:"KAFKA_ENABLED" envDefault:"true"`
	Brokers               string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	PaymentsConsumerGroup string `env:"KAFKA_PAYMENTS_GROUP_ID" envDefault:"paymentscore-service"`
	PublishTopics         string `env:"KAFKA_PUBLISH_TOPICS" envDefault:"payments.status,payments.fraud.checked,payments.dlq"`
	SubscriberTopics      string `env:"KAFKA_SUBSCRIBER_TOPICS" envDefault:"fraud.decisions"`

	RetryMaxAttempts int           `env:"KAFKA_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseDelay   time.Duration `env:"KAFKA_RETRY_BASE_DELAY" envDefault:"100ms"`
	RetryMaxDelay    time.Duration `env:"KAFKA_RETRY_MAX_DELAY" envDefault:"10s"`
	RetryJitter      bool          `env:"KAFKA_RETRY_JITTER" envDefault:"true"`
}

type Fraud struct {
	VelocityThreshold int             `env:"FRAUD_VELOCITY_THRESHOLD" envDefault:"10"`
	AmountThreshold   decimal.Decimal `env:"FRAUD_AMOUNT_THRESHOLD" envDefault:"5000"`
	BlockRiskScore    int             `env:"FRAUD_BLOCK_SCORE" envDefault:"70"`
}

type Dynamo struct {
	Enabled         bool   `env:"SETTLEMENT_ARCHIVE_DYNAMO" envDefault:"false"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" envDefault:"local"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" envDefault:"local"`
	Endpoint        string `env:"DYNAMODB_ENDPOINT"`
	SettlementTable string `env:"SETTLEMENTS_TABLE" envDefault:"merchant_settlements"`
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

func (k Kafka) GetRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: k.RetryMaxAttempts,
		BaseDelay:   k.RetryBaseDelay,
		MaxDelay:    k.RetryMaxDelay,
		Jitter:      k.RetryJitter,
	}
}

// FraudRules are the scorer thresholds, fixed for the life of the process.
type FraudRules struct {
	VelocityThreshold int
	AmountThreshold   decimal.Decimal
	BlockRiskScore    int
}

func (f Fraud) GetFraudRules() FraudRules {
	return FraudRules{
		VelocityThreshold: f.VelocityThreshold,
		AmountThreshold:   f.AmountThreshold,
		BlockRiskScore:    f.BlockRiskScore,
	}
}

func DefaultFraudRules() FraudRules {
	return FraudRules{
		VelocityThreshold: 10,
		AmountThreshold:   decimal.NewFromInt(5000),
		BlockRiskScore:    70,
	}
}
