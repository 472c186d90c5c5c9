package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/database"
	"github.com/jeffleon2/draftea-paymentscore/internal/handlers"
	"github.com/jeffleon2/draftea-paymentscore/internal/metrics"
	"github.com/jeffleon2/draftea-paymentscore/internal/publisher"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/dynamo"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/memory"
	"github.com/jeffleon2/draftea-paymentscore/internal/repository/posgrest"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/jeffleon2/draftea-paymentscore/internal/subscriber"
	"github.com/sirupsen/logrus"
)

const memoryDriver = "memory"

type App struct {
	config *config.Config
	Router *gin.Engine
	cancel context.CancelFunc
}

type storage interface {
	service.Store
	service.SettlementArchive
}

func (a *App) Initialize(cfg *config.Config) {
	a.config = cfg
	configureLogging(cfg.APP.LogLevel)

	store := a.initStore()
	archive := a.initArchive(store)
	publisher := a.initPublisher()

	ledgerService := service.NewLedgerService(store)
	fraudService := service.NewFraudService(store, cfg.Fraud.GetFraudRules())
	commissionService := service.NewCommissionService()
	paymentService := service.NewPaymentService(store, publisher, commissionService, fraudService, ledgerService)
	transactionService := service.NewTransactionQueryService(store)
	settlementService := service.NewSettlementService(transactionService, store, archive)

	paymentHandler := handlers.NewPaymentHandler(paymentService, fraudService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)

	metrics.RegisterMetrics()
	a.Router = newRouter()
	a.RegisterRoutes(paymentHandler, transactionHandler, ledgerHandler, settlementHandler)

	if cfg.Kafka.Enabled {
		a.initSubscribers(paymentHandler, publisher, cfg.Kafka.GetRetryConfig())
	}
}

func (a *App) Run() {
	defer a.Shutdown()
	err := a.Router.Run(fmt.Sprintf(":%s", a.config.APP.PORT))
	if err != nil {
		panic(err)
	}
}

// Shutdown stops the Kafka consumers.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) initStore() storage {
	if a.config.APP.StoreDriver == memoryDriver {
		store := memory.New()
		if a.config.APP.SeedMerchants {
			database.SeedMemoryMerchants(store)
		}
		logrus.Warn("using in-memory store, data is lost on restart")
		return store
	}

	db, err := a.config.DB.GormConnect()
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := posgrest.AutoMigrate(db); err != nil {
		logrus.Fatalf("failed to auto migrate: %v", err)
	}
	if a.config.APP.SeedMerchants {
		if err := database.SeedMerchants(db); err != nil {
			logrus.Fatalf("failed to seed merchants: %v", err)
		}
	}
	return posgrest.NewStore(db)
}

func (a *App) initArchive(store storage) service.SettlementArchive {
	if !a.config.Dynamo.Enabled {
		return store
	}

	client, err := a.config.Dynamo.DynamoConnect(context.Background())
	if err != nil {
		logrus.Fatalf("failed to configure dynamodb: %v", err)
	}
	return dynamo.NewSettlementArchive(client, a.config.Dynamo.SettlementTable)
}

func (a *App) initPublisher() service.Publisher {
	if !a.config.Kafka.Enabled {
		logrus.Warn("kafka disabled, events are only logged")
		return publisher.NewLogPublisher()
	}

	brokers := strings.Split(a.config.Kafka.Brokers, ",")
	publishTopics := strings.Split(a.config.Kafka.PublishTopics, ",")
	return publisher.NewKafkaPublisher(brokers, publishTopics, a.config.Kafka.GetRetryConfig())
}

func (a *App) initSubscribers(paymentHandler *handlers.PaymentHandler, dlq service.Publisher, retryConfig config.RetryConfig) {
	brokers := strings.Split(a.config.Kafka.Brokers, ",")
	topics := strings.Split(a.config.Kafka.SubscriberTopics, ",")
	groupID := a.config.Kafka.PaymentsConsumerGroup

	consumer := subscriber.NewMultiTopicConsumer(brokers, topics, groupID, dlq, retryConfig)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	consumer.Listen(ctx, func(ctx context.Context, topic string, value []byte) error {
		logrus.WithField("topic", topic).Debugf("Received message: %s", string(value))
		return paymentHandler.HandleEvents(ctx, topic, value)
	})
}

func configureLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// newRouter returns gin's default engine (logger and recovery) with request metrics.
func newRouter() *gin.Engine {
	router := gin.Default()
	router.Use(metrics.GinMiddleware())
	return router
}
