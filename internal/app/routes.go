package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *App) RegisterRoutes(
	payments *handlers.PaymentHandler,
	transactions *handlers.TransactionHandler,
	ledger *handlers.LedgerHandler,
	settlement *handlers.SettlementHandler,
) {
	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := a.Router.Group("/api/v1")

	p := api.Group("/payments")
	p.POST("/initiate", payments.InitiatePayment)
	p.GET("/:sessionId/fraud-check", payments.GetFraudCheck)
	p.GET("/verify/:sessionId", payments.VerifySession)
	p.POST("/complete", payments.CompletePayment)
	p.POST("/cancel", payments.CancelPayment)
	p.GET("/status/:sessionId", payments.GetStatus)
	p.GET("/:sessionId/events", payments.GetEvents)
	p.PATCH("/:sessionId/status", payments.UpdateStatus)

	t := api.Group("/transactions/merchant/:merchantId")
	t.GET("", transactions.GetMerchantTransactions)
	t.GET("/summary", transactions.GetSummary)
	t.GET("/today", transactions.GetTodayTransactions)

	l := api.Group("/ledger/accounts/:account")
	l.GET("/balance", ledger.GetBalance)
	l.GET("/statement", ledger.GetStatement)
	l.GET("/reconcile", ledger.Reconcile)

	s := api.Group("/settlement")
	s.GET("/merchant/:merchantId/pending", settlement.GetPending)
	s.GET("/merchant/:merchantId/batch", settlement.GetBatch)
	s.GET("/today/pending", settlement.GetTodayPending)
	s.POST("/mark-settled", settlement.MarkSettled)
}
