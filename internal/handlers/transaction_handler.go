package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
)

type TransactionQueries interface {
	GetMerchantTransactions(ctx context.Context, merchantID string, from, to time.Time, status string) (*models.MerchantTransactions, error)
	GetTodayTransactions(ctx context.Context, merchantID, status string) (*models.MerchantTransactions, error)
	GetTransactionSummary(ctx context.Context, merchantID string, from, to time.Time) (*models.TransactionSummary, error)
}

// TransactionHandler serves merchant reporting. Without from/to a request covers the
// current day.
type TransactionHandler struct {
	Service TransactionQueries
	Now     func() time.Time
}

func NewTransactionHandler(s TransactionQueries) *TransactionHandler {
	return &TransactionHandler{Service: s, Now: time.Now}
}

// GET /transactions/merchant/:merchantId
func (h *TransactionHandler) GetMerchantTransactions(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}

	txs, err := h.Service.GetMerchantTransactions(c.Request.Context(), c.Param("merchantId"), from, to, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GET /transactions/merchant/:merchantId/today
func (h *TransactionHandler) GetTodayTransactions(c *gin.Context) {
	txs, err := h.Service.GetTodayTransactions(c.Request.Context(), c.Param("merchantId"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// GET /transactions/merchant/:merchantId/summary
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	from, to, ok := h.window(c)
	if !ok {
		return
	}

	summary, err := h.Service.GetTransactionSummary(c.Request.Context(), c.Param("merchantId"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *TransactionHandler) window(c *gin.Context) (time.Time, time.Time, bool) {
	now := h.Now()
	y, m, d := now.Date()
	from, to, err := timeRange(c, time.Date(y, m, d, 0, 0, 0, 0, now.Location()), now)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
