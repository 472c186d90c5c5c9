package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/shopspring/decimal"
)

type LedgerQueries interface {
	GetBalance(ctx context.Context, account string) (decimal.Decimal, error)
	GetStatement(ctx context.Context, account string) ([]models.LedgerEntry, error)
	Reconcile(ctx context.Context, account string) (*service.Reconciliation, error)
}

type LedgerHandler struct {
	Service LedgerQueries
}

func NewLedgerHandler(s LedgerQueries) *LedgerHandler {
	return &LedgerHandler{Service: s}
}

// GET /ledger/accounts/:account/balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	account := c.Param("account")
	balance, err := h.Service.GetBalance(c.Request.Context(), account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_number": account,
		"balance":        balance.StringFixed(2),
	})
}

// GET /ledger/accounts/:account/statement
func (h *LedgerHandler) GetStatement(c *gin.Context) {
	account := c.Param("account")
	entries, err := h.Service.GetStatement(c.Request.Context(), account)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_number": account,
		"entries":        entries,
	})
}

// GET /ledger/accounts/:account/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	result, err := h.Service.Reconcile(c.Request.Context(), c.Param("account"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
