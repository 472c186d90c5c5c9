package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
)

type SettlementOperations interface {
	PendingSettlement(ctx context.Context, merchantID string, from, to *time.Time) (*models.SettlementBatch, error)
	TodayPendingSettlement(ctx context.Context, merchantID string) (*models.SettlementBatch, error)
	BatchSettlement(ctx context.Context, merchantID string, from, to time.Time) (*models.SettlementBatch, error)
	MarkSettled(ctx context.Context, req *dto.MarkSettlement) (*models.MerchantSettlement, error)
}

type SettlementHandler struct {
	Service SettlementOperations
}

func NewSettlementHandler(s SettlementOperations) *SettlementHandler {
	return &SettlementHandler{Service: s}
}

// GET /settlement/merchant/:merchantId/pending
func (h *SettlementHandler) GetPending(c *gin.Context) {
	from, err := optionalTime(c, "from")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	batch, err := h.Service.PendingSettlement(c.Request.Context(), c.Param("merchantId"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// GET /settlement/merchant/:merchantId/batch requires both from and to.
func (h *SettlementHandler) GetBatch(c *gin.Context) {
	from, err := optionalTime(c, "from")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if from == nil || to == nil {
		badRequest(c, "from and to are required")
		return
	}

	batch, err := h.Service.BatchSettlement(c.Request.Context(), c.Param("merchantId"), *from, *to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// GET /settlement/today/pending?merchantId=
func (h *SettlementHandler) GetTodayPending(c *gin.Context) {
	merchantID := c.Query("merchantId")
	if merchantID == "" {
		badRequest(c, "merchantId is required")
		return
	}

	batch, err := h.Service.TodayPendingSettlement(c.Request.Context(), merchantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// POST /settlement/mark-settled
func (h *SettlementHandler) MarkSettled(c *gin.Context) {
	var req dto.MarkSettlement
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	settlement, err := h.Service.MarkSettled(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"settlement_id": settlement.SettlementID,
		"processed_at":  settlement.ProcessedAt,
		"message":       "Settlement marked as processed",
	})
}
