package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/models/dto"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/sirupsen/logrus"
)

const merchantHeader = "X-Merchant-ID"

type PaymentService interface {
	InitiatePayment(ctx context.Context, req *dto.InitiatePayment) (*service.InitiationResult, error)
	VerifySession(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	CompletePayment(ctx context.Context, req *dto.CompletePayment) (*service.CompletionResult, error)
	CancelIntent(ctx context.Context, sessionID, reason string) (*models.PaymentIntent, error)
	UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus, reason string) (*models.PaymentIntent, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentIntent, error)
	GetEvents(ctx context.Context, sessionID string) ([]models.PaymentEvent, error)
}

type FraudCheckReader interface {
	GetFraudCheckBySessionID(ctx context.Context, sessionID string) (*models.FraudCheck, error)
}

type PaymentHandler struct {
	Service PaymentService
	Fraud   FraudCheckReader
}

func NewPaymentHandler(s PaymentService, fraud FraudCheckReader) *PaymentHandler {
	return &PaymentHandler{Service: s, Fraud: fraud}
}

// POST /payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req dto.InitiatePayment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if merchantID := c.GetHeader(merchantHeader); merchantID != "" {
		req.MerchantID = merchantID
	}

	result, err := h.Service.InitiatePayment(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrTransactionBlocked) && result != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      err.Error(),
				"code":       service.ErrTransactionBlocked.Code,
				"session_id": result.Intent.SessionID,
				"status":     result.Intent.Status,
			})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"session_id":  result.Intent.SessionID,
		"qr_data":     result.QRData,
		"expiry_time": result.Intent.ExpiryTime,
		"risk_level":  result.FraudCheck.RiskLevel,
		"message":     "Payment initiated successfully",
	})
}

// GET /payments/:sessionId/fraud-check
func (h *PaymentHandler) GetFraudCheck(c *gin.Context) {
	check, err := h.Fraud.GetFraudCheckBySessionID(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, check)
}

// GET /payments/verify/:sessionId
func (h *PaymentHandler) VerifySession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	intent, err := h.Service.VerifySession(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"session_id":  sessionID,
		"amount":      intent.Amount,
		"currency":    intent.Currency,
		"merchant_id": intent.MerchantID,
		"status":      intent.Status,
		"expiry_time": intent.ExpiryTime,
		"message":     "Session is valid",
	})
}

// POST /payments/complete
func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	var req dto.CompletePayment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.Service.CompletePayment(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"transaction_id":    result.Intent.ID,
		"session_id":        result.Intent.SessionID,
		"amount":            result.Intent.Amount,
		"commission_amount": result.Commission.CommissionAmount,
		"net_amount":        result.Commission.NetAmount,
		"status":            result.Intent.Status,
		"message":           "Payment completed successfully",
	})
}

// POST /payments/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	var req dto.CancelPayment
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req.Sanitize()

	intent, err := h.Service.CancelIntent(c.Request.Context(), req.SessionID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": intent.SessionID,
		"status":     intent.Status,
		"message":    "Payment cancelled successfully",
	})
}

// GET /payments/status/:sessionId
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	intent, err := h.Service.GetBySessionID(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// GET /payments/:sessionId/events
func (h *PaymentHandler) GetEvents(c *gin.Context) {
	events, err := h.Service.GetEvents(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// PATCH /payments/:sessionId/status
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatus
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req.Sanitize()

	intent, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("sessionId"), models.PaymentStatus(req.Status), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// HandleEvents applies external fraud decisions. Decisions the state machine rejects are
// logged and acknowledged; only infrastructure failures are returned for retry.
func (h *PaymentHandler) HandleEvents(ctx context.Context, topic string, value []byte) error {
	switch topic {
	case models.FraudDecisionTopic2Subscribe:
		var event models.FraudDecisionEvent
		if err := json.Unmarshal(value, &event); err != nil {
			logrus.Errorf("Error parsing fraud decision event %s", err.Error())
			return fmt.Errorf("error parsing fraud decision event %w", err)
		}

		_, err := h.Service.UpdateStatus(ctx, event.SessionID, models.PaymentStatus(strings.ToUpper(event.Status)), event.Reason)
		if err != nil {
			if service.KindOf(err) != "" {
				logrus.WithFields(logrus.Fields{
					"session_id": event.SessionID,
					"status":     event.Status,
				}).Warnf("fraud decision rejected: %s", err.Error())
				return nil
			}
			return fmt.Errorf("error applying fraud decision %w", err)
		}
		return nil
	default:
		logrus.Errorf("topic not allowed %s", topic)
		return fmt.Errorf("topic not allowed %s", topic)
	}
}
