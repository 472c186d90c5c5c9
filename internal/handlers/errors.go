package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jeffleon2/draftea-paymentscore/internal/service"
	"github.com/sirupsen/logrus"
)

const internalErrorCode = "INTERNAL_ERROR"

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindInvalidInput, service.KindInvalidStateTransition, service.KindExpired, service.KindBlocked:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	code := internalErrorCode
	var pe *service.PaymentError
	if errors.As(err, &pe) {
		code = pe.Code
	}
	if status == http.StatusInternalServerError {
		logrus.Errorf("%s %s failed: %s", c.Request.Method, c.FullPath(), err.Error())
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "INVALID_REQUEST"})
}

// timeRange reads RFC3339 from/to query params. Missing values fall back to the defaults.
func timeRange(c *gin.Context, defFrom, defTo time.Time) (time.Time, time.Time, error) {
	from, err := optionalTime(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil {
		from = &defFrom
	}
	if to == nil {
		to = &defTo
	}
	return *from, *to, nil
}

func optionalTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s, expected RFC3339", key)
	}
	return &t, nil
}
