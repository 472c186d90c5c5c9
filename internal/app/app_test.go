package app

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewRouter_SingleRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := newRouter()

	assert.Len(t, router.Handlers, 3, "logger, recovery and metrics")
}
