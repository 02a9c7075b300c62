package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs every successful mutation of resource together with the acting user.
func Audit(logger *zap.Logger, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == "GET" || c.Writer.Status() >= 400 {
			return
		}

		userID := "anonymous"
		if claims := ClaimsFrom(c); claims != nil {
			userID = claims.UserID
		}
		logger.Info("resource changed",
			zap.String("resource", resource),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("user_id", userID),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
