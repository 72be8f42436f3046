// internal/server/middleware.go
package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"askai-service/internal/common/errors"
	"askai-service/internal/common/metrics"
)

const requestIDKey = "request_id"

// requestID assigns every request an id and echoes it in the response so
// clients can correlate error traces with server logs.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())

		s.logger.Info("request completed", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"request_id":  requestIDFrom(c),
		})
	}
}

// recovery converts panics into the standard unhandled-exception payload.
// The trace field carries the request id rather than a stack trace, which
// stays in the server log only.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := requestIDFrom(c)
				s.logger.Error("panic recovered", map[string]interface{}{
					"panic":      fmt.Sprintf("%v", r),
					"request_id": requestID,
					"stack":      string(debug.Stack()),
				})
				svcErr := errors.NewInternalError(fmt.Sprintf("%v", r), requestID)
				c.AbortWithStatusJSON(http.StatusInternalServerError, svcErr.Body())
			}
		}()
		c.Next()
	}
}
