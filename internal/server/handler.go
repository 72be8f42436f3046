// internal/server/handler.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"askai-service/internal/common/errors"
)

func (s *Server) askAI(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.writeError(c, errors.Normalize(err))
		return
	}

	req, svcErr := parseAskRequest(body)
	if svcErr != nil {
		s.writeError(c, svcErr)
		return
	}

	resp, svcErr := s.chat.Ask(c.Request.Context(), req)
	if svcErr != nil {
		s.writeError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
	})
}

// ready reports whether the service holds everything it needs to reach the
// completion backend. Missing settings surface here before the first ask.
func (s *Server) ready(c *gin.Context) {
	if missing := s.cfg.MissingUpstreamSettings(); len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"missing": missing,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) writeError(c *gin.Context, svcErr *errors.ServiceError) {
	body := svcErr.Body()
	if svcErr.Code == errors.ErrCodeInternal {
		if trace, ok := body["trace"].(string); !ok || trace == "" {
			body["trace"] = requestIDFrom(c)
		}
	}

	fields := map[string]interface{}{
		"code":       string(svcErr.Code),
		"status":     svcErr.Status,
		"request_id": requestIDFrom(c),
	}
	if svcErr.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Warn("request rejected", fields)
	}

	c.JSON(svcErr.Status, body)
}
