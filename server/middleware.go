package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// apiKeyHeader is the authentication header name.
const apiKeyHeader = "x-api-key"

// requireAPIKey rejects requests without the shared key: 401 when the
// header is absent, 403 when it does not match.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(apiKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope(
				"API key is missing. Please provide a valid API key in the x-api-key header."))
			return
		}
		if key != s.cfg.APIKey {
			logrus.WithFields(logrus.Fields{
				"function": "requireAPIKey",
				"path":     c.Request.URL.Path,
			}).Warn("Rejected request with invalid API key")
			c.AbortWithStatusJSON(http.StatusForbidden, errorEnvelope(
				"Invalid API key or malformed request"))
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, x-api-key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
