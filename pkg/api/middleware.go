package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/council/pkg/ratelimit"
)

// Keys for request-scoped values.
const (
	contextKeyRequestID = "request_id"
	contextKeyUserID    = "user_id"
)

// requestID accepts an inbound X-Request-ID or mints a fresh uuid, echoes
// it on the response, and keeps it for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// requestIDFrom returns the request correlation ID, if set.
func requestIDFrom(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFrom(c))
	}
}

// securityHeaders sets standard security response headers. API responses
// are additionally marked uncacheable: they are per-user.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}

// corsHeaders lets browser frontends on any origin call the API and
// answers preflight requests directly.
func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// bodyLimit rejects oversized request bodies. A declared Content-Length
// over the cap fails fast; chunked bodies are capped while the handler
// reads them.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// requestTimeout bounds non-streaming handlers with the configured
// deadline.
func (s *Server) requestTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := s.cfg.HTTPRequestTimeout
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// rateLimitGeneral applies the per-user request budget to all API routes.
func (s *Server) rateLimitGeneral() gin.HandlerFunc {
	return s.rateLimit("api:", s.cfg.RateLimitMaxRequests)
}

// rateLimitWorkflow applies the stricter execution budget on top of the
// general one.
func (s *Server) rateLimitWorkflow() gin.HandlerFunc {
	return s.rateLimit("workflow:", s.cfg.RateLimitMaxWorkflowExecutions)
}

// rateLimit enforces one fixed-window policy, keyed by caller identity
// inside the given key space.
func (s *Server) rateLimit(keyPrefix string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := userIDFrom(c)
		if identity == "" {
			identity = c.ClientIP()
		}

		if err := s.limiter.Check(keyPrefix+identity, limit, s.cfg.RateLimitWindow); err != nil {
			var rlErr *ratelimit.Error
			if errors.As(err, &rlErr) {
				c.Writer.Header().Set("Retry-After", strconv.Itoa(rlErr.RetryAfterSec))
			}
			respondError(c, err)
			return
		}
		c.Next()
	}
}
