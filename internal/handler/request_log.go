package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/ratelimit"
	"github.com/kitforge/backend/internal/service"
)

const verifyEmailPrefix = "/auth/verify-email/"

// RequestLogger logs one line per request. Matched routes are logged by pattern,
// so path parameters such as verification tokens never reach the log.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = maskPath(c.Request.URL.Path)
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if user := GetAuthUser(c); user != nil {
			attrs = append(attrs, "user_id", user.ID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.ErrorContext(c.Request.Context(), "request", attrs...)
		case status >= http.StatusBadRequest:
			log.WarnContext(c.Request.Context(), "request", attrs...)
		default:
			log.InfoContext(c.Request.Context(), "request", attrs...)
		}
	}
}

func maskPath(path string) string {
	if strings.HasPrefix(path, verifyEmailPrefix) && len(path) > len(verifyEmailPrefix) {
		return verifyEmailPrefix + "***"
	}
	return path
}

// RateLimit counts requests per client IP and route. When the limiter backend is down
// requests are let through and the failure is logged.
func RateLimit(limiter ratelimit.Limiter, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			log.WarnContext(c.Request.Context(), "rate limit exceeded", "client_ip", c.ClientIP(), "path", c.FullPath())
			abortWith(c, http.StatusTooManyRequests, service.CodeRateLimited, service.ErrRateLimited.Message)
			return
		}
		c.Next()
	}
}
