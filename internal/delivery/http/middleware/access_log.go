package middleware

import (
	"time"

	"skill-catalog/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *logger.Logger
}

func NewAccessLogMiddleware(log *logger.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.OrNop(log).With("component", "http")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error middleware sits inside this one; fiber's own errors
			// are rendered later by the app error handler
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		kv := []interface{}{
			"rid", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", status,
			"latency", time.Since(start),
			"resp_bytes", len(c.Response().Body()),
			"ua", c.Get("User-Agent"),
		}
		switch {
		case status >= 500:
			m.logger.Error("HTTP access", kv...)
		case status >= 400:
			m.logger.Warn("HTTP access", kv...)
		default:
			m.logger.Info("HTTP access", kv...)
		}

		return err
	}
}
