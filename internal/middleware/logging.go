package middleware

import (
	"log/slog"
	"time"

	"tidepool/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware injects a correlation ID and the authenticated user ID
// from Fiber locals into the request context so deep service layers can log
// them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		rid, _ := c.Locals("requestid").(string)
		if rid == "" {
			rid = observability.GenerateCorrelationID()
		}
		ctx = observability.WithCorrelationID(ctx, rid)

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequestLogger logs each request with method, path, status, and duration.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger := observability.GlobalLogger.WithRequest(c.UserContext())
		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			attrs = append(attrs, slog.Any("user_id", uid))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.Error("request failed", attrs...)
			return err
		}
		logger.Info("request", attrs...)
		return nil
	}
}
