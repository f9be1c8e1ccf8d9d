package idempotency

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderName carries the caller-supplied idempotency key.
const HeaderName = "Idempotency-Key"

// TenantFunc resolves the tenant scope (hotel) for the current request.
type TenantFunc func(c *fiber.Ctx) string

// Middleware de-duplicates retried mutating requests. When a key is supplied
// and a response was already recorded for (tenant, method, path, key), the
// stored response is returned without re-executing side effects. Successful
// responses are recorded before returning. Store failures degrade to
// executing the request unguarded; they are logged, never surfaced.
func Middleware(store Store, ttl time.Duration, tenant TenantFunc, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}
		clientKey := c.Get(HeaderName)
		if clientKey == "" {
			return c.Next()
		}

		scoped := fmt.Sprintf("%s|%s|%s|%s", tenant(c), c.Method(), c.Path(), clientKey)

		record, err := store.Get(c.UserContext(), scoped)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.Error(err))
		} else if record != nil {
			c.Set(fiber.HeaderContentType, record.ContentType)
			c.Set("Idempotency-Replayed", "true")
			return c.Status(record.Status).Send(record.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status >= 300 {
			return nil
		}
		stored := &Record{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Put(c.UserContext(), scoped, stored, ttl); err != nil {
			logger.Warn("idempotency record failed", zap.Error(err))
		}
		return nil
	}
}
