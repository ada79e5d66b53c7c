package controllers

import (
	"time"

	"cafeteria-orders/src/infrastructure/log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const CorrelationIDHeader = "X-Correlation-Id"

// RequestLogger tags every request with a correlation id, stores it on the
// user context for the services and logs the exchange once it completes.
func RequestLogger(logger log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := logger.WithCorrelationID(c.UserContext(), correlationID)
		c.SetUserContext(ctx)
		c.Set(CorrelationIDHeader, correlationID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		logger.RequestResponse(ctx, &log.Field{
			URL:            c.OriginalURL(),
			HostName:       c.Hostname(),
			HTTPStatusCode: status,
			Duration:       time.Since(start).Milliseconds(),
			RequestBody:    string(c.Body()),
			ResponseBody:   string(c.Response().Body()),
			HTTPMethod:     c.Method(),
			Message:        c.Method() + " " + c.Path(),
		})
		return err
	}
}
