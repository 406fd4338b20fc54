package middleware

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"farm-loan-ledger/internal/infrastructure/metrics"
	"farm-loan-ledger/pkg/logger"
)

// RequestID propagates X-Request-ID (generating one when absent) into the request context
// so every log line of the request carries it.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}

// RequestLogger writes one log line per request and records its latency. m may be nil.
func RequestLogger(m *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			latency := time.Since(start)
			status := c.Response().Status

			logger.LogRequest(c.Request().Context(), c.Request().Method, c.Request().URL.Path, status, latency, c.RealIP())
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, strconv.Itoa(status), latency)
			return nil
		}
	}
}
