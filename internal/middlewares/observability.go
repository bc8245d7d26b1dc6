package middlewares

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/metrics"
)

// unmatchedPath labels requests that hit no route, keeping raw URLs out of
// metric labels.
const unmatchedPath = "unmatched"

// Observability records request metrics and writes one structured access
// log line per request.
func Observability() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if rid == "" {
				rid = uuid.NewString()
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			if err := next(c); err != nil {
				c.Error(err)
			}

			lat := time.Since(start).Seconds()
			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = unmatchedPath
			}

			metrics.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(lat)

			logger.Infow("http_access",
				"rid", rid,
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration", lat,
				"client_ip", c.RealIP(),
			)

			return nil
		}
	}
}
