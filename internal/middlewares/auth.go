package middlewares

import (
	"crypto/subtle"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/daily-campaign-mailer/pkg/logger"
	"github.com/onurcolak/daily-campaign-mailer/pkg/response"
)

const (
	APIKeyHeader = "x-mailer-auth-key"
)

// secureCompare compares two strings in a way that is safer against timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// APIKeyAuth guards operator endpoints (manual health check, test trigger,
// delivery log) with the shared trigger key.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	// If the API key is not configured, treat this as a server-side misconfiguration.
	if apiKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("TRIGGER_API_KEY is not configured"),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" || !secureCompare(token, apiKey) {
				logger.Warnf("Rejected %s %s: invalid or missing %s", c.Request().Method, c.Path(), APIKeyHeader)
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
