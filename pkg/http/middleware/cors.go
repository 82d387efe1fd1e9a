package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CORS allows the dashboard UI to call the API from another origin.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, "Origin, Content-Type, Accept, Authorization")

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
