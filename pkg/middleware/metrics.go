package middleware

import (
	"time"

	"ordem-servico/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Metrics считает запросы по шаблону маршрута (c.Path()), а не по сырому URI,
// иначе каждый id заказа станет отдельной серией.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			m.InFlightInc()
			defer m.InFlightDec()

			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
