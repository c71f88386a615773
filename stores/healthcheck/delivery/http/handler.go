package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/mintingkit/base/ctx"
	hcdomain "github.com/x-xyz/mintingkit/domain/healthcheck"
)

type healthCheckHandler struct {
	healthCheck hcdomain.HealthCheckUsecase
}

// New will initialize the healthcheck/
func New(e *echo.Echo, us hcdomain.HealthCheckUsecase) {
	handler := &healthCheckHandler{
		healthCheck: us,
	}
	g := e.Group("/health")
	g.GET("", handler.check)
}

func (h *healthCheckHandler) check(c echo.Context) error {
	context := c.Get("ctx").(ctx.Ctx)
	report, err := h.healthCheck.Check(context)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, report)
	}
	return c.JSON(http.StatusOK, report)
}
