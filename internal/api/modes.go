package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coredex-source/GPU-Util/internal/control"
)

type fixedModeRequest struct {
	Duty float64 `json:"duty"`
}

type curveModeRequest struct {
	Name string `json:"name"`
}

func (h *restHandlers) registerModeEndpoints(rest *echo.Echo) {
	group := rest.Group("/mode")

	group.POST("/fixed/", h.setFixedMode)
	group.POST("/curve/", h.setCurveMode)
	group.POST("/adaptive/", h.setAdaptiveMode)
	group.POST("/auto/", h.setAutoMode)
}

func (h *restHandlers) setFixedMode(c echo.Context) error {
	request := fixedModeRequest{}
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if err := h.service.SetFixedDuty(request.Duty); err != nil {
		return returnBadRequest(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *restHandlers) setCurveMode(c echo.Context) error {
	request := curveModeRequest{}
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if _, exists := h.service.Curve(request.Name); !exists {
		return returnNotFound(c, request.Name)
	}
	if err := h.service.SetCurve(request.Name); err != nil {
		return returnError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *restHandlers) setAdaptiveMode(c echo.Context) error {
	request := control.AdaptiveConfig{}
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}
	if err := h.service.SetAdaptiveTarget(request); err != nil {
		return returnBadRequest(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *restHandlers) setAutoMode(c echo.Context) error {
	if err := h.service.DisableToAuto(); err != nil {
		return returnError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
