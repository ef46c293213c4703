package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"

	"github.com/coredex-source/GPU-Util/internal/curve"
)

func (h *restHandlers) registerCurveEndpoints(rest *echo.Echo) {
	group := rest.Group("/curve")

	group.GET("/", h.getCurves)
	group.GET("/:"+urlParamId+"/", h.getCurve)
	group.POST("/", h.createCurve)
	group.DELETE("/:"+urlParamId+"/", h.deleteCurve)
}

func (h *restHandlers) getCurves(c echo.Context) error {
	data := reprint.This(h.service.Curves())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func (h *restHandlers) getCurve(c echo.Context) error {
	id := c.Param(urlParamId)
	data, exists := h.service.Curve(id)
	if !exists {
		return returnNotFound(c, id)
	} else {
		return c.JSONPretty(http.StatusOK, data, indentationChar)
	}
}

func (h *restHandlers) createCurve(c echo.Context) error {
	fanCurve := curve.FanCurve{}
	if err := c.Bind(&fanCurve); err != nil {
		return returnBadRequest(c, err)
	}
	if err := fanCurve.Validate(); err != nil {
		return returnBadRequest(c, err)
	}
	if err := h.service.SaveCurve(fanCurve); err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, fanCurve, indentationChar)
}

func (h *restHandlers) deleteCurve(c echo.Context) error {
	id := c.Param(urlParamId)
	if _, exists := h.service.Curve(id); !exists {
		return returnNotFound(c, id)
	}
	if err := h.service.DeleteCurve(id); err != nil {
		return returnError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
