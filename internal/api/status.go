package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coredex-source/GPU-Util/internal/control"
)

type statusResponse struct {
	Mode        string              `json:"mode"`
	Observation control.Observation `json:"observation"`
}

func (h *restHandlers) registerStatusEndpoints(rest *echo.Echo) {
	rest.GET("/status/", h.getStatus)
}

func (h *restHandlers) getStatus(c echo.Context) error {
	data := statusResponse{
		Mode:        h.service.ActiveMode(),
		Observation: h.service.Status(),
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
