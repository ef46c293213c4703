package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/coredex-source/GPU-Util/internal/control"
	"github.com/coredex-source/GPU-Util/internal/curve"
)

const (
	urlParamId      = "id"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// FanService is the controller surface the REST api exposes
type FanService interface {
	// Status returns the most recent control loop snapshot
	Status() control.Observation
	// ActiveMode returns the label of the currently active mode
	ActiveMode() string

	// Curves returns all known fan curves, keyed by name
	Curves() map[string]curve.FanCurve
	// Curve returns the curve with the given name
	Curve(name string) (curve.FanCurve, bool)
	// SaveCurve validates and stores the given curve
	SaveCurve(c curve.FanCurve) error
	// DeleteCurve removes the curve with the given name
	DeleteCurve(name string) error

	// SetFixedDuty switches to fixed mode at the given duty
	SetFixedDuty(duty float64) error
	// SetCurve switches to curve mode using the named curve
	SetCurve(name string) error
	// SetAdaptiveTarget switches to adaptive mode with the given target
	SetAdaptiveTarget(config control.AdaptiveConfig) error
	// DisableToAuto hands fan control back to the device firmware
	DisableToAuto() error
}

func CreateRestService(service FanService) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())

	echoRest.Use(middleware.Logger())
	echoRest.Use(middleware.Recover())

	echoRest.GET("/alive/", isAlive)

	handlers := &restHandlers{service: service}
	handlers.registerStatusEndpoints(echoRest)
	handlers.registerCurveEndpoints(echoRest)
	handlers.registerModeEndpoints(echoRest)

	return echoRest
}

type restHandlers struct {
	service FanService
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return a "bad request" message for unusable input
func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad request",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
