package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/report"
	"github.com/Alias1177/Forecaster/internal/service"
	"github.com/Alias1177/Forecaster/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return models.ValidSymbol(models.NormalizeSymbol(fl.Field().String()))
	})
	return v
}

// Forecaster is the part of the forecasting service the handlers use.
type Forecaster interface {
	Forecast(ctx context.Context, symbol, interval string) (*service.Forecast, error)
	Latest(ctx context.Context, symbol string) (*forecast.Result, error)
}

// Handler serves the forecast API.
type Handler struct {
	svc    Forecaster
	logger zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc Forecaster) *Handler {
	return &Handler{
		svc:    svc,
		logger: log.With().Str("component", "http_handler").Logger(),
	}
}

// RegisterRoutes adds the API routes to e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/latest", h.Latest)
	g.GET("/forecast/chart", h.Chart)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return dataResponse(c, http.StatusOK, map[string]string{"state": "ok"})
}

// Forecast trains a model on fresh history and returns the next steps.
func (h *Handler) Forecast(c echo.Context) error {
	req := &ForecastRequest{}
	if verrs := readAndValidate(c, req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}

	res, err := h.svc.Forecast(c.Request().Context(), req.Symbol, req.Interval)
	if err != nil {
		h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Forecast request failed")
		return errorResponse(c, err)
	}
	return dataResponse(c, http.StatusOK, newForecastResponse(res.Result))
}

// Chart trains like Forecast and answers with the PNG chart of the result.
func (h *Handler) Chart(c echo.Context) error {
	req := &ForecastRequest{}
	if verrs := readAndValidate(c, req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}

	res, err := h.svc.Forecast(c.Request().Context(), req.Symbol, req.Interval)
	if err != nil {
		h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Chart request failed")
		return errorResponse(c, err)
	}

	var buf bytes.Buffer
	if err := report.WriteChart(&buf, res.Result); err != nil {
		h.logger.Error().Err(err).Str("run_id", res.RunID).Msg("Failed to render chart")
		return errorResponse(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// Latest returns the most recent stored forecast without retraining.
func (h *Handler) Latest(c echo.Context) error {
	req := &ForecastRequest{}
	if verrs := readAndValidate(c, req); verrs != nil {
		return dataResponse(c, http.StatusBadRequest, verrs)
	}
	if req.Symbol == "" {
		return dataResponse(c, http.StatusBadRequest, []ValidationError{{
			Code: "ERR_REQUIRED", Field: "Symbol", Message: "Symbol is required",
		}})
	}

	res, err := h.svc.Latest(c.Request().Context(), req.Symbol)
	if err != nil && !isNotFound(err) {
		h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Latest forecast lookup failed")
		return errorResponse(c, err)
	}
	if res == nil {
		return dataResponse(c, http.StatusNotFound, []ValidationError{{
			Code: "ERR_NOT_FOUND", Field: "Symbol", Message: "no stored forecast for " + req.Symbol,
		}})
	}
	return dataResponse(c, http.StatusOK, newForecastResponse(res))
}

func readAndValidate(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return validationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return validationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validationErrors(err)
	}
	return nil
}
