package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/internal/service"
)

// APIResponse is the envelope for every JSON reply.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ForecastRequest holds query parameters for forecast endpoints.
type ForecastRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"omitempty,symbol"`
	Interval string `query:"interval" json:"interval" validate:"omitempty,oneof=1min 5min 15min 30min 45min 1h 2h 4h 8h 1day 1week"`
}

type recordResponse struct {
	Step           int       `json:"step"`
	Timestamp      time.Time `json:"timestamp"`
	PredictedPrice float64   `json:"predicted_price"`
	Direction      string    `json:"direction"`
	Binary         int       `json:"binary_direction"`
}

type forecastResponse struct {
	RunID               string           `json:"run_id"`
	Symbol              string           `json:"symbol"`
	Interval            string           `json:"interval"`
	GeneratedAt         time.Time        `json:"generated_at"`
	LastObserved        time.Time        `json:"last_observed"`
	LastClose           float64          `json:"last_close"`
	TrainPairs          int              `json:"train_pairs"`
	TestPairs           int              `json:"test_pairs"`
	FinalLoss           float64          `json:"final_loss"`
	TestRMSE            float64          `json:"test_rmse"`
	DirectionalAccuracy float64          `json:"directional_accuracy"`
	Records             []recordResponse `json:"records"`
}

func newForecastResponse(res *forecast.Result) forecastResponse {
	out := forecastResponse{
		RunID:               res.RunID,
		Symbol:              res.Symbol,
		Interval:            res.Interval.String(),
		GeneratedAt:         res.GeneratedAt,
		LastObserved:        res.LastObserved,
		LastClose:           res.LastClose,
		TrainPairs:          res.TrainPairs,
		TestPairs:           res.TestPairs,
		FinalLoss:           res.Training.FinalLoss,
		TestRMSE:            res.Evaluation.RMSE,
		DirectionalAccuracy: res.Evaluation.DirectionalAccuracy,
		Records:             make([]recordResponse, len(res.Records)),
	}
	for i, r := range res.Records {
		out.Records[i] = recordResponse{
			Step:           r.Step,
			Timestamp:      r.Timestamp,
			PredictedPrice: r.PredictedPrice,
			Direction:      string(r.Direction),
			Binary:         r.Direction.Flag(),
		}
	}
	return out
}

func dataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// errorStatus maps forecast failures onto HTTP statuses.
func errorStatus(err error) int {
	switch service.ErrorKind(err) {
	case "invalid_request":
		return http.StatusBadRequest
	case "data_unavailable":
		return http.StatusBadGateway
	case "insufficient_history", "degenerate_scale":
		return http.StatusUnprocessableEntity
	case "timeout":
		return http.StatusGatewayTimeout
	case "cancelled":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	status := errorStatus(err)
	return dataResponse(c, status, []ValidationError{{
		Code:    "ERR_" + strings.ToUpper(service.ErrorKind(err)),
		Message: err.Error(),
	}})
}

func validationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, e := range verrs {
			msg := fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag())
			switch e.Tag() {
			case "symbol":
				msg = fmt.Sprintf("%s must be a ticker such as AMZN or EUR/USD", e.Field())
			case "oneof":
				msg = fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
			}
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   e.Field(),
				Message: msg,
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

// isNotFound reports whether err means there is nothing stored to return.
func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNoStore)
}
