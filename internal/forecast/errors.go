package forecast

import "errors"

var (
	// ErrDataUnavailable is returned when the input series is empty or could not be fetched.
	ErrDataUnavailable = errors.New("price data unavailable")
	// ErrInsufficientHistory is returned when either side of the train/test split
	// cannot hold a single window and its target.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrDegenerateScale is returned when every price in the series is equal.
	ErrDegenerateScale = errors.New("degenerate price range")
	// ErrModelTrainingFailure is returned when training produces a non-finite loss.
	ErrModelTrainingFailure = errors.New("model training failed")
	// ErrScalerNotFitted is returned by Transform before Fit.
	ErrScalerNotFitted = errors.New("scaler is not fitted")
)
