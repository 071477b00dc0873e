package models

import "errors"

var (
	// ErrInsufficientData indicates a series is below the minimum sample
	// size for the requested operation. Callers may retry with more data.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelUnavailable indicates predict was called before any
	// successful train for the series key.
	ErrModelUnavailable = errors.New("model unavailable")
)
