package services

import "errors"

// Aggregation service errors
var (
	ErrUnknownWindow    = errors.New("unknown window")
	ErrUnknownLocation  = errors.New("unknown location")
	ErrUnknownMeasure   = errors.New("unknown measure")
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
)
