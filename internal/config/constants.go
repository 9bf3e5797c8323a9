package config

import "time"

// Application info
const (
	AppName    = "streetpulse"
	AppVersion = "1.0.0"
)

// Defaults
const (
	DefaultPort           = 8050
	DefaultRequestTimeout = 30 * time.Second
	DefaultRateLimit      = 100 // requests per second
	DefaultBurstSize      = 50
	DefaultLogLevel       = "info"
	DefaultCacheTTL       = 15 * time.Minute

	DefaultSourcePath       = "pedestrians.csv"
	DefaultExcludedLocation = "Bahnhofstrasse (Nord)"
	DefaultLastYearStart    = 2022
)

// Endpoints
const (
	APIBasePath     = "/api"
	MetricsEndpoint = "/metrics"
)
