package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"streetpulse/internal/dataprocessing"
	"streetpulse/pkg/contracts"
)

// Health status values.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// HealthService provides health check functionality
type HealthService struct {
	dataset   *dataprocessing.Dataset
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
	Dataset   *DatasetInfo             `json:"dataset,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Source   string                   `json:"source"`
	LoadedAt time.Time                `json:"loaded_at"`
	Stats    dataprocessing.LoadStats `json:"stats"`
}

// VersionInfo is the /version payload.
type VersionInfo struct {
	contracts.VersionInfo
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
}

// NewHealthService creates a health service for ds, which may be nil.
func NewHealthService(ds *dataprocessing.Dataset, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:   ds,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports "ok", or "degraded" when a year window holds no rows.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}

	dataset := hs.checkDataset()
	if dataset.Status != StatusReady {
		status.Status = StatusDegraded
	}
	if hs.dataset != nil {
		status.Dataset = &DatasetInfo{
			Source:   hs.dataset.Source,
			LoadedAt: hs.dataset.LoadedAt,
			Stats:    hs.dataset.Stats,
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck reports ready once the dataset is loaded and both windows
// hold rows.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDataset(),
		},
	}
	for _, sh := range status.Services {
		if sh.Status != StatusReady {
			status.Status = StatusNotReady
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		VersionInfo:   contracts.GetVersionInfo(),
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		StartTime:     hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset not loaded"}
	}
	for _, w := range []*dataprocessing.Window{hs.dataset.Previous, hs.dataset.Last} {
		if w.Empty() {
			return ServiceHealth{
				Status:  StatusNotReady,
				Message: fmt.Sprintf("%s window is empty", w.Name),
			}
		}
	}
	return ServiceHealth{Status: StatusReady, Message: "dataset loaded"}
}
