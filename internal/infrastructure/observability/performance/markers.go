// Package performance provides performance markers and aggregation for
// storefront operations.
package performance

import (
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g. "create_product_request"
	Subject   string         `json:"subject"`   // entity id or other correlation key
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata"`
	Completed bool           `json:"completed"`

	tracker *Tracker
	once    sync.Once
}

// Complete marks the operation as finished and reports it to the tracker.
func (m *Marker) Complete() {
	m.once.Do(func() {
		m.EndTime = time.Now()
		m.Duration = m.EndTime.Sub(m.StartTime)
		m.Completed = true
		if m.tracker != nil {
			m.tracker.record(m)
		}
	})
}

// Elapsed returns the time since the marker started, usable before Complete.
func (m *Marker) Elapsed() time.Duration {
	if m.Completed {
		return m.Duration
	}
	return time.Since(m.StartTime)
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// OperationStats aggregates completed markers for one operation name.
type OperationStats struct {
	Operation     string        `json:"operation"`
	Count         int           `json:"count"`
	Failures      int           `json:"failures"`
	TotalDuration time.Duration `json:"totalDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
	SlowCount     int           `json:"slowCount"`
}

// AverageDuration returns the mean duration, or zero when nothing completed.
func (s OperationStats) AverageDuration() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Count)
}

// HealthStatus represents the overall health of a system component
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)
