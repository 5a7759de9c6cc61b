package performance

import (
	"sort"
	"sync"
	"time"
)

// Tracker aggregates completed markers per operation.
type Tracker struct {
	mu      sync.RWMutex
	stats   map[string]*OperationStats
	recent  []*Marker
	started time.Time
	config  *TrackerConfig
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxRecent     int           // completed markers retained for inspection
	SlowThreshold time.Duration // operations slower than this count as slow
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxRecent:     200,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		stats:   make(map[string]*OperationStats),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates a marker for an operation. Success is assumed
// until SetSuccess(false) or SetError is called.
func (t *Tracker) StartOperation(operation, subject string) *Marker {
	return &Marker{
		Operation: operation,
		Subject:   subject,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[m.Operation]
	if !ok {
		s = &OperationStats{Operation: m.Operation}
		t.stats[m.Operation] = s
	}
	s.Count++
	s.TotalDuration += m.Duration
	if m.Duration > s.MaxDuration {
		s.MaxDuration = m.Duration
	}
	if !m.Success {
		s.Failures++
	}
	if m.Duration > t.config.SlowThreshold {
		s.SlowCount++
	}

	t.recent = append(t.recent, m)
	if len(t.recent) > t.config.MaxRecent {
		t.recent = t.recent[len(t.recent)-t.config.MaxRecent:]
	}
}

// Stats returns a copy of the per-operation aggregates sorted by name.
func (t *Tracker) Stats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]OperationStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Health classifies the tracker by failure and slow ratios.
func (t *Tracker) Health() HealthStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total, failures, slow int
	for _, s := range t.stats {
		total += s.Count
		failures += s.Failures
		slow += s.SlowCount
	}
	if total == 0 {
		return HealthUnknown
	}
	failRatio := float64(failures) / float64(total)
	slowRatio := float64(slow) / float64(total)
	switch {
	case failRatio > 0.25 || slowRatio > 0.5:
		return HealthUnhealthy
	case failRatio > 0.05 || slowRatio > 0.1:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
