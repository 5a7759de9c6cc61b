// Package monitoring tracks hit/miss behaviour of the catalog cache layers.
package monitoring

import (
	"sort"
	"sync"
	"time"
)

// Cache layers recorded by the catalog store.
const (
	LayerProducts = "products"
	LayerContent  = "content"
	LayerSettings = "settings"
)

// CacheHealthStatus summarizes how well the cache is absorbing reads.
type CacheHealthStatus string

const (
	CacheHealthy   CacheHealthStatus = "healthy"
	CacheDegraded  CacheHealthStatus = "degraded"
	CacheUnhealthy CacheHealthStatus = "unhealthy"
)

// CacheMonitorConfig holds the hit ratio thresholds.
type CacheMonitorConfig struct {
	MinHealthyHitRatio  float64
	MinDegradedHitRatio float64
	// MinSamples keeps a cold layer from being judged on a handful of reads.
	MinSamples int64
}

func DefaultCacheMonitorConfig() CacheMonitorConfig {
	return CacheMonitorConfig{
		MinHealthyHitRatio:  0.8,
		MinDegradedHitRatio: 0.5,
		MinSamples:          20,
	}
}

// CacheLayerMetrics represents lookup metrics for a single cache layer.
type CacheLayerMetrics struct {
	LayerName     string        `json:"layerName"`
	TotalRequests int64         `json:"totalRequests"`
	CacheHits     int64         `json:"cacheHits"`
	CacheMisses   int64         `json:"cacheMisses"`
	HitRatio      float64       `json:"hitRatio"`
	AvgLatency    time.Duration `json:"avgLatency"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}

// CacheReport is a point-in-time copy of every layer plus the overall health.
type CacheReport struct {
	Health  CacheHealthStatus   `json:"health"`
	Warning []string            `json:"warningLayers,omitempty"`
	Layers  []CacheLayerMetrics `json:"layers"`
	Since   time.Time           `json:"since"`
}

// CacheMonitor records cache lookups. The zero value is not usable; use
// NewCacheMonitor. A nil *CacheMonitor ignores every call.
type CacheMonitor struct {
	mu      sync.Mutex
	config  CacheMonitorConfig
	layers  map[string]*CacheLayerMetrics
	started time.Time
}

func NewCacheMonitor(config CacheMonitorConfig) *CacheMonitor {
	return &CacheMonitor{
		config:  config,
		layers:  make(map[string]*CacheLayerMetrics),
		started: time.Now().UTC(),
	}
}

// RecordLookup counts one read against layer.
func (m *CacheMonitor) RecordLookup(layer string, hit bool, latency time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, ok := m.layers[layer]
	if !ok {
		metrics = &CacheLayerMetrics{LayerName: layer}
		m.layers[layer] = metrics
	}
	metrics.TotalRequests++
	if hit {
		metrics.CacheHits++
	} else {
		metrics.CacheMisses++
	}
	metrics.HitRatio = float64(metrics.CacheHits) / float64(metrics.TotalRequests)

	// exponential moving average
	if metrics.AvgLatency == 0 {
		metrics.AvgLatency = latency
	} else {
		metrics.AvgLatency = time.Duration(float64(metrics.AvgLatency)*0.9 + float64(latency)*0.1)
	}
	metrics.LastUpdated = time.Now().UTC()
}

// Report returns the layers sorted by name with the derived health.
func (m *CacheMonitor) Report() CacheReport {
	if m == nil {
		return CacheReport{Health: CacheHealthy}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	report := CacheReport{Health: CacheHealthy, Since: m.started}
	critical := 0
	for _, metrics := range m.layers {
		report.Layers = append(report.Layers, *metrics)
		if metrics.TotalRequests < m.config.MinSamples {
			continue
		}
		switch {
		case metrics.HitRatio < m.config.MinDegradedHitRatio:
			critical++
			report.Warning = append(report.Warning, metrics.LayerName)
		case metrics.HitRatio < m.config.MinHealthyHitRatio:
			report.Warning = append(report.Warning, metrics.LayerName)
		}
	}
	sort.Slice(report.Layers, func(i, j int) bool { return report.Layers[i].LayerName < report.Layers[j].LayerName })
	sort.Strings(report.Warning)

	switch {
	case critical > 0:
		report.Health = CacheUnhealthy
	case len(report.Warning) > 0:
		report.Health = CacheDegraded
	}
	return report
}

// Reset drops all counters.
func (m *CacheMonitor) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layers = make(map[string]*CacheLayerMetrics)
	m.started = time.Now().UTC()
}
