// Package performance records request timings and runtime statistics.
package performance

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/peternagy/dbquerytool/internal/types"
)

// RuntimeStats holds Go runtime statistics.
type RuntimeStats struct {
	HeapAlloc      uint64 `json:"heapAlloc"`      // Bytes allocated and in use
	HeapSys        uint64 `json:"heapSys"`        // Bytes obtained from system
	HeapInuse      uint64 `json:"heapInuse"`      // Bytes in non-idle spans
	StackInuse     uint64 `json:"stackInuse"`     // Bytes in stack spans
	Goroutines     int    `json:"goroutines"`     // Number of goroutines
	NumGC          uint32 `json:"numGC"`          // Number of completed GC cycles
	LastGCPauseNs  uint64 `json:"lastGCPauseNs"`  // Duration of last GC pause in nanoseconds
	TotalAllocated uint64 `json:"totalAllocated"` // Total bytes allocated (cumulative)

	OpenSessions  int    `json:"openSessions"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Timestamp     string `json:"timestamp"`
}

// Service collects request metrics into its own metrics set.
type Service struct {
	set       *metrics.Set
	startTime time.Time
	sessions  func() int
}

// NewService creates a metrics service. sessions reports the number of open
// sessions and may be nil.
func NewService(sessions func() int) *Service {
	s := &Service{
		set:       metrics.NewSet(),
		startTime: time.Now(),
		sessions:  sessions,
	}
	s.set.NewGauge("dbqt_open_sessions", func() float64 {
		return float64(s.openSessions())
	})
	return s
}

func (s *Service) openSessions() int {
	if s.sessions == nil {
		return 0
	}
	return s.sessions()
}

// ObserveRequest records one dispatched request. op is the operation or command name.
func (s *Service) ObserveRequest(kind types.StoreKind, op string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.set.GetOrCreateCounter(fmt.Sprintf(`dbqt_requests_total{kind=%q,op=%q,status=%q}`, kind, op, status)).Inc()
	if err == nil {
		s.set.GetOrCreateHistogram(fmt.Sprintf(`dbqt_request_duration_seconds{kind=%q,op=%q}`, kind, op)).Update(elapsed.Seconds())
	}
}

// RequestCount returns how many requests were recorded for the label combination.
func (s *Service) RequestCount(kind types.StoreKind, op string, failed bool) uint64 {
	status := "ok"
	if failed {
		status = "error"
	}
	return s.set.GetOrCreateCounter(fmt.Sprintf(`dbqt_requests_total{kind=%q,op=%q,status=%q}`, kind, op, status)).Get()
}

// WritePrometheus writes the request metrics in Prometheus text format.
// Process metrics are appended when includeProcess is set.
func (s *Service) WritePrometheus(w io.Writer, includeProcess bool) {
	s.set.WritePrometheus(w)
	if includeProcess {
		metrics.WriteProcessMetrics(w)
	}
}

// Runtime returns current Go runtime statistics.
func (s *Service) Runtime() *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var lastGCPause uint64
	if memStats.NumGC > 0 {
		// PauseNs is a circular buffer of recent GC pause times
		lastGCPause = memStats.PauseNs[(memStats.NumGC+255)%256]
	}

	return &RuntimeStats{
		HeapAlloc:      memStats.HeapAlloc,
		HeapSys:        memStats.HeapSys,
		HeapInuse:      memStats.HeapInuse,
		StackInuse:     memStats.StackInuse,
		Goroutines:     runtime.NumGoroutine(),
		NumGC:          memStats.NumGC,
		LastGCPauseNs:  lastGCPause,
		TotalAllocated: memStats.TotalAlloc,
		OpenSessions:   s.openSessions(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		Timestamp:      time.Now().Format(time.RFC3339),
	}
}
