package infrastructure

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetrics publishes Go runtime figures as observable gauges.
// Values are read when the meter is collected, so nothing needs a ticker.
type SystemMetrics struct {
	startTime    time.Time
	registration metric.Registration
}

// SystemStats holds a snapshot of runtime statistics
type SystemStats struct {
	GoRoutines    int64         `json:"goroutines"`
	HeapAlloc     int64         `json:"heap_alloc_bytes"`
	MemorySystem  int64         `json:"memory_system_bytes"`
	GCCount       uint32        `json:"gc_count"`
	LastGCPause   time.Duration `json:"last_gc_pause_ns"`
	CPUCount      int           `json:"cpu_count"`
	ProcessUptime time.Duration `json:"uptime_ns"`
	Timestamp     time.Time     `json:"timestamp"`
}

// NewSystemMetrics registers the runtime gauges on meter
func NewSystemMetrics(meter metric.Meter, startTime time.Time) (*SystemMetrics, error) {
	goroutines, err1 := meter.Int64ObservableGauge("system_goroutines",
		metric.WithDescription("Number of active goroutines"))
	heap, err2 := meter.Int64ObservableGauge("system_memory_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"), metric.WithUnit("By"))
	sys, err3 := meter.Int64ObservableGauge("system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"), metric.WithUnit("By"))
	gcCount, err4 := meter.Int64ObservableCounter("system_gc_count_total",
		metric.WithDescription("Total number of completed garbage collections"))
	uptime, err5 := meter.Float64ObservableGauge("system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"), metric.WithUnit("s"))
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return nil, err
	}

	sm := &SystemMetrics{startTime: startTime}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sm.Snapshot()
		o.ObserveInt64(goroutines, stats.GoRoutines)
		o.ObserveInt64(heap, stats.HeapAlloc)
		o.ObserveInt64(sys, stats.MemorySystem)
		o.ObserveInt64(gcCount, int64(stats.GCCount))
		o.ObserveFloat64(uptime, stats.ProcessUptime.Seconds())
		return nil
	}, goroutines, heap, sys, gcCount, uptime)
	if err != nil {
		return nil, err
	}
	sm.registration = reg

	return sm, nil
}

// Snapshot reads the current runtime statistics
func (sm *SystemMetrics) Snapshot() SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		HeapAlloc:     int64(mem.HeapAlloc),
		MemorySystem:  int64(mem.Sys),
		GCCount:       mem.NumGC,
		LastGCPause:   time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(sm.startTime),
		Timestamp:     time.Now(),
	}
}

// Close unregisters the gauge callback
func (sm *SystemMetrics) Close() error {
	if sm.registration == nil {
		return nil
	}
	return sm.registration.Unregister()
}
