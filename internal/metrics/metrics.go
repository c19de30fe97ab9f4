package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Listener metrics
	LastProcessedBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_last_processed_block",
			Help: "The last block height committed together with the checkpoint",
		},
	)

	BlocksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwa_listener_blocks_processed_total",
			Help: "Total number of blocks processed",
		},
	)

	BlockProcessingTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rwa_listener_block_processing_duration_seconds",
			Help:    "Time taken to apply a block, from begin to commit",
			Buckets: prometheus.DefBuckets,
		},
	)

	BlockRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwa_listener_block_retries_total",
			Help: "Total number of blocks rolled back and applied again after a transient database error",
		},
	)

	// Processor metrics
	CallsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_calls_processed_total",
			Help: "Total number of contract calls handed to a processor",
		},
		[]string{"processor", "kind"},
	)

	EventsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_events_applied_total",
			Help: "Total number of contract events applied to the projection",
		},
		[]string{"processor"},
	)

	ContractsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_contracts_registered_total",
			Help: "Total number of contract instances added to the registry",
		},
		[]string{"processor"},
	)

	// Notifier metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_notifications_total",
			Help: "Total number of block notifications by outcome",
		},
		[]string{"status"},
	)

	// Database metrics
	DBMaintenanceSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_db_maintenance_steps_total",
			Help: "Maintenance steps run between blocks by step and outcome",
		},
		[]string{"step", "status"},
	)

	DBMaintenanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rwa_listener_db_maintenance_duration_seconds",
			Help:    "Time the block loop was held back by a maintenance run",
			Buckets: prometheus.DefBuckets,
		},
	)

	DBLastMaintenance = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_db_last_maintenance_timestamp",
			Help: "Unix timestamp of the last maintenance run",
		},
	)

	DBSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_db_size_bytes",
			Help: "Size of the projection database including its WAL",
		},
	)

	DBReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rwa_listener_db_reclaimed_bytes_total",
			Help: "Bytes returned to the file system by maintenance",
		},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rwa_listener_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwa_listener_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rwa_listener_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func LastProcessedBlockSet(height uint64) {
	LastProcessedBlock.Set(float64(height))
}

func BlockProcessedInc(duration time.Duration) {
	BlocksProcessed.Inc()
	BlockProcessingTime.Observe(duration.Seconds())
}

func BlockRetriesInc() {
	BlockRetries.Inc()
}

func CallProcessedInc(processor, kind string, applied int) {
	CallsProcessed.WithLabelValues(processor, kind).Inc()
	EventsApplied.WithLabelValues(processor).Add(float64(applied))
}

func ContractRegisteredInc(processor string) {
	ContractsRegistered.WithLabelValues(processor).Inc()
}

func NotificationInc(success bool) {
	if success {
		NotificationsPublished.WithLabelValues("published").Inc()
		return
	}
	NotificationsPublished.WithLabelValues("failed").Inc()
}

// DBMaintenanceStepInc counts one maintenance step, failed when err is not nil.
func DBMaintenanceStepInc(step string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DBMaintenanceSteps.WithLabelValues(step, status).Inc()
}

func DBMaintenanceDone(duration time.Duration, size, reclaimed int64) {
	DBMaintenanceDuration.Observe(duration.Seconds())
	DBLastMaintenance.Set(float64(time.Now().UTC().Unix()))
	DBSize.Set(float64(size))
	if reclaimed > 0 {
		DBReclaimed.Add(float64(reclaimed))
	}
}

func ErrorsInc(component, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	Uptime.Set(time.Since(startTime).Seconds())

	Goroutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
