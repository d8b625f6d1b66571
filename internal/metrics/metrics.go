package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventadmin_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	storeOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_store_operations_total",
			Help: "Event store operations by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	uploadFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_upload_files_total",
			Help: "Files sent to the media host by outcome",
		},
		[]string{"outcome"},
	)

	listingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventadmin_listing_cache_total",
			Help: "Listing cache lookups by result",
		},
		[]string{"result"},
	)

	databaseConnectionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventadmin_database_connections_open",
			Help: "Number of open database connections",
		},
	)

	uploadBatchesLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventadmin_upload_batches_live",
			Help: "Number of upload batches held in memory",
		},
	)
)

var once sync.Once

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(storeOpsTotal)
	prometheus.MustRegister(uploadFilesTotal)
	prometheus.MustRegister(listingCacheTotal)
	prometheus.MustRegister(databaseConnectionsOpen)
	prometheus.MustRegister(uploadBatchesLive)

	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordAPIRequest(method, path string, status int, duration float64) {
	apiRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordStoreOp counts one gateway call. outcome is "ok", "not_found" or "error".
func RecordStoreOp(op, outcome string) {
	storeOpsTotal.WithLabelValues(op, outcome).Inc()
}

func RecordUpload(ok bool) {
	if ok {
		uploadFilesTotal.WithLabelValues("uploaded").Inc()
		return
	}
	uploadFilesTotal.WithLabelValues("failed").Inc()
}

func RecordCacheLookup(hit bool) {
	if hit {
		listingCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	listingCacheTotal.WithLabelValues("miss").Inc()
}

func SetLiveBatches(n int) {
	uploadBatchesLive.Set(float64(n))
}

func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	databaseConnectionsOpen.Set(float64(sqlDB.Stats().OpenConnections))
	return nil
}
