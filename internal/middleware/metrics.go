package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRowsLoaded counts rows accepted by the bulk loader per table.
	ImportRowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastebase_import_rows_loaded_total",
		Help: "Total number of rows persisted by the bulk loader, by table",
	}, []string{"table"})

	// ImportRowsSkipped counts rows dropped during normalization or filtered
	// by the loader's accepted-id tracking, by table and reason.
	ImportRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastebase_import_rows_skipped_total",
		Help: "Total number of input rows skipped during import, by table and reason",
	}, []string{"table", "reason"})

	// AggregateRecomputes counts aggregate recompute invocations by trigger.
	AggregateRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastebase_aggregate_recomputes_total",
		Help: "Total number of recipe aggregate recomputations, by trigger",
	}, []string{"trigger"})

	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastebase_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler for the Prometheus middleware.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
