package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/dlmiddlecote/sqlstats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "iao"

// Service owns a dedicated prometheus registry so tests can create as many
// instances as they like without colliding on the default registerer.
type Service struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	transactions *prometheus.CounterVec
}

func New() *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		registry: registry,
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Solana JSON-RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Solana JSON-RPC request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "program",
			Name:      "transactions_total",
			Help:      "Program transactions by instruction and outcome.",
		}, []string{"instruction", "outcome"}),
	}

	registry.MustRegister(s.rpcRequests, s.rpcDuration, s.transactions)

	return s
}

// ObserveRPC records one JSON-RPC call.
func (s *Service) ObserveRPC(method string, started time.Time, err error) {
	if s == nil {
		return
	}

	s.rpcRequests.WithLabelValues(method, outcome(err)).Inc()
	s.rpcDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// ObserveTransaction records the final outcome of a program transaction.
func (s *Service) ObserveTransaction(instruction string, err error) {
	if s == nil {
		return
	}

	s.transactions.WithLabelValues(instruction, outcome(err)).Inc()
}

// RegisterDB exports connection pool statistics of db.
func (s *Service) RegisterDB(name string, db *sql.DB) error {
	return s.registry.Register(sqlstats.NewStatsCollector(name, db))
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Gatherer exposes the registry for tests.
func (s *Service) Gatherer() prometheus.Gatherer {
	return s.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}
