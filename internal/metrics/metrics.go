// Package metrics exposes the planner's Prometheus metrics.
package metrics

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ia560/busplanner/internal/timegraph"
)

// Query outcomes used as the "outcome" label of PathQueriesTotal.
const (
	OutcomeFound       = "found"
	OutcomeNoPath      = "no_path"
	OutcomeUnknownStop = "unknown_stop"
	OutcomeError       = "error"
)

// Metrics owns a private registry and every collector registered in it.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GraphBuildDuration *prometheus.HistogramVec
	GraphNodes         *prometheus.GaugeVec
	GraphEdges         *prometheus.GaugeVec
	PathQueriesTotal   *prometheus.CounterVec
	SearchRunsTotal    prometheus.Counter
	ScheduleVisits     prometheus.Gauge

	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitSecondsTotal prometheus.Counter

	logger *slog.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New returns Metrics without a logger.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger returns Metrics that report collector failures to logger.
func NewWithLogger(logger *slog.Logger) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		logger:   logger,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busplanner_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "busplanner_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		GraphBuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "busplanner_graph_build_duration_seconds",
			Help:    "Time spent building a time-expanded graph",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"day"}),
		GraphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "busplanner_graph_nodes",
			Help: "Nodes in the most recently built graph for a day",
		}, []string{"day"}),
		GraphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "busplanner_graph_edges",
			Help: "Edges in the most recently built graph for a day, by kind",
		}, []string{"day", "kind"}),
		PathQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busplanner_path_queries_total",
			Help: "Path queries by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		SearchRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busplanner_search_runs_total",
			Help: "Dijkstra searches run by the planner",
		}),
		ScheduleVisits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busplanner_schedule_visits",
			Help: "Stop visits in the loaded schedule",
		}),

		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busplanner_db_connections_open",
			Help: "Open database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busplanner_db_connections_in_use",
			Help: "Database connections in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "busplanner_db_connections_idle",
			Help: "Idle database connections",
		}),
		DBWaitSecondsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "busplanner_db_wait_seconds_total",
			Help: "Time spent waiting for a database connection",
		}),
	}

	m.Registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GraphBuildDuration,
		m.GraphNodes,
		m.GraphEdges,
		m.PathQueriesTotal,
		m.SearchRunsTotal,
		m.ScheduleVisits,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitSecondsTotal,
	)
	return m
}

// ObserveGraphBuild records the size and build time of a graph.
func (m *Metrics) ObserveGraphBuild(g *timegraph.Graph, elapsed time.Duration) {
	if m == nil || g == nil {
		return
	}
	day := g.Day().String()
	stats := g.Stats()
	m.GraphBuildDuration.WithLabelValues(day).Observe(elapsed.Seconds())
	m.GraphNodes.WithLabelValues(day).Set(float64(stats.Nodes))
	m.GraphEdges.WithLabelValues(day, timegraph.Travel.String()).Set(float64(stats.TravelEdges))
	m.GraphEdges.WithLabelValues(day, timegraph.Transfer.String()).Set(float64(stats.TransferEdges))
}

// RecordQuery counts one query and the searches it ran.
func (m *Metrics) RecordQuery(endpoint, outcome string, searchRuns int) {
	if m == nil {
		return
	}
	m.PathQueriesTotal.WithLabelValues(endpoint, outcome).Inc()
	if searchRuns > 0 {
		m.SearchRunsTotal.Add(float64(searchRuns))
	}
}

// StartDBStatsCollector copies db's pool statistics into the DB gauges every
// interval until Shutdown. Only the first call starts a collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil || !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil && m.logger != nil {
				m.logger.Error("db_stats_collector_panicked", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastWait time.Duration
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
				m.DBConnectionsIdle.Set(float64(stats.Idle))
				if delta := stats.WaitDuration - lastWait; delta > 0 {
					m.DBWaitSecondsTotal.Add(delta.Seconds())
				}
				lastWait = stats.WaitDuration
			}
		}
	}()
}

// Shutdown stops the DB stats collector and waits for it. It may be called
// more than once.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
