package metrics

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()
	require.NotNil(t, m.Registry)
	assert.Nil(t, m.logger)

	m.RecordQuery("plan", OutcomeFound, 1)
	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["busplanner_path_queries_total"])
	assert.True(t, names["busplanner_search_runs_total"])
	assert.True(t, names["busplanner_db_connections_open"])
}

func TestObserveGraphBuild(t *testing.T) {
	m := New()
	visit := func(stop, route string, h, min int) schedule.StopVisit {
		return schedule.StopVisit{
			Stop:          schedule.StopID(stop),
			Route:         schedule.RouteID(route),
			DepartTime:    schedule.NewTimeOfDay(h, min),
			OperatingDays: schedule.EveryDay,
		}
	}
	g := timegraph.Build([]schedule.StopVisit{
		visit("P", "1", 8, 0),
		visit("Q", "1", 8, 20),
		visit("Q", "2", 8, 10),
	}, schedule.Friday)

	m.ObserveGraphBuild(g, 3*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.GraphNodes.WithLabelValues("Friday")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphEdges.WithLabelValues("Friday", "travel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GraphEdges.WithLabelValues("Friday", "transfer")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GraphBuildDuration))
}

func TestRecordQuery(t *testing.T) {
	m := New()
	m.RecordQuery("plan", OutcomeFound, 3)
	m.RecordQuery("plan", OutcomeNoPath, 2)
	m.RecordQuery("plan", OutcomeUnknownStop, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PathQueriesTotal.WithLabelValues("plan", OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PathQueriesTotal.WithLabelValues("plan", OutcomeUnknownStop)))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SearchRunsTotal))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordQuery("plan", OutcomeFound, 1)
		m.ObserveGraphBuild(nil, time.Second)
	})
}

func TestStartDBStatsCollector(t *testing.T) {
	t.Run("nil db", func(t *testing.T) {
		m := New()
		m.StartDBStatsCollector(nil, time.Second)
		assert.False(t, m.collectorStarted.Load())
		m.Shutdown()
	})

	t.Run("collects and stops", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		require.NoError(t, db.Ping())

		m := New()
		m.StartDBStatsCollector(db, 20*time.Millisecond)
		m.StartDBStatsCollector(db, 20*time.Millisecond)
		assert.True(t, m.collectorStarted.Load())

		assert.Eventually(t, func() bool {
			return testutil.ToFloat64(m.DBConnectionsOpen) >= 1
		}, time.Second, 10*time.Millisecond)

		done := make(chan struct{})
		go func() {
			m.Shutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Shutdown did not return")
		}
		m.Shutdown()
	})
}
