package events

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes engine activity as Prometheus collectors, fed from the
// event bus via Apply. All metrics carry the "workflow_engine" namespace.
type Metrics struct {
	nodeExecutions *prometheus.CounterVec
	nodeFailures   *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	workflowsLive  prometheus.Gauge

	mu       sync.Mutex
	started  map[string]time.Time // workflow_id:node_id -> start time
	registry prometheus.Registerer
}

// NewMetrics registers the engine collectors with the given registry.
// A nil registry uses the global default.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		started:  make(map[string]time.Time),
		nodeExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workflow_engine",
			Name:      "node_executions_total",
			Help:      "Completed node executions by node type and route",
		}, []string{"node_type", "route"}),
		nodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workflow_engine",
			Name:      "node_failures_total",
			Help:      "Failed node executions by node type",
		}, []string{"node_type"}),
		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workflow_engine",
			Name:      "node_duration_seconds",
			Help:      "Node execution duration from start to completion",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}, []string{"node_type"}),
		workflowsLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "workflow_engine",
			Name:      "workflows_running",
			Help:      "Workflows currently running",
		}),
	}
}

// Apply folds one event into the collectors. Subscribe it to a bus.
func (m *Metrics) Apply(e Event) {
	switch e.Kind {
	case WorkflowStarted:
		m.workflowsLive.Inc()
	case WorkflowCompleted, WorkflowFailed:
		m.workflowsLive.Dec()
	case NodeStarted:
		m.mu.Lock()
		m.started[e.WorkflowID+":"+e.NodeID] = e.Timestamp
		m.mu.Unlock()
	case NodeCompleted:
		m.nodeExecutions.WithLabelValues(e.NodeType, e.Route).Inc()
		m.observeDuration(e)
	case NodeFailed:
		m.nodeFailures.WithLabelValues(e.NodeType).Inc()
		m.observeDuration(e)
	}
}

func (m *Metrics) observeDuration(e Event) {
	key := e.WorkflowID + ":" + e.NodeID
	m.mu.Lock()
	start, ok := m.started[key]
	delete(m.started, key)
	m.mu.Unlock()
	if !ok {
		return
	}
	m.nodeDuration.WithLabelValues(e.NodeType).Observe(e.Timestamp.Sub(start).Seconds())
}
