package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the ingestion pipeline. A nil
// *Metrics is valid and records nothing, so tests can wire services without
// touching the global registry.
type Metrics struct {
	BillsAssembled prometheus.Counter
	BillsSkipped   prometheus.Counter
	StubsCreated   prometheus.Counter
	FetchFailures  prometheus.Counter
	TasksEnqueued  *prometheus.CounterVec
	TasksHandled   *prometheus.CounterVec
	TaskFailures   *prometheus.CounterVec
}

// New creates and registers all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		BillsAssembled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billgraph_bills_assembled_total",
			Help: "Total number of bill documents fully assembled",
		}),
		BillsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billgraph_bills_skipped_total",
			Help: "Total number of documents skipped because last-modified was unchanged",
		}),
		StubsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billgraph_stubs_created_total",
			Help: "Total number of stub bills created from related-bill references",
		}),
		FetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billgraph_fetch_failures_total",
			Help: "Total number of archive fetches that failed",
		}),
		TasksEnqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "billgraph_tasks_enqueued_total",
			Help: "Total number of tasks enqueued, by kind",
		}, []string{"kind"}),
		TasksHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "billgraph_tasks_handled_total",
			Help: "Total number of tasks handled successfully, by kind",
		}, []string{"kind"}),
		TaskFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "billgraph_task_failures_total",
			Help: "Total number of tasks that failed, by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) BillAssembled() {
	if m != nil {
		m.BillsAssembled.Inc()
	}
}

func (m *Metrics) BillSkipped() {
	if m != nil {
		m.BillsSkipped.Inc()
	}
}

func (m *Metrics) StubCreated() {
	if m != nil {
		m.StubsCreated.Inc()
	}
}

func (m *Metrics) FetchFailed() {
	if m != nil {
		m.FetchFailures.Inc()
	}
}

func (m *Metrics) TaskEnqueued(kind string) {
	if m != nil {
		m.TasksEnqueued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) TaskHandled(kind string) {
	if m != nil {
		m.TasksHandled.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) TaskFailed(kind string) {
	if m != nil {
		m.TaskFailures.WithLabelValues(kind).Inc()
	}
}
