package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the prometheus registry for the API and the shop floor counters.
// All recording methods are safe on a nil receiver so callers never need to check.
type Metrics struct {
	registry       *prometheus.Registry
	httpReqCnt     *prometheus.CounterVec
	httpDur        *prometheus.HistogramVec
	httpInfl       *prometheus.GaugeVec
	docsCreated    *prometheus.CounterVec
	jobTransitions *prometheus.CounterVec
	paymentsCnt    *prometheus.CounterVec
	paymentsAmount prometheus.Counter
	lowStock       *prometheus.CounterVec
}

// New registers every collector under namespace
func New(namespace string) *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: r,
		httpReqCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
		}, []string{"method", "route", "status"}),
		httpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInfl: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_inflight",
		}, []string{"route"}),
		docsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "documents_created_total",
			Help: "Orders, quotes, jobs and invoices created, by number prefix.",
		}, []string{"prefix"}),
		jobTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "job_transitions_total",
			Help: "Job status changes.",
		}, []string{"from", "to"}),
		paymentsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_recorded_total",
		}, []string{"method"}),
		paymentsAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_amount_total",
			Help: "Sum of recorded payment amounts.",
		}),
		lowStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "low_stock_alerts_total",
		}, []string{"material"}),
	}
	r.MustRegister(m.httpReqCnt, m.httpDur, m.httpInfl,
		m.docsCreated, m.jobTransitions, m.paymentsCnt, m.paymentsAmount, m.lowStock)
	return m
}

// DocumentCreated counts a newly numbered document
func (m *Metrics) DocumentCreated(prefix string) {
	if m == nil {
		return
	}
	m.docsCreated.WithLabelValues(prefix).Inc()
}

// JobTransition counts a job status change
func (m *Metrics) JobTransition(from, to string) {
	if m == nil {
		return
	}
	m.jobTransitions.WithLabelValues(from, to).Inc()
}

// PaymentRecorded counts a payment and adds its amount
func (m *Metrics) PaymentRecorded(method string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsCnt.WithLabelValues(method).Inc()
	m.paymentsAmount.Add(amount)
}

// LowStock counts a low stock warning for material
func (m *Metrics) LowStock(material string) {
	if m == nil {
		return
	}
	m.lowStock.WithLabelValues(material).Inc()
}

// Middleware records request counts, latency and in-flight requests per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var (
	mu       sync.RWMutex
	instance *Metrics
)

// Default returns the process-wide metrics, or nil when none were installed
func Default() *Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// SetDefault installs m as the process-wide metrics
func SetDefault(m *Metrics) {
	mu.Lock()
	instance = m
	mu.Unlock()
}
