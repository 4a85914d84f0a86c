package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the fund's Prometheus instruments behind its own registry.
type Collector struct {
	registry            *prometheus.Registry
	loansIssued         prometheus.Counter
	loansCompleted      prometheus.Counter
	paymentsRecorded    prometheus.Counter
	depositsRecorded    prometheus.Counter
	overdueInstallments prometheus.Gauge
	requestDuration     *prometheus.HistogramVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		loansIssued: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fund_loans_issued_total",
			Help: "Total number of loans issued",
		}),
		loansCompleted: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fund_loans_completed_total",
			Help: "Total number of loans fully repaid",
		}),
		paymentsRecorded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fund_installment_payments_total",
			Help: "Total number of installment payments recorded",
		}),
		depositsRecorded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fund_deposits_recorded_total",
			Help: "Total number of member deposits recorded",
		}),
		overdueInstallments: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "fund_overdue_installments",
			Help: "Unpaid installments past their due date, from the last scheduler sweep",
		}),
		requestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fund_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

func (c *Collector) LoanIssued()      { c.loansIssued.Inc() }
func (c *Collector) LoanCompleted()   { c.loansCompleted.Inc() }
func (c *Collector) PaymentRecorded() { c.paymentsRecorded.Inc() }
func (c *Collector) DepositRecorded() { c.depositsRecorded.Inc() }

func (c *Collector) SetOverdueInstallments(n int) {
	c.overdueInstallments.Set(float64(n))
}

func (c *Collector) ObserveRequest(method, path string, seconds float64) {
	c.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// Middleware records request latency labeled by the mux route template, so
// parameterized paths do not explode the label cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		c.ObserveRequest(r.Method, path, time.Since(start).Seconds())
	})
}

// Handler exposes the registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
