// metrics.go

// Package metrics owns the Prometheus collectors of the shop.
//
// A nil *Recorder is valid and records nothing, so services can be built without metrics in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomePurchased   = "purchased"
	OutcomeUnprocessed = "unprocessed"
	OutcomeSkipped     = "skipped"
)

type Recorder struct {
	registry *prometheus.Registry

	purchaseLines      *prometheus.CounterVec
	ticketsCreated     prometheus.Counter
	ticketAmount       prometheus.Counter
	unresolvedItems    *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		purchaseLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_purchase_lines_total",
				Help: "Cart lines seen by the purchase workflow, by outcome.",
			},
			[]string{"outcome"},
		),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_tickets_created_total",
			Help: "Tickets emitted by successful purchases.",
		}),
		ticketAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_ticket_amount_total",
			Help: "Sum of ticket amounts.",
		}),
		unresolvedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_cart_unresolved_items_total",
				Help: "Cart entries dropped because their product could not be resolved.",
			},
			[]string{"operation"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_catalog_notifications_total",
				Help: "Catalog listing notifications by sink and outcome.",
			},
			[]string{"sink", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.purchaseLines, r.ticketsCreated, r.ticketAmount, r.unresolvedItems,
		r.notifications, r.httpRequests, r.httpRequestSeconds,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) PurchaseLine(outcome string) {
	if r == nil {
		return
	}
	r.purchaseLines.WithLabelValues(outcome).Inc()
}

func (r *Recorder) TicketCreated(amount float64) {
	if r == nil {
		return
	}
	r.ticketsCreated.Inc()
	r.ticketAmount.Add(amount)
}

func (r *Recorder) UnresolvedItems(operation string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.unresolvedItems.WithLabelValues(operation).Add(float64(n))
}

func (r *Recorder) Notification(sink, outcome string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(sink, outcome).Inc()
}

func (r *Recorder) HTTPRequest(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpRequestSeconds.WithLabelValues(method, route).Observe(seconds)
}
