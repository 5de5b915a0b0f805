package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts booking-engine outcomes for operational dashboards.
type Collector struct {
	registry       *prometheus.Registry
	bookings       *prometheus.CounterVec
	cancellations  *prometheus.CounterVec
	refundFailures prometheus.Counter
	remindersArmed prometheus.Counter
	reassignments  *prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peersupport_bookings_total",
			Help: "Booking attempts by result (confirmed, slot_conflict, payment_failed).",
		}, []string{"result"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peersupport_cancellations_total",
			Help: "Session cancellations by cancelling actor.",
		}, []string{"actor"}),
		refundFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peersupport_refund_failures_total",
			Help: "Refunds the processor failed to issue, pending manual reconciliation.",
		}),
		remindersArmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peersupport_reminders_armed_total",
			Help: "Pre-session reminders handed to the delivery service.",
		}),
		reassignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peersupport_reassignments_total",
			Help: "Supporter reassignment searches by result (matched, no_match).",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.bookings,
		c.cancellations,
		c.refundFailures,
		c.remindersArmed,
		c.reassignments,
	)
	return c
}

func (c *Collector) RecordBooking(result string)      { c.bookings.WithLabelValues(result).Inc() }
func (c *Collector) RecordCancellation(actor string)  { c.cancellations.WithLabelValues(actor).Inc() }
func (c *Collector) RecordRefundFailure()             { c.refundFailures.Inc() }
func (c *Collector) RecordRemindersArmed(count int)   { c.remindersArmed.Add(float64(count)) }
func (c *Collector) RecordReassignment(result string) { c.reassignments.WithLabelValues(result).Inc() }

// Handler exposes the registry for the /metrics route.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
