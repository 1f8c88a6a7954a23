// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"trackdechets/internal/model"
)

// Metrics groups the document counters. A nil *Metrics records nothing.
type Metrics struct {
	signatures       *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	pdfRenders       *prometheus.CounterVec
	mailFailures     prometheus.Counter
}

// New creates the counters and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		signatures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bsd_signatures_total",
				Help: "Total number of document signatures, by resulting status.",
			},
			[]string{"kind", "stage", "status"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bsd_validation_errors_total",
				Help: "Total number of field errors returned by validation.",
			},
			[]string{"kind", "stage"},
		),
		pdfRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bsd_pdf_renders_total",
				Help: "Total number of PDF requests, by cache outcome.",
			},
			[]string{"kind", "cache"},
		),
		mailFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bsd_mail_failures_total",
				Help: "Total number of emails that could not be delivered.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.signatures, m.validationErrors, m.pdfRenders, m.mailFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Signed(kind model.Kind, stage model.Stage, status model.Status) {
	if m == nil {
		return
	}
	m.signatures.WithLabelValues(string(kind), string(stage), string(status)).Inc()
}

// ValidationFailed counts n field errors blocking a stage.
func (m *Metrics) ValidationFailed(kind model.Kind, stage model.Stage, n int) {
	if m == nil || n == 0 {
		return
	}
	m.validationErrors.WithLabelValues(string(kind), string(stage)).Add(float64(n))
}

func (m *Metrics) PDFRendered(kind model.Kind, cached bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.pdfRenders.WithLabelValues(string(kind), outcome).Inc()
}

func (m *Metrics) MailFailed() {
	if m == nil {
		return
	}
	m.mailFailures.Inc()
}
