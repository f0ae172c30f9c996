package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures metric labels.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesSaved   *prometheus.CounterVec
	invoicesDeleted prometheus.Counter
	documents       *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	pagesRendered   prometheus.Histogram
	backups         *prometheus.CounterVec
}

// New registers the domain instruments on registerer.
func New(cfg Config, registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	m := &Metrics{
		invoicesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicekit_invoices_saved_total",
			Help:        "Invoices saved, by operation.",
			ConstLabels: labels,
		}, []string{"operation"}),
		invoicesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "invoicekit_invoices_deleted_total",
			Help:        "Invoices deleted.",
			ConstLabels: labels,
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicekit_documents_rendered_total",
			Help:        "PDF documents rendered, by kind and result.",
			ConstLabels: labels,
		}, []string{"kind", "result"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "invoicekit_render_duration_seconds",
			Help:        "Time spent laying out and painting documents.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"kind"}),
		pagesRendered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "invoicekit_invoice_pages",
			Help:        "Pages per rendered invoice.",
			ConstLabels: labels,
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "invoicekit_backups_total",
			Help:        "Backup exports and imports, by operation.",
			ConstLabels: labels,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.invoicesSaved, m.invoicesDeleted, m.documents, m.renderDuration, m.pagesRendered, m.backups,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordInvoiceSaved counts a save; created distinguishes inserts from
// in-place updates.
func (m *Metrics) RecordInvoiceSaved(created bool) {
	if m == nil {
		return
	}
	op := "update"
	if created {
		op = "create"
	}
	m.invoicesSaved.WithLabelValues(op).Inc()
}

func (m *Metrics) RecordInvoiceDeleted() {
	if m == nil {
		return
	}
	m.invoicesDeleted.Inc()
}

// RecordRender observes one rendered document. pages only applies to
// invoices.
func (m *Metrics) RecordRender(kind string, seconds float64, pages int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.documents.WithLabelValues(kind, result).Inc()
	if err != nil {
		return
	}
	m.renderDuration.WithLabelValues(kind).Observe(seconds)
	if kind == "invoice" && pages > 0 {
		m.pagesRendered.Observe(float64(pages))
	}
}

func (m *Metrics) RecordBackup(operation string) {
	if m == nil {
		return
	}
	m.backups.WithLabelValues(strings.TrimSpace(operation)).Inc()
}

func constLabels(cfg Config) prometheus.Labels {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "invoicekit"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	return prometheus.Labels{"service": service, "env": env}
}
