package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valter-silva-au/ptt-tracker/pkg/models"
	"go.uber.org/zap"
)

const metricsNamespace = "ptt"

// MetricsSource builds the dashboard snapshot on demand.
type MetricsSource interface {
	Metrics(filter models.TopicFilter) (models.DashboardMetrics, error)
}

// Exporter is a prometheus.Collector that rebuilds the dashboard metrics on
// every scrape.
type Exporter struct {
	source MetricsSource
	logger *zap.Logger

	topics       *prometheus.Desc
	byDepartment *prometheus.Desc
	byPriority   *prometheus.Desc
	byTrend      *prometheus.Desc
	exposure     *prometheus.Desc
	waterfall    *prometheus.Desc
	entropy      *prometheus.Desc
	confidence   *prometheus.Desc
	variance     *prometheus.Desc
	frontier     *prometheus.Desc
	stability    *prometheus.Desc

	scrapeErrors prometheus.Counter
}

// NewExporter creates an Exporter over source. logger may be nil.
func NewExporter(source MetricsSource, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(metricsNamespace, "", name), help, labels, nil)
	}
	return &Exporter{
		source:       source,
		logger:       logger,
		topics:       desc("topics", "Number of topics by lifecycle state.", "state"),
		byDepartment: desc("active_topics_by_department", "Active topics per department.", "department"),
		byPriority:   desc("active_topics_by_priority", "Active topics per priority.", "priority"),
		byTrend:      desc("active_topics_by_trend", "Active topics per risk trend.", "trend"),
		exposure:     desc("risk_exposure", "Total reconstructed risk exposure now."),
		waterfall:    desc("risk_waterfall", "30-day exposure waterfall bars.", "bar"),
		entropy:      desc("status_entropy", "Normalized status entropy per department (0-100).", "department"),
		confidence:   desc("delivery_confidence", "Posterior delivery confidence per department (percent).", "department"),
		variance:     desc("delivery_confidence_variance", "Posterior variance of delivery confidence per department.", "department"),
		frontier:     desc("pareto_frontier_size", "Active topics on the effort/risk Pareto frontier."),
		stability:    desc("stability_latest", "Gain, damping and net stability of the latest week.", "series"),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scrape_errors_total",
			Help:      "Scrapes that failed to build the dashboard metrics.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		e.topics, e.byDepartment, e.byPriority, e.byTrend, e.exposure, e.waterfall,
		e.entropy, e.confidence, e.variance, e.frontier, e.stability,
	} {
		ch <- d
	}
	e.scrapeErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	defer e.scrapeErrors.Collect(ch)

	m, err := e.source.Metrics(models.TopicFilter{})
	if err != nil {
		e.scrapeErrors.Inc()
		e.logger.Warn("building metrics for scrape", zap.Error(err))
		return
	}

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	active := m.TotalTopics - m.ResolvedCount
	gauge(e.topics, float64(m.TotalTopics), "total")
	gauge(e.topics, float64(active), "active")
	gauge(e.topics, float64(m.ResolvedCount), "resolved")
	gauge(e.topics, float64(m.CriticalCount), "critical")

	for _, nv := range m.ByDepartment {
		gauge(e.byDepartment, float64(nv.Value), nv.Name)
	}
	for _, nv := range m.ByPriority {
		gauge(e.byPriority, float64(nv.Value), nv.Name)
	}
	gauge(e.byTrend, float64(m.EscalatingCount), string(models.TrendEscalating))
	gauge(e.byTrend, float64(m.ImprovingCount), string(models.TrendImproving))
	gauge(e.byTrend, float64(active-m.EscalatingCount-m.ImprovingCount), string(models.TrendStable))

	gauge(e.exposure, float64(m.Waterfall(models.WaterfallCurrent)))
	for _, w := range m.WaterfallData {
		gauge(e.waterfall, float64(w.Value), w.Name)
	}
	for _, em := range m.EntropyData {
		gauge(e.entropy, em.Entropy, em.Subject)
	}
	for _, bc := range m.BayesianData {
		gauge(e.confidence, bc.Probability, bc.Name)
		gauge(e.variance, bc.Variance, bc.Name)
	}

	frontier := 0
	for _, p := range m.ParetoData {
		if p.IsFrontier {
			frontier++
		}
	}
	gauge(e.frontier, float64(frontier))

	if n := len(m.ControlData); n > 0 {
		latest := m.ControlData[n-1]
		gauge(e.stability, float64(latest.Gain), "gain")
		gauge(e.stability, float64(latest.Damping), "damping")
		gauge(e.stability, float64(latest.Stability), "stability")
	}
}

// Handler returns an HTTP handler serving the exporter from its own registry.
func (e *Exporter) Handler() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(e); err != nil {
		return nil, fmt.Errorf("registering exporter: %w", err)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string) error {
	handler, err := e.Handler()
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving metrics: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down metrics server: %w", err)
		}
		return nil
	}
}
