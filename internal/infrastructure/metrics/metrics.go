// Package metrics exposes per-run counters and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"NewsSignal/internal/config"
	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

const namespace = "newssignal"

// Recorder owns a private registry so every run pushes a self-contained batch.
type Recorder struct {
	registry *prometheus.Registry
	url      string
	job      string
	logger   *slog.Logger

	sourceFiles  prometheus.Gauge
	skippedFiles prometheus.Gauge
	rowsLoaded   prometheus.Gauge
	rowsInvalid  prometheus.Gauge
	duplicates   prometheus.Gauge
	rowsWritten  prometheus.Gauge
	lastBuild    prometheus.Gauge
	collected    *prometheus.CounterVec
}

var _ ports.RunRecorder = (*Recorder)(nil)

// NewRecorder registers the newssignal_* collectors.
func NewRecorder(cfg config.MetricsConfig, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Recorder{
		registry:     reg,
		url:          cfg.PushgatewayURL,
		job:          cfg.Job,
		logger:       logger,
		sourceFiles:  gauge("sources_total", "Number of source files read by the last build"),
		skippedFiles: gauge("sources_skipped", "Number of source files skipped by the last build"),
		rowsLoaded:   gauge("records_loaded", "Rows loaded from source files by the last build"),
		rowsInvalid:  gauge("records_invalid", "Rows dropped by validation in the last build"),
		duplicates:   gauge("records_duplicate", "Rows collapsed by deduplication in the last build"),
		rowsWritten:  gauge("rows_written", "Rows written to the canonical dataset by the last build"),
		lastBuild:    gauge("last_success_timestamp_seconds", "Unix time of the last successful build"),
		collected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collected_articles_total",
			Help:      "Articles handled by collection runs by outcome",
		}, []string{"status"}),
	}
}

// Registry exposes the underlying registry for gathering in tests or handlers.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordCollection counts one article outcome.
func (r *Recorder) RecordCollection(status domain.CollectionStatus) {
	r.collected.WithLabelValues(string(status)).Inc()
}

// Record sets the build gauges and pushes them when a Pushgateway is configured.
func (r *Recorder) Record(ctx context.Context, stats domain.BuildStats) error {
	r.sourceFiles.Set(float64(stats.Sources))
	r.skippedFiles.Set(float64(stats.Skipped))
	r.rowsLoaded.Set(float64(stats.Loaded))
	r.rowsInvalid.Set(float64(stats.Invalid))
	r.duplicates.Set(float64(stats.Duplicates))
	r.rowsWritten.Set(float64(stats.RowsWritten))
	r.lastBuild.SetToCurrentTime()

	return r.Push(ctx)
}

// Push sends the registry contents to the Pushgateway. A blank URL disables pushing.
func (r *Recorder) Push(ctx context.Context) error {
	if r.url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := push.New(r.url, r.job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", r.url, err)
	}
	r.logger.Debug("metrics pushed", "url", r.url, "job", r.job)
	return nil
}
