// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records per-run counters for the node-exporter textfile
// collector. Each Recorder owns a private registry, so runs and tests never
// collide on the default one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/papers-archive/internal/index"
	"github.com/pdiddy/papers-archive/internal/translate"
)

const namespace = "papers_archive"

// Recorder holds the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	// Papers counts translation outcomes by outcome label
	// (translated, synthesized, skipped, failed).
	Papers *prometheus.CounterVec

	// PaperDuration observes per-paper processing time in seconds.
	PaperDuration prometheus.Histogram

	// IndexPapers, IndexDates, IndexHidden and DuplicateGroups mirror the
	// last build report.
	IndexPapers     prometheus.Gauge
	IndexDates      prometheus.Gauge
	IndexHidden     prometheus.Gauge
	DuplicateGroups prometheus.Gauge

	// Summaries counts daily summaries by source (reused, generated, fallback).
	Summaries *prometheus.CounterVec

	// LastRun is the Unix time the run finished.
	LastRun *prometheus.GaugeVec
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Papers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translate",
			Name:      "papers_total",
			Help:      "Papers processed by the translation engine, by outcome.",
		}, []string{"outcome"}),
		PaperDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "translate",
			Name:      "paper_duration_seconds",
			Help:      "Time spent enriching one paper.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		IndexPapers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "papers",
			Help: "Visible papers in the last built index.",
		}),
		IndexDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "dates",
			Help: "Visible dates in the last built index.",
		}),
		IndexHidden: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "hidden_papers",
			Help: "Papers withheld by the visibility policy.",
		}),
		DuplicateGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "index", Name: "duplicate_groups",
			Help: "Duplicate groups merged in the last build.",
		}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "daily_summaries_total",
			Help:      "Daily summaries written, by source.",
		}, []string{"source"}),
		LastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run of a command finished.",
		}, []string{"command"}),
	}

	r.registry.MustRegister(
		r.Papers, r.PaperDuration,
		r.IndexPapers, r.IndexDates, r.IndexHidden, r.DuplicateGroups,
		r.Summaries, r.LastRun,
	)
	return r
}

// Registry exposes the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObservePaper implements translate.Observer.
func (r *Recorder) ObservePaper(s translate.Stats, elapsed time.Duration) {
	r.Papers.WithLabelValues("translated").Add(float64(s.Translated))
	r.Papers.WithLabelValues("synthesized").Add(float64(s.Synthesized))
	r.Papers.WithLabelValues("skipped").Add(float64(s.Skipped))
	r.Papers.WithLabelValues("failed").Add(float64(s.Failed))
	r.PaperDuration.Observe(elapsed.Seconds())
}

// ObserveBuild records an index build report.
func (r *Recorder) ObserveBuild(rep index.Report) {
	r.IndexPapers.Set(float64(rep.Papers))
	r.IndexDates.Set(float64(rep.Dates))
	r.IndexHidden.Set(float64(rep.Hidden))
	r.DuplicateGroups.Set(float64(rep.DuplicateGroups))
	r.Summaries.WithLabelValues("reused").Add(float64(rep.Reused))
	r.Summaries.WithLabelValues("generated").Add(float64(rep.Generated))
	r.Summaries.WithLabelValues("fallback").Add(float64(rep.Fallback))
}

// Finish stamps the completion time of command.
func (r *Recorder) Finish(command string, at time.Time) {
	r.LastRun.WithLabelValues(command).Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

var _ translate.Observer = (*Recorder)(nil)
