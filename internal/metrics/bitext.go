// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes Prometheus counters for bitext runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	pairsReadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techiaith_bitext_pairs_read_total",
		Help: "Sentence pairs read from input files by format",
	}, []string{"format"})

	recordsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techiaith_bitext_records_skipped_total",
		Help: "Input records that produced no usable pair, by format and reason",
	}, []string{"format", "reason"}) // reason=incomplete|empty

	pairsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techiaith_bitext_pairs_written_total",
		Help: "Sentence pairs written by sink",
	}, []string{"sink"}) // sink=text|tsv|jsonl|store

	duplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "techiaith_corpus_duplicates_total",
		Help: "Pairs ignored by the corpus store because they were already present",
	})

	filesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techiaith_bitext_files_processed_total",
		Help: "Input files processed by format and outcome",
	}, []string{"format", "outcome"}) // outcome=success|failure

	fileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "techiaith_bitext_file_duration_seconds",
		Help:    "Time taken to process a single input file",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"format"})

	pairsExportedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "techiaith_corpus_pairs_exported_total",
		Help: "Pairs exported from the corpus store by output format",
	}, []string{"format"})

	lastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "techiaith_bitext_last_run_timestamp_seconds",
		Help: "Unix time at which the last run finished",
	})
)

// RecordPairRead counts one pair read from a file of the given format.
func RecordPairRead(format string) {
	pairsReadTotal.WithLabelValues(format).Inc()
}

// RecordSkipped adds n skipped records.
func RecordSkipped(format, reason string, n int) {
	if n <= 0 {
		return
	}
	recordsSkippedTotal.WithLabelValues(format, reason).Add(float64(n))
}

// RecordPairWritten counts one pair accepted by a sink.
func RecordPairWritten(sink string) {
	pairsWrittenTotal.WithLabelValues(sink).Inc()
}

// RecordDuplicates counts pairs rejected as duplicates.
func RecordDuplicates(n int) {
	if n <= 0 {
		return
	}
	duplicatesTotal.Add(float64(n))
}

// RecordFile records the outcome and duration of processing one file.
func RecordFile(format string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	filesProcessedTotal.WithLabelValues(format, outcome).Inc()
	fileDuration.WithLabelValues(format).Observe(d.Seconds())
}

// RecordExported counts pairs exported from the store.
func RecordExported(format string, n int) {
	if n <= 0 {
		return
	}
	pairsExportedTotal.WithLabelValues(format).Add(float64(n))
}

// MarkRun stamps the end of a run.
func MarkRun(t time.Time) {
	lastRunTimestamp.Set(float64(t.Unix()))
}

// LastRun returns the time stamped by the latest MarkRun, or the zero time.
func LastRun() time.Time {
	var m dto.Metric
	if err := lastRunTimestamp.Write(&m); err != nil {
		return time.Time{}
	}
	v := m.GetGauge().GetValue()
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v), 0)
}

// WriteTextfile writes every registered metric to path in the text format
// read by the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
