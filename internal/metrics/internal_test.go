// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramCount(t *testing.T, format string) uint64 {
	t.Helper()
	obs, err := fileDuration.GetMetricWithLabelValues(format)
	require.NoError(t, err)
	h, ok := obs.(interface{ Write(*dto.Metric) error })
	require.True(t, ok, "observer cannot be written")
	metric := &dto.Metric{}
	require.NoError(t, h.Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestRecordFileObservesDuration(t *testing.T) {
	before := histogramCount(t, "tsv")
	RecordFile("tsv", nil, 5*time.Millisecond)
	RecordFile("tsv", nil, 7*time.Millisecond)
	assert.Equal(t, before+2, histogramCount(t, "tsv"))
}

func TestLastRun(t *testing.T) {
	at := time.Unix(1800000000, 0)
	MarkRun(at)
	assert.True(t, LastRun().Equal(at))
}
