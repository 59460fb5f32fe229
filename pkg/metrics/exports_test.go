package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestExportJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewExportJobMetrics(reg)
	metrics.ObserveDuration(1200 * time.Millisecond)
	metrics.IncSuccess()
	metrics.IncFailure()
	metrics.IncMalformed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	for _, name := range []string{"export_job_success", "export_job_failure", "export_job_malformed_messages"} {
		if got, err := fetchSingleCounter(mfs, name); err != nil {
			t.Fatalf("fetch %s: %v", name, err)
		} else if got != 1 {
			t.Fatalf("expected %s=1, got %f", name, got)
		}
	}

	if got, err := fetchSingleHistogramSum(mfs, "export_job_duration_seconds"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 1 {
		t.Fatalf("expected duration sum > 1, got %f", got)
	}
}

func TestExportJobMetricsNilReceiverIsSafe(t *testing.T) {
	var metrics *ExportJobMetrics
	metrics.ObserveDuration(time.Second)
	metrics.IncSuccess()
	metrics.IncFailure()
	metrics.IncMalformed()
}

func fetchSingleCounter(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	if len(mf.GetMetric()) == 0 {
		return 0, fmt.Errorf("metric %q has no samples", name)
	}
	return mf.GetMetric()[0].GetCounter().GetValue(), nil
}

func fetchSingleHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	if len(mf.GetMetric()) == 0 {
		return 0, fmt.Errorf("histogram %q has no samples", name)
	}
	return mf.GetMetric()[0].GetHistogram().GetSampleSum(), nil
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
