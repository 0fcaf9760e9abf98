package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestInitializeMetricsDoesNotPanic(t *testing.T) {
	InitializeMetrics()
	InitializeMetrics()
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")
	if got := gaugeValue(t, AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestCounterVecsAcceptLabels(t *testing.T) {
	before := counterValue(t, RouteResolutionsTotal.WithLabelValues("page"))
	RouteResolutionsTotal.WithLabelValues("page").Inc()
	if got := counterValue(t, RouteResolutionsTotal.WithLabelValues("page")); got != before+1 {
		t.Errorf("RouteResolutionsTotal = %v, want %v", got, before+1)
	}

	MediaRedirectsTotal.WithLabelValues("legacy").Inc()
	PageRendersTotal.WithLabelValues("selector").Inc()
	PageRenderDuration.WithLabelValues("selector").Observe(0.001)
	AnalyticsEventsTotal.WithLabelValues("page_loaded").Inc()
	PlayerOpensTotal.WithLabelValues("gif").Inc()
	PlayerClosesTotal.WithLabelValues("inactivity").Inc()
	ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
}
