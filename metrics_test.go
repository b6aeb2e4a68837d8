package goVerify

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricIssueSuccess)

	if got := m.Value(MetricIssueSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricIssueSuccess)
	m.Inc(MetricIssueSuccess)
	m.Inc(MetricIssueSuccess)

	if got := m.Value(MetricIssueSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricValidateSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricValidateSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricValidateLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricValidateLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricIssueSuccess)
	m.Inc(MetricValidateMismatch)
	m.Inc(MetricValidateMismatch)
	m.Observe(MetricValidateLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricIssueSuccess] != 1 {
		t.Fatalf("expected MetricIssueSuccess=1 got %d", snap.Counters[MetricIssueSuccess])
	}
	if snap.Counters[MetricValidateMismatch] != 2 {
		t.Fatalf("expected MetricValidateMismatch=2 got %d", snap.Counters[MetricValidateMismatch])
	}
	if len(snap.Histograms[MetricValidateLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricValidateLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricValidateLatency][0])
	}
}

func TestEngineMetricsTrackOutcomes(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	notifier := &fakeNotifier{}
	engine := newTestEngine(t, rdb, testEngineOptions{
		notifier: notifier,
		mutate: func(cfg *Config) {
			cfg.Metrics.Enabled = true
		},
	})

	code := issueAndCapture(t, engine, notifier, "alice@example.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := engine.ValidateCode(context.Background(), "alice@example.com", wrong, ValidateOptions{}); err != nil {
		t.Fatalf("ValidateCode failed: %v", err)
	}
	if _, err := engine.ValidateCode(context.Background(), "alice@example.com", code, ValidateOptions{}); err != nil {
		t.Fatalf("ValidateCode failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricIssueSuccess] != 1 {
		t.Fatalf("expected one issue success, got %d", snap.Counters[MetricIssueSuccess])
	}
	if snap.Counters[MetricValidateMismatch] != 1 {
		t.Fatalf("expected one mismatch, got %d", snap.Counters[MetricValidateMismatch])
	}
	if snap.Counters[MetricValidateSuccess] != 1 {
		t.Fatalf("expected one validate success, got %d", snap.Counters[MetricValidateSuccess])
	}
}
