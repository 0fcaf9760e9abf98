package metrics

import (
	"sync"
	"testing"
	"time"
)

type mockStatsProvider struct {
	mu    sync.Mutex
	calls int
	stats Stats
}

func (m *mockStatsProvider) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.stats
}

func (m *mockStatsProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCollectorPublishesStats(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{
		EventCounts:    map[string]int64{"video_play": 7, "page_loaded": 3},
		ActiveSessions: 4,
		DBFileSizes:    map[string]int64{"main": 4096},
	}}

	c := NewCollector(provider, time.Hour)
	c.collect()

	if got := gaugeValue(t, AnalyticsEventsStored.WithLabelValues("video_play")); got != 7 {
		t.Errorf("AnalyticsEventsStored{video_play} = %v, want 7", got)
	}
	if got := gaugeValue(t, PlayerSessionsActive); got != 4 {
		t.Errorf("PlayerSessionsActive = %v, want 4", got)
	}
	if got := gaugeValue(t, DBSizeBytes.WithLabelValues("main")); got != 4096 {
		t.Errorf("DBSizeBytes{main} = %v, want 4096", got)
	}
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, time.Hour)
	c.collect()
}

func TestCollectorStartStop(t *testing.T) {
	provider := &mockStatsProvider{}
	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()

	deadline := time.Now().Add(2 * time.Second)
	for provider.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	c.Stop()

	if provider.callCount() < 2 {
		t.Errorf("collector ran %d times, want at least 2", provider.callCount())
	}
}
