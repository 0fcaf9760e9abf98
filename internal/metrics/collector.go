package metrics

import (
	"time"

	"tutorial-portal/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	EventCounts    map[string]int64
	ActiveSessions int
	DBFileSizes    map[string]int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	var total int64
	for name, count := range stats.EventCounts {
		AnalyticsEventsStored.WithLabelValues(name).Set(float64(count))
		total += count
	}
	for file, size := range stats.DBFileSizes {
		DBSizeBytes.WithLabelValues(file).Set(float64(size))
	}
	PlayerSessionsActive.Set(float64(stats.ActiveSessions))

	logging.Debug("Metrics collected: events=%d, event_names=%d, sessions=%d",
		total, len(stats.EventCounts), stats.ActiveSessions)
}
