// Package stats keeps time-windowed metrics over the live event
// stream for the dashboard header.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

const epsWindow = 5 * time.Second

// Snapshot holds a point-in-time view of the collected metrics.
type Snapshot struct {
	Uptime        string           `json:"uptime"`
	TotalEvents   int64            `json:"total_events"`
	EPS           float64          `json:"eps"`
	LevelCounts   map[string]int64 `json:"level_counts"`
	DroppedEvents int64            `json:"dropped_events"`
	WatchedFiles  int              `json:"watched_files"`
}

// Collector subscribes to the hub and computes per-level counts and a
// sliding events-per-second rate.
type Collector struct {
	mu          sync.RWMutex
	startTime   time.Time
	totalEvents int64
	levelCounts map[string]int64
	window      []time.Time
	dropped     func() int64
	fileCount   func() int
	events      <-chan model.LogEvent
}

// New creates a Collector reading from the given hub subscription.
// droppedFn and fileCountFn provide live values from the hub and
// watcher respectively.
func New(events <-chan model.LogEvent, droppedFn func() int64, fileCountFn func() int) *Collector {
	return &Collector{
		startTime:   time.Now(),
		levelCounts: make(map[string]int64),
		dropped:     droppedFn,
		fileCount:   fileCountFn,
		events:      events,
	}
}

// Current returns the current metrics.
func (c *Collector) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int64)
	for k, v := range c.levelCounts {
		counts[k] = v
	}

	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range c.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Snapshot{
		Uptime:        time.Since(c.startTime).Truncate(time.Second).String(),
		TotalEvents:   c.totalEvents,
		EPS:           float64(recent) / epsWindow.Seconds(),
		LevelCounts:   counts,
		DroppedEvents: c.dropped(),
		WatchedFiles:  c.fileCount(),
	}
}

// Start consumes events and updates metrics until the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.events:
			if !ok {
				return
			}
			c.record(event)
		case <-ticker.C:
			c.trim()
		}
	}
}

func (c *Collector) record(event model.LogEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalEvents++
	c.levelCounts[event.Level]++
	c.window = append(c.window, time.Now())
}

// trim drops window samples past the EPS horizon.
func (c *Collector) trim() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-epsWindow)
	i := 0
	for _, t := range c.window {
		if t.After(cutoff) {
			c.window[i] = t
			i++
		}
	}
	c.window = c.window[:i]
}
