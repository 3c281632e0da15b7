package stats

import (
	"context"
	"testing"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

func TestLevelCounts(t *testing.T) {
	ch := make(chan model.LogEvent, 100)
	c := New(ch, func() int64 { return 0 }, func() int { return 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Start(ctx)

	ch <- model.LogEvent{Level: model.LevelInfo, Message: "a"}
	ch <- model.LogEvent{Level: model.LevelInfo, Message: "b"}
	ch <- model.LogEvent{Level: model.LevelError, Message: "c"}
	ch <- model.LogEvent{Level: model.LevelSuccess, Message: "d"}

	time.Sleep(200 * time.Millisecond)

	snap := c.Current()
	if snap.LevelCounts[model.LevelInfo] != 2 {
		t.Errorf("expected 2 info, got %d", snap.LevelCounts[model.LevelInfo])
	}
	if snap.LevelCounts[model.LevelError] != 1 {
		t.Errorf("expected 1 error, got %d", snap.LevelCounts[model.LevelError])
	}
	if snap.LevelCounts[model.LevelSuccess] != 1 {
		t.Errorf("expected 1 success, got %d", snap.LevelCounts[model.LevelSuccess])
	}
	if snap.TotalEvents != 4 {
		t.Errorf("expected 4 total events, got %d", snap.TotalEvents)
	}
	if snap.WatchedFiles != 1 {
		t.Errorf("expected 1 watched file, got %d", snap.WatchedFiles)
	}
}

func TestEPSPositiveUnderLoad(t *testing.T) {
	ch := make(chan model.LogEvent, 100)
	c := New(ch, func() int64 { return 2 }, func() int { return 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.Start(ctx)

	for i := 0; i < 10; i++ {
		ch <- model.LogEvent{Level: model.LevelInfo, Message: "x"}
	}

	time.Sleep(200 * time.Millisecond)

	snap := c.Current()
	if snap.EPS <= 0 {
		t.Errorf("expected positive EPS, got %f", snap.EPS)
	}
	if snap.DroppedEvents != 2 {
		t.Errorf("expected dropped count from provider, got %d", snap.DroppedEvents)
	}
}
