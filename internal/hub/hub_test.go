package hub

import (
	"context"
	"testing"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/parser"
)

func TestHubBroadcast(t *testing.T) {
	input := make(chan model.RawLine, 10)
	h := New(input, parser.NewAutoParser())

	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Start(ctx)

	input <- model.RawLine{Text: "[2025-01-02T10:00:00] [ERROR] fetch failed", Source: "seerrbridge.log"}

	for i, sub := range []<-chan model.LogEvent{sub1, sub2} {
		select {
		case e := <-sub:
			if e.Level != model.LevelError {
				t.Errorf("sub%d: expected error level, got %s", i+1, e.Level)
			}
			if e.Message != "fetch failed" {
				t.Errorf("sub%d: expected parsed message, got %q", i+1, e.Message)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("sub%d: timed out", i+1)
		}
	}

	cancel()
}

func TestHubSlowConsumer(t *testing.T) {
	input := make(chan model.RawLine, 10)
	h := New(input, parser.NewAutoParser())

	// Subscribe but never read.
	_ = h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go h.Start(ctx)

	for i := 0; i < subscriberBuffer+100; i++ {
		input <- model.RawLine{Text: "line", Source: "seerrbridge.log"}
	}

	time.Sleep(500 * time.Millisecond)

	if h.Dropped() == 0 {
		t.Error("expected dropped events for slow consumer, got 0")
	}

	cancel()
}
