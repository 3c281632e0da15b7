package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	renderer := &JSONRenderer{enc: enc}

	event := model.LogEvent{
		Timestamp: time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC),
		Source:    "seerrbridge:fetch:42",
		Raw:       "[2025-01-02T12:00:00] [ERROR] something broke",
		Level:     model.LevelError,
		Message:   "something broke",
	}

	if err := renderer.Render(event); err != nil {
		t.Fatal(err)
	}

	var got model.LogEvent
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\nraw: %s", err, buf.String())
	}

	if got.Level != model.LevelError {
		t.Errorf("expected level error, got %s", got.Level)
	}
	if got.Message != "something broke" {
		t.Errorf("expected message 'something broke', got %q", got.Message)
	}
	if got.Raw != event.Raw {
		t.Errorf("raw line not preserved: %q", got.Raw)
	}
}

func TestTextRendererWritesLine(t *testing.T) {
	var buf bytes.Buffer
	renderer := &TextRenderer{w: &buf}

	event := model.LogEvent{
		Timestamp: time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC),
		Level:     model.LevelSuccess,
		Message:   "torrent cached",
	}

	if err := renderer.Render(event); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("torrent cached")) {
		t.Errorf("message missing from rendered line: %q", buf.String())
	}
}
