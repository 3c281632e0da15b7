package parser

import (
	"strings"
	"testing"

	"github.com/soluify/bridgeboard/internal/model"
)

func TestBracketParser(t *testing.T) {
	p := NewBracketParser()

	event := p.Parse("[2025-01-02T15:04:05] [ERROR] token refresh failed", "seerrbridge.log")

	if event.Level != model.LevelError {
		t.Errorf("expected level error, got %s", event.Level)
	}
	if event.Message != "token refresh failed" {
		t.Errorf("expected message 'token refresh failed', got %q", event.Message)
	}
	if event.TimeUnreliable {
		t.Error("expected reliable timestamp")
	}
	if event.Timestamp.Year() != 2025 {
		t.Errorf("expected year 2025, got %d", event.Timestamp.Year())
	}
}

func TestBracketParserColonMarker(t *testing.T) {
	p := NewBracketParser()

	event := p.Parse("[2025-01-02 15:04:05] WARNING: disk nearly full", "seerrbridge.log")

	if event.Level != model.LevelWarning {
		t.Errorf("expected level warning, got %s", event.Level)
	}
	if event.Message != "disk nearly full" {
		t.Errorf("expected message 'disk nearly full', got %q", event.Message)
	}
}

func TestBracketParserBadTimestamp(t *testing.T) {
	p := NewBracketParser()

	event := p.Parse("[not-a-time] ERROR: boom", "seerrbridge.log")

	if !event.TimeUnreliable {
		t.Error("expected unreliable timestamp flag")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected substituted timestamp, got zero value")
	}
	if event.Level != model.LevelError {
		t.Errorf("expected level error, got %s", event.Level)
	}
}

func TestPipeParser(t *testing.T) {
	p := NewPipeParser()

	line := "2025-01-02 15:04:05.123 | SUCCESS  | seerrbridge:search_movie:812 - Torrent found for Dune"
	event := p.Parse(line, "seerrbridge.log")

	if event.Level != model.LevelSuccess {
		t.Errorf("expected level success, got %s", event.Level)
	}
	if event.Message != "Torrent found for Dune" {
		t.Errorf("expected torrent message, got %q", event.Message)
	}
	if event.Source != "seerrbridge:search_movie:812" {
		t.Errorf("expected module source, got %q", event.Source)
	}
	if event.TimeUnreliable {
		t.Error("expected reliable timestamp")
	}
}

func TestAutoParserUnstructuredLine(t *testing.T) {
	p := NewAutoParser()

	event := p.Parse("something happened with no markers", "seerrbridge.log")

	if event.Level != model.LevelUnknown {
		t.Errorf("expected level unknown, got %s", event.Level)
	}
	if event.Message != "something happened with no markers" {
		t.Errorf("expected raw line as message, got %q", event.Message)
	}
	if !event.TimeUnreliable {
		t.Error("expected unreliable timestamp flag")
	}
}

func TestAutoParserKeywordFallback(t *testing.T) {
	p := NewAutoParser()

	event := p.Parse("2025-01-02 WARN queue backlog at 90%", "seerrbridge.log")

	if event.Level != model.LevelWarning {
		t.Errorf("expected warning via keyword detection, got %s", event.Level)
	}
}

func TestAutoParserCriticalKeyword(t *testing.T) {
	p := NewAutoParser()

	event := p.Parse("CRITICAL Error during Selenium automation: session lost", "seerrbridge.log")

	if event.Level != model.LevelCritical {
		t.Errorf("expected critical, got %s", event.Level)
	}
}

func TestParseAllCardinality(t *testing.T) {
	input := strings.Join([]string{
		"[2025-01-02T10:00:00] [INFO] startup complete",
		"",
		"plain unstructured line",
		"   ",
		"[2025-01-02T10:00:02] [ERROR] fetch failed",
	}, "\n")

	events := ParseAll(strings.NewReader(input), "seerrbridge.log", NewAutoParser())

	if len(events) != 3 {
		t.Fatalf("expected 3 events for 3 non-blank lines, got %d", len(events))
	}
	if events[0].Raw != "[2025-01-02T10:00:00] [INFO] startup complete" {
		t.Errorf("raw line not preserved: %q", events[0].Raw)
	}
	if events[1].Level != model.LevelUnknown {
		t.Errorf("expected unknown level for unstructured line, got %s", events[1].Level)
	}
	if events[2].Level != model.LevelError {
		t.Errorf("expected error level, got %s", events[2].Level)
	}
}

func TestNormalizeLevelSynonyms(t *testing.T) {
	cases := map[string]string{
		"FATAL":     model.LevelCritical,
		"crit":      model.LevelCritical,
		"ERR":       model.LevelError,
		"warn":      model.LevelWarning,
		"attention": model.LevelWarning,
		"OK":        model.LevelSuccess,
		"notice":    model.LevelInfo,
		"TRACE":     model.LevelDebug,
		"bogus":     model.LevelUnknown,
	}

	for in, want := range cases {
		if got := normalizeLevel(in); got != want {
			t.Errorf("normalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
