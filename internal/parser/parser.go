package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

// Parser converts a raw log line into a structured LogEvent.
type Parser interface {
	Parse(raw string, source string) model.LogEvent
}

// timeLayouts are tried in order when extracting a line's timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

// ---------------------------------------------------------------------------
// Bracket Parser
// ---------------------------------------------------------------------------

// BracketParser handles lines with a bracketed timestamp prefix:
//
//	[2025-01-02T15:04:05] [ERROR] something broke
//	[2025-01-02 15:04:05] WARNING: disk nearly full
type BracketParser struct {
	re      *regexp.Regexp
	levelRe *regexp.Regexp
}

func NewBracketParser() *BracketParser {
	return &BracketParser{
		re:      regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`),
		levelRe: regexp.MustCompile(`^(?:\[(\w+)\]|(\w+):)\s*(.*)$`),
	}
}

func (p *BracketParser) Parse(raw string, source string) model.LogEvent {
	event := base(raw, source)

	matches := p.re.FindStringSubmatch(raw)
	if matches == nil {
		return event
	}

	if t, ok := parseTime(matches[1]); ok {
		event.Timestamp = t
		event.TimeUnreliable = false
	}

	rest := matches[2]
	event.Message = rest

	// Severity marker directly after the timestamp: "[ERROR] msg" or "ERROR: msg".
	if lm := p.levelRe.FindStringSubmatch(rest); lm != nil {
		marker := lm[1]
		if marker == "" {
			marker = lm[2]
		}
		if level := normalizeLevel(marker); level != model.LevelUnknown {
			event.Level = level
			event.Message = lm[3]
		}
	}

	if event.Level == model.LevelUnknown {
		event.Level = keywordLevel(rest)
	}

	return event
}

// ---------------------------------------------------------------------------
// Pipe Parser (the bridge's loguru file sink)
// ---------------------------------------------------------------------------

// PipeParser handles the bridge service's pipe-delimited format:
//
//	2025-01-02 15:04:05.123 | SUCCESS  | seerrbridge:search_movie:812 - Torrent found
type PipeParser struct {
	re *regexp.Regexp
}

func NewPipeParser() *PipeParser {
	return &PipeParser{
		re: regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?)\s*\|\s*(\w+)\s*\|\s*(\S+)\s+-\s+(.*)$`),
	}
}

func (p *PipeParser) Parse(raw string, source string) model.LogEvent {
	event := base(raw, source)

	matches := p.re.FindStringSubmatch(raw)
	if matches == nil {
		return event
	}

	if t, ok := parseTime(matches[1]); ok {
		event.Timestamp = t
		event.TimeUnreliable = false
	}
	event.Level = normalizeLevel(matches[2])
	event.Source = matches[3]
	event.Message = matches[4]

	return event
}

// ---------------------------------------------------------------------------
// Auto Parser (format auto-detection)
// ---------------------------------------------------------------------------

// AutoParser tries parsers in order: bracket → pipe → keyword fallback.
// It never drops a line and never fails: anything unrecognized comes
// back as an event with the raw text as message and a keyword-derived
// (or unknown) level.
type AutoParser struct {
	bracketParser *BracketParser
	pipeParser    *PipeParser
}

func NewAutoParser() *AutoParser {
	return &AutoParser{
		bracketParser: NewBracketParser(),
		pipeParser:    NewPipeParser(),
	}
}

func (p *AutoParser) Parse(raw string, source string) model.LogEvent {
	trimmed := strings.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		event := p.bracketParser.Parse(trimmed, source)
		if !event.TimeUnreliable || event.Message != trimmed {
			event.Raw = raw
			return event
		}
	}

	event := p.pipeParser.Parse(trimmed, source)
	if !event.TimeUnreliable {
		event.Raw = raw
		return event
	}

	// Fallback: keyword-based level detection over the raw line.
	event = base(raw, source)
	event.Level = keywordLevel(raw)
	return event
}

// ParseAll reads every line from r and returns one LogEvent per
// non-blank line, in encounter order. Blank lines are skipped; nothing
// else is ever dropped.
func ParseAll(r io.Reader, source string, p Parser) []model.LogEvent {
	var events []model.LogEvent

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		events = append(events, p.Parse(line, source))
	}

	return events
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// base returns a LogEvent with defaults populated. The timestamp is
// the parse time until a real one is extracted, flagged unreliable so
// downstream consumers know it is synthetic.
func base(raw, source string) model.LogEvent {
	return model.LogEvent{
		Timestamp:      time.Now(),
		TimeUnreliable: true,
		Source:         source,
		Raw:            raw,
		Level:          model.LevelUnknown,
		Message:        raw,
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// keywordLevel detects severity from keywords in the line.
func keywordLevel(line string) string {
	upper := strings.ToUpper(line)

	switch {
	case strings.Contains(upper, "CRITICAL"), strings.Contains(upper, "FATAL"):
		return model.LevelCritical
	case strings.Contains(upper, "ERROR"):
		return model.LevelError
	case strings.Contains(upper, "WARN"):
		return model.LevelWarning
	case strings.Contains(upper, "SUCCESS"):
		return model.LevelSuccess
	case strings.Contains(upper, "DEBUG"), strings.Contains(upper, "TRACE"):
		return model.LevelDebug
	case strings.Contains(upper, "INFO"):
		return model.LevelInfo
	default:
		return model.LevelUnknown
	}
}

// normalizeLevel folds common level spellings into the canonical set.
func normalizeLevel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit", "fatal":
		return model.LevelCritical
	case "error", "err", "failure":
		return model.LevelError
	case "warning", "warn", "attention":
		return model.LevelWarning
	case "success", "ok":
		return model.LevelSuccess
	case "info", "information", "notice":
		return model.LevelInfo
	case "debug", "trace":
		return model.LevelDebug
	default:
		return model.LevelUnknown
	}
}
