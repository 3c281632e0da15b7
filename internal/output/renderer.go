// Package output renders log events for the watch subcommand.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/soluify/bridgeboard/internal/model"
)

// Renderer writes LogEvent values to an output stream.
type Renderer interface {
	Render(event model.LogEvent) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleDebug   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red bold
	styleCrit    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleSource = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true) // cyan
)

// TextRenderer prints events to the terminal with severity-based colors.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Render(event model.LogEvent) error {
	tag := styleLevelTag(event.Level)
	src := styleSource.Render(event.Source)
	ts := event.Timestamp.Format("15:04:05")

	line := fmt.Sprintf("%s %s %s %s", ts, tag, src, event.Message)
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func styleLevelTag(level string) string {
	padded := fmt.Sprintf("%-8s", level)
	switch level {
	case model.LevelDebug:
		return styleDebug.Render(padded)
	case model.LevelSuccess:
		return styleSuccess.Render(padded)
	case model.LevelWarning:
		return styleWarn.Render(padded)
	case model.LevelError:
		return styleError.Render(padded)
	case model.LevelCritical:
		return styleCrit.Render(padded)
	default:
		return styleInfo.Render(padded)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each event as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Render(event model.LogEvent) error {
	return r.enc.Encode(event)
}
