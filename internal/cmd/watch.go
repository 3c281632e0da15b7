package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soluify/bridgeboard/internal/hub"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/output"
	"github.com/soluify/bridgeboard/internal/parser"
	"github.com/soluify/bridgeboard/internal/tailer"
	"github.com/soluify/bridgeboard/internal/watcher"
)

var watchLevelFilter string

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Tail the bridge log in the terminal",
	Long: `Watch streams new bridge log lines to the terminal in real time,
parsed and colorized by severity. Paths default to the configured log
file and may be globs.

Examples:
  bridgeboard watch
  bridgeboard watch /var/log/seerrbridge.log
  bridgeboard watch "/var/log/**/*.log" --output json --level error,critical`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLevelFilter, "level", "l", "", "filter by severity (comma-separated: info,warning,error)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{viper.GetString("log_file")}
	}

	w, err := watcher.New(patterns)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if len(w.Paths()) == 0 {
		return fmt.Errorf("no files matched: %v", patterns)
	}

	fmt.Fprintf(os.Stderr, "watching %d file(s):\n", len(w.Paths()))
	for _, p := range w.Paths() {
		fmt.Fprintf(os.Stderr, "  %s\n", p)
	}

	ckpt, err := tailer.NewCheckpoint(filepath.Join(viper.GetString("data_dir"), "watch-offsets.json"))
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	tl := tailer.New(w, ckpt)
	h := hub.New(tl.Lines(), parser.NewAutoParser())
	events := h.Subscribe()

	var renderer output.Renderer
	switch strings.ToLower(outputFmt) {
	case "json":
		renderer = output.NewJSONRenderer()
	default:
		renderer = output.NewTextRenderer()
	}

	levelSet := make(map[string]bool)
	if watchLevelFilter != "" {
		for _, l := range strings.Split(watchLevelFilter, ",") {
			levelSet[strings.ToLower(strings.TrimSpace(l))] = true
		}
	}

	go w.Start(ctx)
	go tl.Start(ctx)
	go h.Start(ctx)

	for event := range events {
		if shouldShow(event, levelSet) {
			if err := renderer.Render(event); err != nil {
				log.Printf("render error: %v", err)
			}
		}
	}

	return nil
}

// shouldShow returns true if the event passes the level filter.
func shouldShow(event model.LogEvent, levelSet map[string]bool) bool {
	if len(levelSet) == 0 {
		return true
	}
	return levelSet[event.Level]
}
