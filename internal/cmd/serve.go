package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soluify/bridgeboard/internal/catalog"
	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/hub"
	"github.com/soluify/bridgeboard/internal/monitor"
	"github.com/soluify/bridgeboard/internal/notify"
	"github.com/soluify/bridgeboard/internal/parser"
	"github.com/soluify/bridgeboard/internal/server"
	"github.com/soluify/bridgeboard/internal/settings"
	"github.com/soluify/bridgeboard/internal/stats"
	"github.com/soluify/bridgeboard/internal/tailer"
	"github.com/soluify/bridgeboard/internal/upstream"
	"github.com/soluify/bridgeboard/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API and alert relay",
	Long: `Serve tails the bridge log, relays alert-worthy events to the
configured Discord webhook, and exposes the dashboard HTTP API.

Examples:
  bridgeboard serve --log-file /var/log/seerrbridge.log
  bridgeboard serve --port 9090 --data-dir /var/lib/bridgeboard`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "8780", "HTTP listen port")
	serveCmd.Flags().String("bridge-url", "http://localhost:8777", "base URL of the bridge service")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("bridge_url", serveCmd.Flags().Lookup("bridge-url"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "bridgeboard shutting down gracefully...")
		cancel()
	}()

	logFile := viper.GetString("log_file")
	dataDir := viper.GetString("data_dir")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// --- Stores ---
	cat, err := catalog.Load(filepath.Join(dataDir, "log-types.json"))
	if err != nil {
		return fmt.Errorf("loading pattern catalog: %w", err)
	}
	hist := history.New(filepath.Join(dataDir, "notifications.json"))
	st := settings.New(filepath.Join(dataDir, "notification-settings.json"))
	dispatcher := notify.New(st, hist)

	// --- Tail pipeline ---
	w, err := watcher.New([]string{logFile})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	ckpt, err := tailer.NewCheckpoint(filepath.Join(dataDir, "offsets.json"))
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	tl := tailer.New(w, ckpt)
	h := hub.New(tl.Lines(), parser.NewAutoParser())

	mon := monitor.New(h.Subscribe(), cat, hist, dispatcher)
	collector := stats.New(h.Subscribe(), h.Dropped, func() int { return len(w.Paths()) })

	go w.Start(ctx)
	go tl.Start(ctx)
	go h.Start(ctx)
	go mon.Start(ctx)
	go collector.Start(ctx)

	// Periodic prune keeps the history bounded even when nobody is
	// looking at the dashboard.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hist.PruneOlderThan(history.RetentionWindow)
			}
		}
	}()

	srv := server.New(server.Config{
		Hub:        h,
		Stats:      collector,
		Catalog:    cat,
		History:    hist,
		Settings:   st,
		Dispatcher: dispatcher,
		Bridge:     upstream.New(viper.GetString("bridge_url")),
		LogPath:    logFile,
		Port:       viper.GetString("port"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("bridgeboard listening on :%s (log: %s)", viper.GetString("port"), logFile)
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
