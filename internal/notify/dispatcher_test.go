package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/settings"
)

// writeSettings persists a settings document directly so tests can
// point the webhook at a local httptest server.
func writeSettings(t *testing.T, dir string, cfg model.NotificationSettings) *settings.Store {
	t.Helper()
	path := filepath.Join(dir, "notification-settings.json")
	raw, _ := json.Marshal(cfg)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}
	return settings.New(path)
}

func newDispatcher(t *testing.T, cfg model.NotificationSettings) (*Dispatcher, *history.Store) {
	t.Helper()
	dir := t.TempDir()
	st := writeSettings(t, dir, cfg)
	hist := history.New(filepath.Join(dir, "notifications.json"))
	return New(st, hist), hist
}

func TestDispatchNotConfigured(t *testing.T) {
	d, hist := newDispatcher(t, model.NotificationSettings{NotifyOnError: true})

	_, err := d.Dispatch(context.Background(), model.NotifyError, "Fetch Failed", "timeout", nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if len(hist.List()) != 0 {
		t.Error("unconfigured dispatch must not touch history")
	}
}

func TestDispatchInvalidType(t *testing.T) {
	d, _ := newDispatcher(t, model.NotificationSettings{})

	_, err := d.Dispatch(context.Background(), "fatal", "t", "m", nil)
	if !errors.Is(err, ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestDispatchDisabledCategory(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook must not be called for a disabled category")
	}))
	defer ts.Close()

	d, hist := newDispatcher(t, model.NotificationSettings{
		WebhookURL:    ts.URL,
		NotifyOnError: false,
	})

	res, err := d.Dispatch(context.Background(), model.NotifyError, "Fetch Failed", "timeout", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent || res.HistoryRecorded {
		t.Errorf("disabled category must be a no-op, got %+v", res)
	}
	if !res.Skipped {
		t.Error("expected skipped flag")
	}
	if len(hist.List()) != 0 {
		t.Error("disabled categories must leave no history record")
	}
}

func TestDispatchDelivered(t *testing.T) {
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	d, hist := newDispatcher(t, model.NotificationSettings{
		WebhookURL:    ts.URL,
		NotifyOnError: true,
	})

	res, err := d.Dispatch(context.Background(), model.NotifyError, "Fetch Failed", "timeout",
		map[string]string{"attempts": "3"})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Sent || !res.HistoryRecorded {
		t.Errorf("expected sent and recorded, got %+v", res)
	}
	if res.ID == "" {
		t.Error("expected a fresh id")
	}

	events := hist.List()
	if len(events) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(events))
	}
	if !events[0].Successful {
		t.Error("expected successful delivery flag")
	}
	if events[0].Viewed {
		t.Error("new events start unviewed")
	}

	var payload webhookPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("webhook body not JSON: %v", err)
	}
	if len(payload.Embeds) != 1 || payload.Embeds[0].Title != "Fetch Failed" {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if len(payload.Embeds[0].Fields) != 1 || payload.Embeds[0].Fields[0].Name != "attempts" {
		t.Errorf("details not carried into embed fields: %+v", payload.Embeds[0].Fields)
	}
}

func TestDispatchUnreachableWebhook(t *testing.T) {
	// A server started and immediately closed gives a dead endpoint.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	d, hist := newDispatcher(t, model.NotificationSettings{
		WebhookURL:    url,
		NotifyOnError: true,
	})

	res, err := d.Dispatch(context.Background(), model.NotifyError, "Fetch Failed", "timeout", nil)
	if err != nil {
		t.Fatalf("transport failure must not raise: %v", err)
	}
	if res.Sent {
		t.Error("expected sent=false for unreachable webhook")
	}
	if !res.HistoryRecorded {
		t.Error("history append must still happen after a delivery failure")
	}

	events := hist.List()
	if len(events) != 1 || events[0].Successful {
		t.Errorf("expected one record with successful=false, got %+v", events)
	}
}

func TestDispatchNon2xxResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	d, _ := newDispatcher(t, model.NotificationSettings{
		WebhookURL:      ts.URL,
		NotifyOnWarning: true,
	})

	res, err := d.Dispatch(context.Background(), model.NotifyWarning, "Slow", "queue backlog", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent {
		t.Error("non-2xx response must count as delivery failure")
	}
	if !res.HistoryRecorded {
		t.Error("history append must still happen")
	}
}

func TestDispatchIDsAreUnique(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	d, _ := newDispatcher(t, model.NotificationSettings{
		WebhookURL:    ts.URL,
		NotifyOnError: true,
	})

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		res, err := d.Dispatch(context.Background(), model.NotifyError, "T", "m", nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[res.ID] {
			t.Fatalf("id collision: %s", res.ID)
		}
		seen[res.ID] = true
	}
}
