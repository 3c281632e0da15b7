package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/soluify/bridgeboard/internal/model"
)

func TestLoadDefaultsOnFirstRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notification-settings.json")
	s := New(path)

	cfg := s.Load()
	if cfg.WebhookURL != "" {
		t.Errorf("expected empty webhook by default, got %q", cfg.WebhookURL)
	}
	if !cfg.NotifyOnError || !cfg.NotifyOnWarning {
		t.Error("expected error and warning notifications on by default")
	}
	if cfg.NotifyOnSuccess {
		t.Error("expected success notifications off by default")
	}

	// First read persists the defaults.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file after first read: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "notification-settings.json"))

	cfg := model.NotificationSettings{
		WebhookURL:      "https://discord.com/api/webhooks/123/abc",
		NotifyOnSuccess: true,
		NotifyOnError:   true,
	}
	if err := s.Save(cfg); err != nil {
		t.Fatal(err)
	}

	got := s.Load()
	if got != cfg {
		t.Errorf("reload mismatch: %+v != %+v", got, cfg)
	}
}

func TestSaveRejectsBadWebhook(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "notification-settings.json"))

	err := s.Save(model.NotificationSettings{WebhookURL: "https://example.com/hook"})
	if !errors.Is(err, ErrInvalidWebhook) {
		t.Errorf("expected ErrInvalidWebhook, got %v", err)
	}
}

func TestValidateWebhookURL(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"", true},
		{"https://discord.com/api/webhooks/123/token", true},
		{"https://discordapp.com/api/webhooks/123/token", true},
		{"https://discord.com/api/webhooks/", false},
		{"http://discord.com/api/webhooks/123/token", false},
		{"https://evil.com/api/webhooks/123", false},
	}

	for _, c := range cases {
		err := ValidateWebhookURL(c.url)
		if c.ok && err != nil {
			t.Errorf("ValidateWebhookURL(%q) = %v, want nil", c.url, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidateWebhookURL(%q) = nil, want error", c.url)
		}
	}
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notification-settings.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := New(path).Load()
	if !cfg.NotifyOnError {
		t.Error("expected defaults on corrupt settings file")
	}
}
