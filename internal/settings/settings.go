// Package settings owns the persisted notification settings document.
package settings

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/soluify/bridgeboard/internal/model"
)

// ErrInvalidWebhook is returned when a webhook URL does not point at a
// recognized webhook endpoint.
var ErrInvalidWebhook = errors.New("webhook url must be a Discord webhook endpoint")

// webhookPrefixes are the accepted Discord webhook endpoint prefixes.
var webhookPrefixes = []string{
	"https://discord.com/api/webhooks/",
	"https://discordapp.com/api/webhooks/",
}

// Defaults returns the settings used on first read: no webhook, error
// and warning notifications on, success notifications off.
func Defaults() model.NotificationSettings {
	return model.NotificationSettings{
		NotifyOnSuccess: false,
		NotifyOnError:   true,
		NotifyOnWarning: true,
	}
}

// ValidateWebhookURL checks a webhook URL against the accepted endpoint
// prefixes. An empty URL is valid and means "not configured".
func ValidateWebhookURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	for _, p := range webhookPrefixes {
		if strings.HasPrefix(url, p) && len(url) > len(p) {
			return nil
		}
	}
	return ErrInvalidWebhook
}

// Store is the single owner of the settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load returns the current settings, falling back to defaults when the
// file is missing or unreadable. The defaults are persisted on first
// read so later edits start from a real document.
func (s *Store) Load() model.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		cfg := Defaults()
		if err := s.save(cfg); err != nil {
			log.Printf("settings: persisting defaults failed: %v", err)
		}
		return cfg
	}

	var cfg model.NotificationSettings
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Printf("settings: corrupt document at %s, using defaults: %v", s.path, err)
		return Defaults()
	}
	return cfg
}

// Save validates and persists a full replacement of the settings.
func (s *Store) Save(cfg model.NotificationSettings) error {
	if err := ValidateWebhookURL(cfg.WebhookURL); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

// save writes the document atomically. Callers hold the mutex.
func (s *Store) save(cfg model.NotificationSettings) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
