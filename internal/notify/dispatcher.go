// Package notify sends operator notifications to a Discord webhook and
// records every attempt into the notification history.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/settings"
)

var (
	// ErrNotConfigured is returned when no webhook endpoint is set.
	ErrNotConfigured = errors.New("no notification webhook configured")
	// ErrInvalidType is returned for types outside success/error/warning.
	ErrInvalidType = errors.New("invalid notification type")
)

// sendTimeout bounds the outbound webhook call. A webhook that does
// not answer is a delivery failure, not a hang.
const sendTimeout = 10 * time.Second

// embed colors per notification type, Discord decimal RGB.
var typeColors = map[string]int{
	model.NotifySuccess: 0x2ECC71,
	model.NotifyError:   0xE74C3C,
	model.NotifyWarning: 0xF39C12,
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Fields      []embedField `json:"fields,omitempty"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Dispatcher gates, delivers and records notifications. Delivery
// failures are captured on the stored record, never raised.
type Dispatcher struct {
	settings *settings.Store
	history  *history.Store
	client   *http.Client
}

// New creates a Dispatcher with a send timeout applied to the webhook client.
func New(st *settings.Store, hist *history.Store) *Dispatcher {
	return &Dispatcher{
		settings: st,
		history:  hist,
		client:   &http.Client{Timeout: sendTimeout},
	}
}

// Dispatch runs one notification through the gate-send-record sequence.
//
// A disabled category is a deliberate no-op: no send, no history entry.
// Once the category is enabled the history append always happens,
// whatever the delivery outcome, so the history is the record of what
// we tried to notify.
func (d *Dispatcher) Dispatch(ctx context.Context, typ, title, message string, details map[string]string) (model.DispatchResult, error) {
	if !model.ValidNotificationType(typ) {
		return model.DispatchResult{}, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}

	cfg := d.settings.Load()
	if cfg.WebhookURL == "" {
		return model.DispatchResult{}, ErrNotConfigured
	}
	if !cfg.Enabled(typ) {
		return model.DispatchResult{Skipped: true}, nil
	}

	event := model.NotificationEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}

	event.Successful = d.send(ctx, cfg.WebhookURL, event)
	recorded := d.history.Append(event)

	return model.DispatchResult{
		Sent:            event.Successful,
		HistoryRecorded: recorded,
		ID:              event.ID,
	}, nil
}

// send posts the event to the webhook. Network errors and non-2xx
// responses both come back as false.
func (d *Dispatcher) send(ctx context.Context, url string, event model.NotificationEvent) bool {
	body, err := json.Marshal(buildPayload(event))
	if err != nil {
		log.Printf("notify: marshal failed: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: building request failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("notify: webhook delivery failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("notify: webhook returned status %d", resp.StatusCode)
		return false
	}
	return true
}

func buildPayload(event model.NotificationEvent) webhookPayload {
	e := embed{
		Title:       event.Title,
		Description: event.Message,
		Color:       typeColors[event.Type],
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
	}
	for name, value := range event.Details {
		e.Fields = append(e.Fields, embedField{Name: name, Value: value, Inline: true})
	}
	return webhookPayload{Embeds: []embed{e}}
}
