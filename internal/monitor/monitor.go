// Package monitor watches the live event stream and relays
// alert-worthy events to the notification dispatcher. This is the loop
// that turns the bridge's log into chat alerts.
package monitor

import (
	"context"
	"errors"
	"log"

	"github.com/soluify/bridgeboard/internal/catalog"
	"github.com/soluify/bridgeboard/internal/history"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/notify"
)

// Monitor consumes parsed log events and dispatches notifications for
// the ones worth an operator's attention, deduplicating by
// type+title+message within the history retention window.
type Monitor struct {
	events     <-chan model.LogEvent
	catalog    *catalog.Catalog
	history    *history.Store
	dispatcher *notify.Dispatcher
}

// New creates a Monitor reading from the given hub subscription.
func New(events <-chan model.LogEvent, cat *catalog.Catalog, hist *history.Store, d *notify.Dispatcher) *Monitor {
	return &Monitor{
		events:     events,
		catalog:    cat,
		history:    hist,
		dispatcher: d,
	}
}

// Start consumes events until the context is cancelled or the stream closes.
func (m *Monitor) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.events:
			if !ok {
				return
			}
			m.handle(ctx, event)
		}
	}
}

// notifyType maps an event's severity to a notification category.
// Levels below warning never alert.
func notifyType(level string) (string, bool) {
	switch level {
	case model.LevelError, model.LevelCritical:
		return model.NotifyError, true
	case model.LevelWarning:
		return model.NotifyWarning, true
	case model.LevelSuccess:
		return model.NotifySuccess, true
	}
	return "", false
}

func (m *Monitor) handle(ctx context.Context, event model.LogEvent) {
	typ, ok := notifyType(event.Level)
	if !ok {
		return
	}

	title := m.catalog.ExtractTitle(event)
	if m.history.ContainsRecent(typ, title, event.Message, history.RetentionWindow) {
		return
	}

	details := map[string]string{"level": event.Level}
	if event.Source != "" {
		details["source"] = event.Source
	}

	_, err := m.dispatcher.Dispatch(ctx, typ, title, event.Message, details)
	switch {
	case err == nil:
	case errors.Is(err, notify.ErrNotConfigured):
		// No webhook yet; keep consuming quietly.
	default:
		log.Printf("monitor: dispatch failed: %v", err)
	}
}
