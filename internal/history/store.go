// Package history owns the persisted notification history: an ordered,
// newest-first collection with a viewed watermark and age-based
// pruning. The backing file is a single JSON document; every mutation
// is a read-modify-write executed under one in-process mutex so
// concurrent requests cannot lose each other's updates.
package history

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/soluify/bridgeboard/internal/model"
)

// RetentionWindow is how long notification records are kept.
const RetentionWindow = 24 * time.Hour

// document is the on-disk JSON structure for the persisted history.
type document struct {
	Events []model.NotificationEvent `json:"events"`
}

// Store is the single owner of the notification history file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store backed by the file at path. The file does not
// need to exist; a missing or corrupt file reads as empty history.
func New(path string) *Store {
	return &Store{path: path}
}

// load reads the current document. Callers hold the mutex. Read
// failures degrade to an empty collection so a fresh install or a
// transiently corrupt file never blocks the dashboard.
func (s *Store) load() document {
	var doc document
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("history: corrupt document at %s, starting empty: %v", s.path, err)
		return document{}
	}
	return doc
}

// save writes the document to disk atomically. Callers hold the mutex.
func (s *Store) save(doc document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Append inserts an event at the head of the history (newest first).
// It returns false, without failing, when the write cannot be
// persisted; the caller decides whether to retry or drop.
func (s *Store) Append(event model.NotificationEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Events = append([]model.NotificationEvent{event}, doc.Events...)

	if err := s.save(doc); err != nil {
		log.Printf("history: append failed: %v", err)
		return false
	}
	return true
}

// List returns a copy of all events, newest first.
func (s *Store) List() []model.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	out := make([]model.NotificationEvent, len(doc.Events))
	copy(out, doc.Events)
	return out
}

// MarkViewedBefore sets viewed on every event with timestamp <= cutoff
// and returns the post-update unviewed count, letting the caller render
// a live badge without a second read.
func (s *Store) MarkViewedBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	unviewed := 0
	for i := range doc.Events {
		if !doc.Events[i].Timestamp.After(cutoff) {
			doc.Events[i].Viewed = true
		}
		if !doc.Events[i].Viewed {
			unviewed++
		}
	}

	if err := s.save(doc); err != nil {
		log.Printf("history: mark viewed failed: %v", err)
	}
	return unviewed
}

// CountUnviewed returns the number of events not yet acknowledged.
func (s *Store) CountUnviewed() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	unviewed := 0
	for _, e := range doc.Events {
		if !e.Viewed {
			unviewed++
		}
	}
	return unviewed
}

// PruneOlderThan removes events older than the given window, measured
// against wall-clock time at call time, and returns the remaining
// count. Repeated calls with no new expirations are no-ops.
func (s *Store) PruneOlderThan(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	cutoff := time.Now().Add(-window)

	kept := doc.Events[:0]
	removed := 0
	for _, e := range doc.Events {
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	doc.Events = kept

	if removed > 0 {
		if err := s.save(doc); err != nil {
			log.Printf("history: prune failed: %v", err)
		}
	}
	return len(doc.Events)
}

// ContainsRecent reports whether an event with the same dedup key
// (type, title, message) exists within the given window. The monitor
// uses this to avoid re-alerting on the same log-derived event.
func (s *Store) ContainsRecent(typ, title, message string, window time.Duration) bool {
	key := model.NotificationEvent{Type: typ, Title: title, Message: message}.DedupKey()
	cutoff := time.Now().Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.load().Events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		if e.DedupKey() == key {
			return true
		}
	}
	return false
}
