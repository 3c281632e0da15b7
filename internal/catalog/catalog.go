package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/soluify/bridgeboard/internal/model"
)

var (
	// ErrInvalidPattern is returned when a rule's regexp fails to compile.
	ErrInvalidPattern = errors.New("pattern does not compile")
	// ErrProtectedDefault is returned on attempts to delete a built-in rule.
	ErrProtectedDefault = errors.New("default rules cannot be deleted")
	// ErrNotFound is returned when no rule has the requested id.
	ErrNotFound = errors.New("rule not found")
)

const schemaVersion = 1

// defaultRules ship with the dashboard and cover the bridge's
// recurring log messages. They are re-added on load if missing.
var defaultRules = []model.PatternRule{
	{
		ID:          "fetch-failed",
		Name:        "Fetch Failed",
		Pattern:     `(?i)failed to fetch`,
		Level:       model.LevelError,
		Description: "Upstream request fetch failures",
	},
	{
		ID:          "automation-error",
		Name:        "Automation Error",
		Pattern:     `(?i)error during selenium automation|failed to initialize (selenium|browser)`,
		Level:       model.LevelCritical,
		Description: "Browser automation crashed or failed to start",
	},
	{
		ID:          "token-refresh",
		Name:        "Token Refresh",
		Pattern:     `(?i)access token.*(expire|refresh)|error refreshing access token`,
		Level:       model.LevelWarning,
		Description: "Debrid access token lifecycle events",
	},
	{
		ID:          "oom",
		Name:        "Out of Memory",
		Pattern:     `(?i)out of memory`,
		Level:       model.LevelCritical,
		Description: "Process or browser ran out of memory",
	},
	{
		ID:          "torrent-found",
		Name:        "Torrent Found",
		Pattern:     `(?i)torrent (found|added|cached)`,
		Level:       model.LevelSuccess,
		Description: "A release was located and added",
	},
	{
		ID:          "queue-complete",
		Name:        "Queue Complete",
		Pattern:     `(?i)(queue|all requests) (processing )?(complete|processed)`,
		Level:       model.LevelSuccess,
		Description: "The request queue drained",
	},
}

// document is the on-disk JSON structure for the persisted catalog.
type document struct {
	Version int                 `json:"version"`
	Rules   []model.PatternRule `json:"rules"`
}

// Catalog owns the ordered set of pattern rules and their persistence.
// It is the only component that touches the backing file.
type Catalog struct {
	mu       sync.Mutex
	path     string
	rules    []model.PatternRule
	compiled map[string]*regexp.Regexp
}

// Load reads the catalog document at path, re-adds any missing default
// rules, and persists the healed result. A missing or corrupt file is
// treated as an empty catalog, so a fresh install starts with exactly
// the defaults.
func Load(path string) (*Catalog, error) {
	c := &Catalog{
		path:     path,
		compiled: make(map[string]*regexp.Regexp),
	}

	var doc document
	raw, err := os.ReadFile(path)
	if err == nil {
		_ = json.Unmarshal(raw, &doc)
	}
	c.rules = doc.Rules

	healed := c.healDefaults()
	c.recompile()

	if healed || err != nil {
		if err := c.save(); err != nil {
			return nil, fmt.Errorf("persisting catalog: %w", err)
		}
	}

	return c, nil
}

// healDefaults re-inserts any default rule missing from the loaded set,
// keeping default order ahead of user-defined rules. Returns true if
// anything was added.
func (c *Catalog) healDefaults() bool {
	present := make(map[string]bool, len(c.rules))
	for _, r := range c.rules {
		present[r.ID] = true
	}

	var missing []model.PatternRule
	for _, d := range defaultRules {
		if !present[d.ID] {
			missing = append(missing, d)
		}
	}
	if len(missing) == 0 {
		return false
	}

	c.rules = append(missing, c.rules...)
	return true
}

// recompile rebuilds the compiled-pattern cache. Rules whose stored
// pattern no longer compiles (hand-edited file) are skipped for
// matching but kept in the list so the UI can show and fix them.
func (c *Catalog) recompile() {
	c.compiled = make(map[string]*regexp.Regexp, len(c.rules))
	for _, r := range c.rules {
		if re, err := regexp.Compile(r.Pattern); err == nil {
			c.compiled[r.ID] = re
		}
	}
}

// Rules returns a copy of the catalog in evaluation order.
func (c *Catalog) Rules() []model.PatternRule {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.PatternRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Get returns the rule with the given id.
func (c *Catalog) Get(id string) (model.PatternRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return model.PatternRule{}, ErrNotFound
}

// IsDefault reports whether id belongs to the built-in rule set.
func IsDefault(id string) bool {
	for _, d := range defaultRules {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Upsert validates and stores a rule, replacing any existing rule with
// the same id. A pattern that fails to compile is rejected with
// ErrInvalidPattern and never stored.
func (c *Catalog) Upsert(rule model.PatternRule) error {
	if strings.TrimSpace(rule.ID) == "" {
		return errors.New("rule id is required")
	}
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := false
	for i, r := range c.rules {
		if r.ID == rule.ID {
			c.rules[i] = rule
			replaced = true
			break
		}
	}
	if !replaced {
		c.rules = append(c.rules, rule)
	}
	c.compiled[rule.ID] = re

	return c.save()
}

// Delete removes a user-defined rule. Default rules are protected.
func (c *Catalog) Delete(id string) error {
	if IsDefault(id) {
		return ErrProtectedDefault
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, r := range c.rules {
		if r.ID == id {
			c.rules = append(c.rules[:i], c.rules[i+1:]...)
			delete(c.compiled, id)
			return c.save()
		}
	}
	return ErrNotFound
}

// Classify returns the id of the first rule, in catalog order, whose
// pattern matches the event's message.
func (c *Catalog) Classify(event model.LogEvent) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.rules {
		re, ok := c.compiled[r.ID]
		if !ok {
			continue
		}
		if re.MatchString(event.Message) {
			return r.ID, true
		}
	}
	return "", false
}

// ExtractTitle produces a short human-readable label for an event: the
// matched rule's name, or a truncated first sentence of the message
// when no rule matches.
func (c *Catalog) ExtractTitle(event model.LogEvent) string {
	if id, ok := c.Classify(event); ok {
		if rule, err := c.Get(id); err == nil && rule.Name != "" {
			return rule.Name
		}
	}
	return fallbackTitle(event)
}

// Matcher returns the compiled pattern for a rule id, or nil when the
// rule is unknown or its stored pattern does not compile. Callers
// treat nil as "no filter".
func (c *Catalog) Matcher(id string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compiled[id]
}

const maxTitleLen = 80

// fallbackTitle takes the first sentence of the message, truncated.
func fallbackTitle(event model.LogEvent) string {
	msg := strings.TrimSpace(event.Message)
	if msg == "" {
		msg = strings.TrimSpace(event.Raw)
	}
	if i := strings.IndexAny(msg, ".:\n"); i > 0 {
		msg = msg[:i]
	}
	if len(msg) > maxTitleLen {
		msg = msg[:maxTitleLen]
	}
	return msg
}

// save writes the catalog document to disk atomically. Callers hold the mutex.
func (c *Catalog) save() error {
	raw, err := json.MarshalIndent(document{Version: schemaVersion, Rules: c.rules}, "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
