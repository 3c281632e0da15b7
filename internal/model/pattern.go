package model

// PatternRule is a named regular expression used to classify log
// messages into semantic log types and to extract short titles.
// Rules are evaluated in catalog order; the first match wins.
type PatternRule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Pattern     string `json:"pattern"` // regexp source text, validated before storage
	Level       string `json:"level"`   // associated severity category
	Description string `json:"description,omitempty"`
}
