package model

// LogQuery carries the filter and window parameters of one dashboard
// log read. All filters are conjunctive; zero values mean "no filter".
type LogQuery struct {
	Search    string `json:"search,omitempty"`    // case-insensitive free text, OR across fields
	Level     string `json:"level,omitempty"`     // canonical level or known alias
	LogTypeID string `json:"logTypeId,omitempty"` // PatternRule id whose pattern must match
	Sort      string `json:"sort,omitempty"`      // "asc" or "desc" (default desc)
	Page      int    `json:"page,omitempty"`      // 1-indexed
	Limit     int    `json:"limit,omitempty"`     // page size
}

// LogPage is one page of a filtered, sorted log result set. Total and
// TotalPages describe the filtered set, not the unfiltered one.
type LogPage struct {
	Items      []LogEvent `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

// DispatchResult reports what the notification dispatcher did with one
// event: whether the webhook send succeeded and whether a history
// record was written.
type DispatchResult struct {
	Sent            bool   `json:"sent"`
	HistoryRecorded bool   `json:"historyRecorded"`
	ID              string `json:"id,omitempty"`
	Skipped         bool   `json:"skipped,omitempty"` // category disabled in settings
}
