package model

import "time"

// Notification categories accepted by the dispatcher.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyWarning = "warning"
)

// ValidNotificationType reports whether t is one of the three accepted
// notification categories.
func ValidNotificationType(t string) bool {
	switch t {
	case NotifySuccess, NotifyError, NotifyWarning:
		return true
	}
	return false
}

// NotificationEvent is a persisted record of an attempted operator
// notification, kept regardless of delivery success.
type NotificationEvent struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"` // success, error, warning
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Successful bool              `json:"successful"` // webhook delivery outcome
	Viewed     bool              `json:"viewed"`
}

// DedupKey is the logical identity used to avoid re-notifying the same
// log-derived event twice within the retention window.
func (e NotificationEvent) DedupKey() string {
	return e.Type + "\x00" + e.Title + "\x00" + e.Message
}

// NotificationSettings gates which categories are relayed and where.
type NotificationSettings struct {
	WebhookURL      string `json:"webhookUrl"`
	NotifyOnSuccess bool   `json:"notifyOnSuccess"`
	NotifyOnError   bool   `json:"notifyOnError"`
	NotifyOnWarning bool   `json:"notifyOnWarning"`
}

// Enabled reports whether the given notification type is switched on.
func (s NotificationSettings) Enabled(typ string) bool {
	switch typ {
	case NotifySuccess:
		return s.NotifyOnSuccess
	case NotifyError:
		return s.NotifyOnError
	case NotifyWarning:
		return s.NotifyOnWarning
	}
	return false
}
