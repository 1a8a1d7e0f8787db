package domain

import "time"

// NotificationType enumerates the kinds of alumni notifications.
type NotificationType string

const (
	NotificationUpdate   NotificationType = "update"
	NotificationDonation NotificationType = "donation"
	NotificationGeneral  NotificationType = "general"
)

// Notification is an in-app message for one alumni recipient. Created in
// bulk by fan-out; mutated only by read-state toggling.
type Notification struct {
	ID           string
	RecipientID  string
	ProjectID    *string
	Type         NotificationType
	Title        string
	Message      string
	IsRead       bool
	Metadata     map[string]any
	CreatedAt    time.Time
}
