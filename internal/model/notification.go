package model

import "time"

// Notification is a single entry from the user's notification feed.
type Notification struct {
	// ID is the backend's numeric identifier.
	ID int `json:"id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"is_read"`

	// UserID is the owner of this notification.
	UserID int `json:"user_id"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
