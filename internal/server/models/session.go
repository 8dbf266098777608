package models

import "time"

// Session is a refresh-session record: an opaque server-stored token that
// can mint new access tokens until it expires or is evicted by the per-user
// device cap.
type Session struct {
	ID        string
	UserID    string
	Token     string
	DeviceID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
