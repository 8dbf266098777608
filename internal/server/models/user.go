package models

import "time"

// User is the server-side account record. RecoveryKey is a single-use
// secret: it is handed out once at registration and rotated on every
// successful password reset. SyncVersion is the per-user watermark stamped
// onto transactions as they are accepted.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	RecoveryKey  string
	SyncVersion  int64
	CreatedAt    time.Time
}
