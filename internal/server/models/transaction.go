package models

// Transaction is the unit of synchronization. IDs are generated by the
// client so they stay stable across devices. Version carries the per-user
// watermark value assigned at the last accepted write, and Deleted marks a
// tombstone: rows are never removed physically, so pulls can propagate
// deletions to other devices.
type Transaction struct {
	ID       string  `json:"id"`
	UserID   string  `json:"-"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Memo     string  `json:"memo"`
	Deleted  bool    `json:"deleted"`
	Version  int64   `json:"version"`
}
