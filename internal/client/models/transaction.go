// Package models defines the client-side data shapes stored in the local
// sqlite database.
package models

// Transaction mirrors the server record plus local bookkeeping. Pending
// marks rows changed on this device and not yet pushed; Version is the
// server watermark stamp from the last accepted sync.
type Transaction struct {
	ID       string
	Amount   float64
	Category string
	Date     string
	Memo     string
	Deleted  bool
	Version  int64
	Pending  bool
}
