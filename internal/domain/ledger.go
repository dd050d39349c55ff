package domain

import "time"

// Ledger is the per-user sparse numeric map. One ledger per user.
// An absent key means "no entry" — it is not the same as a zero value.
type Ledger struct {
	ID        string
	UserID    string
	Numbers   map[string]float64
	CreatedAt time.Time
}
