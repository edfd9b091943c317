package models

import "time"

// SyncRecord journals one sync decision: a lead pushed to the board or a
// card move pulled back into the lead store. Skipped decisions are recorded
// too, with Applied false and the reason in Note.
type SyncRecord struct {
	ID         string `gorm:"primaryKey"`
	RunID      string `gorm:"index"`
	LeadID     string
	ItemID     string
	Direction  string // "push" or "pull"
	FromStatus string
	ToStatus   string
	Applied    bool
	Note       string
	CreatedAt  time.Time
}
