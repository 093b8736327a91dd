package domain

import (
	"time"
)

// JournalEntry is one sequenced storefront event as persisted in the journal.
type JournalEntry struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	SessionID string    `gorm:"index" json:"session_id"`
	Type      string    `json:"type"`
	Payload   string    `json:"payload"` // JSON-encoded event body
	CreatedAt time.Time `json:"created_at"`
}
