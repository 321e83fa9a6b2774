package model

import "time"

// Notification is one broadcast message. Records are immutable once created;
// the newest-first list of all records is the source of truth for the
// client-side unread count.
type Notification struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
