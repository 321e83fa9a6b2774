package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// One user may hold several (one per device); the endpoint is unique across
// all of them. Dead endpoints are flagged inactive, never hard-deleted, so a
// fresh subscription from the same device is a new row with a new endpoint.
type PushSubscription struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"userId"`
	Endpoint  string    `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
