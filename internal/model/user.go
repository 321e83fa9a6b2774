package model

import "time"

// User is a resident account. Account management is owned by the profile
// service; this backend only checks existence when a device subscribes.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Room      string    `json:"room"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
