package models

import "time"

// Subscription holds the single active subscription per user. The row is
// created on the first completed recurring checkout and updated in place on
// every later lifecycle event; cancellation downgrades the user's plan but
// leaves the row as-is (no history is kept).
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_subscriptions_user" json:"user_id"`
	Plan      string    `gorm:"type:varchar(50);not null" json:"plan"`
	Period    string    `gorm:"type:varchar(20);not null" json:"period"`
	StartDate time.Time `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:timestamp;not null" json:"end_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
