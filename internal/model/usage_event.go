package model

import "time"

// UsageEvent is an accounting record written asynchronously by the
// usage worker, one per successful draft.
type UsageEvent struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Tone            string    `gorm:"size:32" json:"tone"`
	RequestedLength int       `json:"requested_length"`
	GeneratedChars  int       `json:"generated_chars"`
	CreatedAt       time.Time `json:"created_at"`
}
