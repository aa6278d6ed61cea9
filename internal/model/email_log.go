package model

import "time"

// EmailLog records one successful drafting call. Rows are append-only:
// there is no update or delete path.
type EmailLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	UserInput      string    `gorm:"type:text;not null" json:"user_input"`
	ReplyTo        *string   `gorm:"type:text" json:"reply_to"`
	Context        *string   `gorm:"type:text" json:"context"`
	Length         *int      `json:"length"`
	Tone           string    `gorm:"size:32;not null" json:"tone"`
	GeneratedEmail string    `gorm:"type:text;not null" json:"generated_email"`
	CreatedAt      time.Time `json:"timestamp"`
}
