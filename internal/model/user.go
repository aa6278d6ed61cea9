package model

import "time"

// User is the internal view and carries the password hash. Hand
// PublicUser to clients, never this struct.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:30;not null" json:"name"`
	Username     string    `gorm:"size:20;not null;index" json:"username"`
	Email        string    `gorm:"size:128;not null;index" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsDeleted    bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type PublicUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}
