package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"email-assistant/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// FindActiveByLogin resolves a login handle or token subject: handles
// containing "@" match the email column, everything else the username
// column. Soft-deleted users never match. This is the only lookup the
// auth paths use, so the is_deleted filter lives in exactly one place.
func (r *UserRepository) FindActiveByLogin(login string) (*model.User, error) {
	column := "username"
	if strings.Contains(login, "@") {
		column = "email"
	}

	var user model.User
	err := r.db.Where(column+" = ? AND is_deleted = ?", login, false).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by %s failed: %w", column, err)
	}
	return &user, nil
}
