package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"email-assistant/internal/model"
)

type EmailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

func (r *EmailLogRepository) Create(log *model.EmailLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("create email log failed: %w", err)
	}
	return nil
}

func (r *EmailLogRepository) ListByUserID(userID uint) ([]model.EmailLog, error) {
	logs := []model.EmailLog{}
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list email logs failed: %w", err)
	}
	return logs, nil
}

// GetByIDAndUserID filters on both keys in the query itself, so a log
// owned by someone else is indistinguishable from one that does not
// exist.
func (r *EmailLogRepository) GetByIDAndUserID(id, userID uint) (*model.EmailLog, error) {
	var log model.EmailLog
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get email log failed: %w", err)
	}
	return &log, nil
}
