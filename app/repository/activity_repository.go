package repository

import (
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
)

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates an activity-log repository backed by GORM.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *activityRepository) GetByBusinessID(businessID uint, offset, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, err
}
