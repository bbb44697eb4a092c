package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
)

type estimateRepository struct {
	db *gorm.DB
}

// NewEstimateRepository creates an estimate repository backed by GORM.
func NewEstimateRepository(db *gorm.DB) EstimateRepository {
	return &estimateRepository{db: db}
}

func (r *estimateRepository) Create(estimate *models.Estimate) error {
	if estimate.Number == "" {
		var count int64
		if err := r.db.Unscoped().Model(&models.Estimate{}).
			Where("business_id = ?", estimate.BusinessID).
			Count(&count).Error; err != nil {
			return err
		}
		estimate.Number = fmt.Sprintf("EST-%d-%04d", time.Now().UTC().Year(), count+1)
	}
	return r.db.Create(estimate).Error
}

func (r *estimateRepository) GetByID(id uint) (*models.Estimate, error) {
	var estimate models.Estimate
	if err := r.db.First(&estimate, id).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *estimateRepository) GetByShareToken(token string) (*models.Estimate, error) {
	var estimate models.Estimate
	if err := r.db.Where("share_token = ?", token).First(&estimate).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *estimateRepository) GetByBusinessID(businessID uint, offset, limit int) ([]models.Estimate, error) {
	var estimates []models.Estimate
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&estimates).Error
	return estimates, err
}

func (r *estimateRepository) Update(estimate *models.Estimate) error {
	return r.db.Save(estimate).Error
}

func (r *estimateRepository) Delete(id uint) error {
	return r.db.Delete(&models.Estimate{}, id).Error
}
