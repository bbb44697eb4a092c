package repository

import (
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository creates a business repository backed by GORM.
func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

// CreateWithLimit re-checks the owner's business count inside the insert
// transaction so two racing creations cannot both slip under the ceiling.
func (r *businessRepository) CreateWithLimit(business *models.Business, limit int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if limit != entitlements.Unlimited {
			var count int64
			if err := tx.Model(&models.Business{}).
				Where("user_id = ?", business.UserID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(limit) {
				return ErrLimitExceeded
			}
		}
		return tx.Create(business).Error
	})
}

func (r *businessRepository) GetByID(id uint) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) GetByUserID(userID uint) ([]models.Business, error) {
	var businesses []models.Business
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&businesses).Error
	return businesses, err
}

func (r *businessRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Business{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *businessRepository) Update(business *models.Business) error {
	return r.db.Save(business).Error
}

// DeleteCascade removes the business and its scoped rows with explicit
// sequential deletes, not a database-level cascade.
func (r *businessRepository) DeleteCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", id).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", id).Delete(&models.Estimate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", id).Delete(&models.Client{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Business{}, id).Error
	})
}
