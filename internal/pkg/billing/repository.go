package billing

import (
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetUser(userID uint) (*models.User, error)
	GetOrCreateProfile(userID uint) (*models.UserProfile, error)
	SaveProfile(profile *models.UserProfile) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetOrCreateProfile(userID uint) (*models.UserProfile, error) {
	return models.GetOrCreateUserProfile(r.db, userID)
}

func (r *gormRepository) SaveProfile(profile *models.UserProfile) error {
	return r.db.Save(profile).Error
}
