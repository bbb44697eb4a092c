package models

import (
	"time"

	"gorm.io/gorm"
)

// UserProfile stores per-user plan and billing linkage. It is the system of
// record for the subscription tier; the payment processor is only consulted
// to re-derive it.
type UserProfile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex" json:"user_id"`
	Plan               string         `gorm:"type:varchar(50);default:'free_user'" json:"plan"`
	BillingCustomerID  string         `gorm:"type:varchar(191);default:'';index" json:"billing_customer_id"`
	SubscriptionID     string         `gorm:"type:varchar(191);default:''" json:"subscription_id"`
	SubscriptionStatus string         `gorm:"type:varchar(32);default:''" json:"subscription_status"`
	PlanSyncedAt       *time.Time     `gorm:"type:timestamp;default:null" json:"plan_synced_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserProfile returns existing profile metadata or creates defaults
func GetOrCreateUserProfile(db *gorm.DB, userID uint) (*UserProfile, error) {
	var up UserProfile
	if err := db.Where("user_id = ?", userID).First(&up).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			up = UserProfile{UserID: userID, Plan: "free_user"}
			if err := db.Create(&up).Error; err != nil {
				return nil, err
			}
			return &up, nil
		}
		return nil, err
	}
	return &up, nil
}
