package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Business is the tenant unit: every invoice, estimate, client and activity
// entry is scoped to exactly one business, which is owned by exactly one user.
type Business struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UserID              uint           `gorm:"not null;index" json:"user_id"`
	Name                string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Email               string         `gorm:"type:varchar(200);default:''" json:"email" validate:"omitempty,email,max=200"`
	Phone               string         `gorm:"type:varchar(50);default:''" json:"phone" validate:"max=50"`
	Address             string         `gorm:"type:text" json:"address" validate:"max=1000"`
	TaxNumber           string         `gorm:"type:varchar(100);default:''" json:"tax_number" validate:"max=100"`
	Currency            string         `gorm:"type:varchar(3);default:'USD'" json:"currency" validate:"len=3"`
	ExtraInvoiceCredits int            `gorm:"default:0" json:"extra_invoice_credits"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Business) Validate() error {
	v := validator.New()

	return v.Struct(b)
}
