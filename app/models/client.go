package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Client is a simple contact record under a business. Invoice statistics for
// a client are aggregated on read, never stored.
type Client struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BusinessID uint           `gorm:"not null;index" json:"business_id"`
	Name       string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Email      string         `gorm:"type:varchar(200);default:''" json:"email" validate:"omitempty,email,max=200"`
	Phone      string         `gorm:"type:varchar(50);default:''" json:"phone" validate:"max=50"`
	Address    string         `gorm:"type:text" json:"address" validate:"max=1000"`
	Notes      string         `gorm:"type:text" json:"notes" validate:"max=2000"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
