package models

import "time"

const (
	ActivityActionCreated   = "created"
	ActivityActionUpdated   = "updated"
	ActivityActionDeleted   = "deleted"
	ActivityActionSent      = "sent"
	ActivityActionPaid      = "paid"
	ActivityActionResponded = "responded"
	ActivityActionConverted = "converted"
)

// ActivityLog is an append-only record of actions against a business and its
// invoices, estimates and clients. Display only, never mutated.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BusinessID uint      `gorm:"not null;index" json:"business_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	EntityType string    `gorm:"type:varchar(30);not null" json:"entity_type"`
	EntityID   uint      `gorm:"not null" json:"entity_id"`
	Action     string    `gorm:"type:varchar(30);not null" json:"action"`
	Detail     string    `gorm:"type:varchar(500);default:''" json:"detail"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
