package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/internal/pkg/money"
)

const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Invoice belongs to one business and references a client. Line items are
// stored as a JSON array; totals are recomputed whenever the items, discount
// or shipping change.
type Invoice struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	BusinessID      uint           `gorm:"not null;index" json:"business_id"`
	ClientID        uint           `gorm:"not null;index" json:"client_id"`
	Number          string         `gorm:"type:varchar(50);not null" json:"number"`
	Status          string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	LineItemsJSON   string         `gorm:"type:longtext" json:"-"`
	Subtotal        float64        `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	DiscountPercent float64        `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	Shipping        float64        `gorm:"type:decimal(12,2);default:0" json:"shipping"`
	Total           float64        `gorm:"type:decimal(12,2);default:0" json:"total"`
	Notes           string         `gorm:"type:text" json:"notes"`
	DueAt           *time.Time     `gorm:"type:timestamp;default:null" json:"due_at"`
	PaidAt          *time.Time     `gorm:"type:timestamp;default:null" json:"paid_at"`

	// Email delivery tracking, updated by the email-provider webhook.
	EmailSentCount      int        `gorm:"default:0" json:"email_sent_count"`
	EmailDeliveredCount int        `gorm:"default:0" json:"email_delivered_count"`
	EmailOpenedCount    int        `gorm:"default:0" json:"email_opened_count"`
	EmailClickedCount   int        `gorm:"default:0" json:"email_clicked_count"`
	EmailBouncedCount   int        `gorm:"default:0" json:"email_bounced_count"`
	EmailSentAt         *time.Time `gorm:"type:timestamp;default:null" json:"email_sent_at"`
	EmailDeliveredAt    *time.Time `gorm:"type:timestamp;default:null" json:"email_delivered_at"`
	EmailOpenedAt       *time.Time `gorm:"type:timestamp;default:null" json:"email_opened_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// LineItems decodes the stored line-item JSON. Malformed entries come back as
// zero-value items; a corrupted top-level shape yields an empty list so the
// calculator never sees garbage.
func (i *Invoice) LineItems() []money.LineItem {
	items, err := money.ParseLineItems([]byte(i.LineItemsJSON))
	if err != nil {
		return nil
	}
	return items
}

// SetLineItems stores the items and recomputes totals.
func (i *Invoice) SetLineItems(items []money.LineItem) {
	i.LineItemsJSON = money.MarshalLineItems(items)
	i.RecalculateTotals()
}

// RecalculateTotals re-derives subtotal and total from the stored line items.
// Invariant: total = subtotal + shipping - subtotal*discount/100.
func (i *Invoice) RecalculateTotals() {
	totals := money.ComputeTotals(i.LineItems(), i.DiscountPercent, i.Shipping)
	i.Subtotal = totals.Subtotal
	i.Total = totals.Total
}

// IsPastDue reports whether a sent invoice has outlived its due date.
func (i *Invoice) IsPastDue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && i.DueAt != nil && now.After(*i.DueAt)
}

// MarkSent flips a draft to sent and records the send.
func (i *Invoice) MarkSent(now time.Time) {
	if i.Status == InvoiceStatusDraft {
		i.Status = InvoiceStatusSent
	}
	i.EmailSentCount++
	i.EmailSentAt = &now
}

// MarkPaid records payment.
func (i *Invoice) MarkPaid(now time.Time) {
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
}
