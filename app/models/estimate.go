package models

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/internal/pkg/money"
)

const (
	EstimateStatusDraft     = "draft"
	EstimateStatusSent      = "sent"
	EstimateStatusViewed    = "viewed"
	EstimateStatusAccepted  = "accepted"
	EstimateStatusRejected  = "rejected"
	EstimateStatusConverted = "converted"
)

// ErrEstimateAlreadyResponded is returned when a client responds to an
// estimate that is already in a terminal state.
var ErrEstimateAlreadyResponded = errors.New("estimate has already been responded to")

// Estimate mirrors the invoice shape with a linear status progression:
// draft -> sent/viewed -> accepted|rejected -> converted.
type Estimate struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	BusinessID      uint           `gorm:"not null;index" json:"business_id"`
	ClientID        uint           `gorm:"not null;index" json:"client_id"`
	Number          string         `gorm:"type:varchar(50);not null" json:"number"`
	Status          string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ShareToken      string         `gorm:"type:varchar(36);uniqueIndex" json:"share_token"`
	LineItemsJSON   string         `gorm:"type:longtext" json:"-"`
	Subtotal        float64        `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	DiscountPercent float64        `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	Shipping        float64        `gorm:"type:decimal(12,2);default:0" json:"shipping"`
	Total           float64        `gorm:"type:decimal(12,2);default:0" json:"total"`
	Notes           string         `gorm:"type:text" json:"notes"`
	ClientNotes     string         `gorm:"type:text" json:"client_notes"`
	ClientResponseAt *time.Time    `gorm:"type:timestamp;default:null" json:"client_response_at"`
	ExpiresAt       *time.Time     `gorm:"type:timestamp;default:null" json:"expires_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// LineItems decodes the stored line-item JSON.
func (e *Estimate) LineItems() []money.LineItem {
	items, err := money.ParseLineItems([]byte(e.LineItemsJSON))
	if err != nil {
		return nil
	}
	return items
}

// SetLineItems stores the items and recomputes totals.
func (e *Estimate) SetLineItems(items []money.LineItem) {
	e.LineItemsJSON = money.MarshalLineItems(items)
	totals := money.ComputeTotals(items, e.DiscountPercent, e.Shipping)
	e.Subtotal = totals.Subtotal
	e.Total = totals.Total
}

// IsTerminal reports whether the estimate reached a terminal response state.
func (e *Estimate) IsTerminal() bool {
	switch e.Status {
	case EstimateStatusAccepted, EstimateStatusRejected, EstimateStatusConverted:
		return true
	default:
		return false
	}
}

// MarkSent moves a draft estimate to sent.
func (e *Estimate) MarkSent() {
	if e.Status == EstimateStatusDraft {
		e.Status = EstimateStatusSent
	}
}

// MarkViewed records the first public view of a sent estimate.
func (e *Estimate) MarkViewed() {
	if e.Status == EstimateStatusSent {
		e.Status = EstimateStatusViewed
	}
}

// ApplyClientResponse records an accept/reject decision from the client.
// A terminal estimate rejects further responses without touching
// client_notes or client_response_at.
func (e *Estimate) ApplyClientResponse(accepted bool, notes string, now time.Time) error {
	if e.IsTerminal() {
		return ErrEstimateAlreadyResponded
	}
	if accepted {
		e.Status = EstimateStatusAccepted
	} else {
		e.Status = EstimateStatusRejected
	}
	e.ClientNotes = notes
	e.ClientResponseAt = &now
	return nil
}

// MarkConverted flags an accepted estimate as converted into an invoice.
func (e *Estimate) MarkConverted() error {
	if e.Status != EstimateStatusAccepted {
		return errors.New("only accepted estimates can be converted")
	}
	e.Status = EstimateStatusConverted
	return nil
}
