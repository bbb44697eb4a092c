package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates an invoice repository backed by GORM.
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// CreateWithLimit re-checks the monthly invoice count inside the insert
// transaction so a racing pair of creations cannot both pass the guard.
func (r *invoiceRepository) CreateWithLimit(invoice *models.Invoice, limit int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if limit != entitlements.Unlimited {
			var count int64
			if err := tx.Model(&models.Invoice{}).
				Where("business_id = ? AND created_at >= ?", invoice.BusinessID, monthStart(time.Now())).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(limit) {
				return ErrLimitExceeded
			}
		}
		return tx.Create(invoice).Error
	})
}

func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByBusinessID(businessID uint, offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) CountCreatedSince(businessID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Invoice{}).
		Where("business_id = ? AND created_at >= ?", businessID, since).
		Count(&count).Error
	return count, err
}

func (r *invoiceRepository) Update(invoice *models.Invoice) error {
	return r.db.Save(invoice).Error
}

func (r *invoiceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Invoice{}, id).Error
}

// NextNumber produces a sequential human-readable invoice number per
// business, e.g. INV-2026-0042.
func (r *invoiceRepository) NextNumber(businessID uint) (string, error) {
	var count int64
	if err := r.db.Unscoped().Model(&models.Invoice{}).
		Where("business_id = ?", businessID).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", time.Now().UTC().Year(), count+1), nil
}

// monthStart returns the first instant of the current calendar month in UTC.
func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
