package repository

import (
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a client repository backed by GORM.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

func (r *clientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) GetByBusinessID(businessID uint, offset, limit int) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Where("business_id = ?", businessID).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&clients).Error
	return clients, err
}

func (r *clientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

func (r *clientRepository) Delete(id uint) error {
	return r.db.Delete(&models.Client{}, id).Error
}

// GetStats aggregates the client's invoice numbers on read; nothing here is
// stored on the client row.
func (r *clientRepository) GetStats(clientID uint) (*ClientStats, error) {
	var stats ClientStats
	err := r.db.Model(&models.Invoice{}).
		Select(
			"COUNT(*) AS invoice_count, "+
				"COALESCE(SUM(total), 0) AS total_billed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN total ELSE 0 END), 0) AS total_paid, "+
				"COALESCE(SUM(CASE WHEN status IN (?, ?) THEN total ELSE 0 END), 0) AS outstanding",
			models.InvoiceStatusPaid,
			models.InvoiceStatusSent, models.InvoiceStatusOverdue,
		).
		Where("client_id = ?", clientID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
