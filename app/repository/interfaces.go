package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
)

// ErrLimitExceeded is returned by the guarded create paths when the
// entitlement ceiling is reached inside the insert transaction.
var ErrLimitExceeded = errors.New("entitlement limit exceeded")

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	Update(user *models.User) error
	GetProfile(userID uint) (*models.UserProfile, error)
}

// BusinessRepository defines the interface for business-profile operations.
type BusinessRepository interface {
	// CreateWithLimit inserts the business only if the owner's business count
	// is still below limit, checked inside the same transaction.
	CreateWithLimit(business *models.Business, limit int) error
	GetByID(id uint) (*models.Business, error)
	GetByUserID(userID uint) ([]models.Business, error)
	CountByUserID(userID uint) (int64, error)
	Update(business *models.Business) error
	// DeleteCascade removes the business and everything scoped to it with
	// explicit sequential deletes.
	DeleteCascade(id uint) error
}

// ClientRepository defines the interface for client operations.
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(id uint) (*models.Client, error)
	GetByBusinessID(businessID uint, offset, limit int) ([]models.Client, error)
	Update(client *models.Client) error
	Delete(id uint) error
	GetStats(clientID uint) (*ClientStats, error)
}

// InvoiceRepository defines the interface for invoice operations.
type InvoiceRepository interface {
	// CreateWithLimit inserts the invoice only if the business's invoice
	// count for the current calendar month is still below limit, checked
	// inside the same transaction.
	CreateWithLimit(invoice *models.Invoice, limit int) error
	GetByID(id uint) (*models.Invoice, error)
	GetByBusinessID(businessID uint, offset, limit int) ([]models.Invoice, error)
	CountCreatedSince(businessID uint, since time.Time) (int64, error)
	Update(invoice *models.Invoice) error
	Delete(id uint) error
	NextNumber(businessID uint) (string, error)
}

// EstimateRepository defines the interface for estimate operations.
type EstimateRepository interface {
	Create(estimate *models.Estimate) error
	GetByID(id uint) (*models.Estimate, error)
	GetByShareToken(token string) (*models.Estimate, error)
	GetByBusinessID(businessID uint, offset, limit int) ([]models.Estimate, error)
	Update(estimate *models.Estimate) error
	Delete(id uint) error
}

// ActivityRepository defines the interface for the append-only activity log.
type ActivityRepository interface {
	Append(entry *models.ActivityLog) error
	GetByBusinessID(businessID uint, offset, limit int) ([]models.ActivityLog, error)
}

// WebhookEventRepository defines the interface for idempotent webhook ingest.
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// ClientStats provides aggregated invoice numbers for a single client,
// computed on read.
type ClientStats struct {
	InvoiceCount int64   `json:"invoice_count"`
	TotalBilled  float64 `json:"total_billed"`
	TotalPaid    float64 `json:"total_paid"`
	Outstanding  float64 `json:"outstanding"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Business BusinessRepository
	Client   ClientRepository
	Invoice  InvoiceRepository
	Estimate EstimateRepository
	Activity ActivityRepository
	Webhook  WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Business: NewBusinessRepository(db),
		Client:   NewClientRepository(db),
		Invoice:  NewInvoiceRepository(db),
		Estimate: NewEstimateRepository(db),
		Activity: NewActivityRepository(db),
		Webhook:  NewWebhookEventRepository(db),
	}
}
