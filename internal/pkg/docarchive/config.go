package docarchive

import (
	"errors"
	"fmt"
	"time"

	"github.com/invoiceflow/zerodue/internal/pkg/env"
)

// Config holds the document archive S3 configuration.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads archive configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("DOC_ARCHIVE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the document archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the document archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the document archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the document archive is enabled.
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// InvoiceObjectKey generates the S3 key for an invoice snapshot.
// Format: invoices/<business>/YYYY/MM/<number>-<unix>.json
func (c *Config) InvoiceObjectKey(businessID uint, number string, sentAt time.Time) string {
	return fmt.Sprintf("invoices/%d/%04d/%02d/%s-%d.json",
		businessID, sentAt.Year(), int(sentAt.Month()), number, sentAt.Unix())
}
