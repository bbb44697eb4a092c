// Package docarchive stores immutable JSON snapshots of sent invoices in an
// S3-compatible bucket. A snapshot records what the client was actually sent,
// independent of later edits to the invoice row.
package docarchive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/invoiceflow/zerodue/app/models"
)

// Client wraps the S3 client with archive-specific functionality.
type Client struct {
	s3Client *s3.Client
	config   *Config
}

// NewClientFromEnv builds an archive client from environment configuration.
// Returns nil without error when the archive is disabled.
func NewClientFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled() {
		return nil, nil
	}
	return NewClient(cfg)
}

// NewClient creates a new archive client.
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("document archive is disabled")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	log.Infof("[DocArchive] Initialized S3 client for bucket: %s", cfg.BucketName)
	return &Client{s3Client: s3Client, config: cfg}, nil
}

type invoiceSnapshot struct {
	InvoiceID    uint             `json:"invoice_id"`
	BusinessID   uint             `json:"business_id"`
	BusinessName string           `json:"business_name"`
	ClientID     uint             `json:"client_id"`
	ClientName   string           `json:"client_name"`
	ClientEmail  string           `json:"client_email"`
	Number       string           `json:"number"`
	Status       string           `json:"status"`
	Currency     string           `json:"currency"`
	LineItems    json.RawMessage  `json:"line_items"`
	Subtotal     float64          `json:"subtotal"`
	Discount     float64          `json:"discount_percent"`
	Shipping     float64          `json:"shipping"`
	Total        float64          `json:"total"`
	DueAt        *time.Time       `json:"due_at"`
	SentAt       time.Time        `json:"sent_at"`
}

// ArchiveInvoice uploads a JSON snapshot of a sent invoice.
func (c *Client) ArchiveInvoice(ctx context.Context, business *models.Business, client *models.Client, invoice *models.Invoice, sentAt time.Time) error {
	items := json.RawMessage(invoice.LineItemsJSON)
	if len(items) == 0 {
		items = json.RawMessage("[]")
	}
	snapshot := invoiceSnapshot{
		InvoiceID:    invoice.ID,
		BusinessID:   business.ID,
		BusinessName: business.Name,
		ClientID:     client.ID,
		ClientName:   client.Name,
		ClientEmail:  client.Email,
		Number:       invoice.Number,
		Status:       invoice.Status,
		Currency:     business.Currency,
		LineItems:    items,
		Subtotal:     invoice.Subtotal,
		Discount:     invoice.DiscountPercent,
		Shipping:     invoice.Shipping,
		Total:        invoice.Total,
		DueAt:        invoice.DueAt,
		SentAt:       sentAt,
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode invoice snapshot: %w", err)
	}

	key := c.config.InvoiceObjectKey(business.ID, invoice.Number, sentAt)
	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload invoice snapshot %s: %w", key, err)
	}

	log.Infof("[DocArchive] Archived invoice %s as %s", invoice.Number, key)
	return nil
}
