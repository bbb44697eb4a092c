package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/invoiceflow/zerodue/internal/pkg/env"
)

const defaultProcessorAPIBaseURL = "https://api.stripe.com"

// Processor is the payment-processor surface the reconciler consumes: a
// read-mostly catalog plus a subscription-state oracle. It is never the
// system of record for the tier.
type Processor interface {
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// ProcessorClient talks to the Stripe-compatible billing API over HTTP.
type ProcessorClient struct {
	SecretKey  string
	APIBaseURL string

	HTTPClient *http.Client
}

// NewProcessorClientFromEnv builds a processor client from environment
// configuration.
func NewProcessorClientFromEnv() *ProcessorClient {
	return &ProcessorClient{
		SecretKey:  strings.TrimSpace(env.GetEnv("BILLING_SECRET_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("BILLING_API_BASE_URL", defaultProcessorAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FindCustomerByEmail returns the first customer matching the email, or nil
// when none exists.
func (c *ProcessorClient) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	q := url.Values{}
	q.Set("email", email)
	q.Set("limit", "1")

	body, err := c.get(ctx, "/v1/customers", q)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if len(raw.Data) == 0 {
		return nil, nil
	}
	return &Customer{ID: raw.Data[0].ID, Email: raw.Data[0].Email}, nil
}

// ListSubscriptions returns all subscriptions for a customer regardless of
// status; the service filters for entitling ones.
func (c *ProcessorClient) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, errors.New("customer id is required")
	}

	q := url.Values{}
	q.Set("customer", customerID)
	q.Set("status", "all")

	body, err := c.get(ctx, "/v1/subscriptions", q)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data []struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Metadata map[string]string `json:"metadata"`
			Items    struct {
				Data []struct {
					Price struct {
						Product string `json:"product"`
					} `json:"price"`
				} `json:"data"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	subs := make([]Subscription, 0, len(raw.Data))
	for _, d := range raw.Data {
		sub := Subscription{
			ID:       d.ID,
			Status:   d.Status,
			Metadata: d.Metadata,
		}
		if len(d.Items.Data) > 0 {
			sub.ProductID = d.Items.Data[0].Price.Product
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// GetProduct retrieves a catalog product by id.
func (c *ProcessorClient) GetProduct(ctx context.Context, productID string) (*Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("product id is required")
	}

	body, err := c.get(ctx, "/v1/products/"+url.PathEscape(productID), nil)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &Product{ID: raw.ID, Name: raw.Name}, nil
}

func (c *ProcessorClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if strings.TrimSpace(c.SecretKey) == "" {
		return nil, errors.New("BILLING_SECRET_KEY is not configured")
	}

	u, err := url.Parse(c.APIBaseURL + path)
	if err != nil {
		return nil, err
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("billing api request failed: status=%d path=%s body=%s", resp.StatusCode, path, string(body))
	}
	return body, nil
}
