package billing

import "time"

// Customer is the payment processor's customer record, matched by email.
type Customer struct {
	ID    string
	Email string
}

// Subscription is the processor-side subscription state used to derive the
// internal tier. Metadata may carry an explicit "plan" key; otherwise the
// tier is inferred from the product display name.
type Subscription struct {
	ID        string
	Status    string
	ProductID string
	Metadata  map[string]string
}

// Product is the processor's catalog entry for a subscription item.
type Product struct {
	ID   string
	Name string
}

// SyncResult is the outcome of a plan reconciliation.
type SyncResult struct {
	Plan               string     `json:"plan"`
	SubscriptionStatus string     `json:"subscription_status"`
	CustomerID         string     `json:"billing_customer_id,omitempty"`
	SubscriptionID     string     `json:"subscription_id,omitempty"`
	SyncedAt           *time.Time `json:"plan_synced_at,omitempty"`
}
