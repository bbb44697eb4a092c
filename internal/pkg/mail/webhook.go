package mail

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// Delivery event types reported by the email provider.
const (
	EventDelivered = "delivered"
	EventOpened    = "opened"
	EventClicked   = "clicked"
	EventBounced   = "bounced"
)

// DeliveryEvent is the normalized shape of an email-provider webhook event.
type DeliveryEvent struct {
	EventID   string `json:"event_id"`
	Event     string `json:"event"`
	InvoiceID uint   `json:"invoice_id"`
	Email     string `json:"email"`
}

// VerifyWebhookSignature checks the provider's hex HMAC-SHA256 signature
// over the raw payload.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// ParseDeliveryEvent decodes a webhook payload into a DeliveryEvent.
func ParseDeliveryEvent(payload []byte) (*DeliveryEvent, error) {
	var event DeliveryEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	event.Event = strings.ToLower(strings.TrimSpace(event.Event))
	switch event.Event {
	case EventDelivered, EventOpened, EventClicked, EventBounced:
	default:
		return nil, errors.New("unsupported email event type: " + event.Event)
	}
	if event.InvoiceID == 0 {
		return nil, errors.New("email event payload missing invoice id")
	}
	return &event, nil
}
