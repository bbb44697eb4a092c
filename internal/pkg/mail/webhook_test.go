package mail

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event_id":"evt_1","event":"delivered","invoice_id":7}`)
	secret := "whsec_test"

	assert.True(t, VerifyWebhookSignature(payload, signPayload(payload, secret), secret))
	assert.True(t, VerifyWebhookSignature(payload, "  "+signPayload(payload, secret)+"  ", secret))

	assert.False(t, VerifyWebhookSignature(payload, signPayload(payload, "wrong"), secret))
	assert.False(t, VerifyWebhookSignature([]byte("tampered"), signPayload(payload, secret), secret))
	assert.False(t, VerifyWebhookSignature(payload, "", secret))
	assert.False(t, VerifyWebhookSignature(payload, signPayload(payload, secret), ""))
	assert.False(t, VerifyWebhookSignature(payload, "not-hex!", secret))
}

func TestParseDeliveryEvent(t *testing.T) {
	event, err := ParseDeliveryEvent([]byte(`{"event_id":"evt_1","event":" Delivered ","invoice_id":7,"email":"a@b.c"}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, EventDelivered, event.Event)
	assert.Equal(t, uint(7), event.InvoiceID)
}

func TestParseDeliveryEventRejectsUnknownType(t *testing.T) {
	_, err := ParseDeliveryEvent([]byte(`{"event_id":"evt_1","event":"unsubscribed","invoice_id":7}`))
	assert.Error(t, err)
}

func TestParseDeliveryEventRequiresInvoiceID(t *testing.T) {
	_, err := ParseDeliveryEvent([]byte(`{"event_id":"evt_1","event":"opened"}`))
	assert.Error(t, err)
}

func TestParseDeliveryEventMalformedJSON(t *testing.T) {
	_, err := ParseDeliveryEvent([]byte(`{`))
	assert.Error(t, err)
}
