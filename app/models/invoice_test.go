package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/invoiceflow/zerodue/internal/pkg/money"
)

func TestInvoiceRecalculateTotals(t *testing.T) {
	inv := &Invoice{DiscountPercent: 10}
	inv.SetLineItems([]money.LineItem{
		{Description: "Design work", Quantity: 2, UnitPrice: 100},
	})

	assert.Equal(t, 200.0, inv.Subtotal)
	assert.Equal(t, 180.0, inv.Total)
}

func TestInvoiceTotalsTaxInclusiveSubtotal(t *testing.T) {
	inv := &Invoice{}
	inv.SetLineItems([]money.LineItem{
		{Description: "Consulting", Quantity: 1, UnitPrice: 1000, TaxPercent: 20},
	})

	assert.Equal(t, 1200.0, inv.Subtotal)
	assert.Equal(t, 1200.0, inv.Total)
}

func TestInvoiceLineItemsRoundTrip(t *testing.T) {
	inv := &Invoice{}
	inv.SetLineItems([]money.LineItem{
		{Description: "Hosting", Quantity: 3, UnitPrice: 12.5},
	})

	items := inv.LineItems()
	assert.Len(t, items, 1)
	assert.Equal(t, "Hosting", items[0].Description)
	assert.Equal(t, 37.5, inv.Total)
}

func TestInvoiceIsPastDue(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	sentOverdue := &Invoice{Status: InvoiceStatusSent, DueAt: &yesterday}
	assert.True(t, sentOverdue.IsPastDue(now))

	sentNotDue := &Invoice{Status: InvoiceStatusSent, DueAt: &tomorrow}
	assert.False(t, sentNotDue.IsPastDue(now))

	draftOverdue := &Invoice{Status: InvoiceStatusDraft, DueAt: &yesterday}
	assert.False(t, draftOverdue.IsPastDue(now))

	paidOverdue := &Invoice{Status: InvoiceStatusPaid, DueAt: &yesterday}
	assert.False(t, paidOverdue.IsPastDue(now))

	noDueDate := &Invoice{Status: InvoiceStatusSent}
	assert.False(t, noDueDate.IsPastDue(now))
}

func TestInvoiceMarkSent(t *testing.T) {
	now := time.Now()
	inv := &Invoice{Status: InvoiceStatusDraft}

	inv.MarkSent(now)
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.Equal(t, 1, inv.EmailSentCount)
	assert.Equal(t, &now, inv.EmailSentAt)

	// Re-sending counts the send but never regresses the status.
	inv.Status = InvoiceStatusOverdue
	inv.MarkSent(now)
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	assert.Equal(t, 2, inv.EmailSentCount)
}

func TestInvoiceMarkPaid(t *testing.T) {
	now := time.Now()
	inv := &Invoice{Status: InvoiceStatusOverdue}

	inv.MarkPaid(now)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.Equal(t, &now, inv.PaidAt)
}
