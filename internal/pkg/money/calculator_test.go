package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsWithDiscount(t *testing.T) {
	items := []LineItem{{Quantity: 2, UnitPrice: 100, TaxPercent: 0}}
	got := ComputeTotals(items, 10, 0)

	assert.Equal(t, 200.00, got.Subtotal)
	assert.Equal(t, 180.00, got.Total)
}

func TestComputeTotalsTaxInclusiveSubtotal(t *testing.T) {
	items := []LineItem{{Quantity: 1, UnitPrice: 1000, TaxPercent: 20}}
	got := ComputeTotals(items, 0, 0)

	assert.Equal(t, 1200.00, got.Subtotal)
	assert.Equal(t, 1200.00, got.Total)
}

func TestComputeTotalsShipping(t *testing.T) {
	items := []LineItem{{Quantity: 3, UnitPrice: 50, TaxPercent: 10}}
	got := ComputeTotals(items, 0, 9.5)

	assert.Equal(t, 165.00, got.Subtotal)
	assert.Equal(t, 174.50, got.Total)
}

func TestComputeTotalsRoundsAtTheEnd(t *testing.T) {
	// Three lines of 0.333... each would drift if rounded per line.
	items := []LineItem{
		{Quantity: 1, UnitPrice: 1.0 / 3.0},
		{Quantity: 1, UnitPrice: 1.0 / 3.0},
		{Quantity: 1, UnitPrice: 1.0 / 3.0},
	}
	got := ComputeTotals(items, 0, 0)

	assert.Equal(t, 1.00, got.Subtotal)
	assert.Equal(t, 1.00, got.Total)
}

func TestComputeTotalsNegativeNotClamped(t *testing.T) {
	// A discount above 100% drives the total negative. That is the observed
	// behavior and must not be clamped.
	items := []LineItem{{Quantity: 1, UnitPrice: 100}}
	got := ComputeTotals(items, 150, 10)

	assert.Equal(t, 100.00, got.Subtotal)
	assert.Equal(t, -40.00, got.Total)
}

func TestComputeTotalsCoercesNonFiniteLines(t *testing.T) {
	items := []LineItem{
		{Quantity: math.Inf(1), UnitPrice: 2},
		{Quantity: math.NaN(), UnitPrice: 5},
		{Quantity: 2, UnitPrice: 10},
	}
	got := ComputeTotals(items, 0, 0)

	assert.Equal(t, 20.00, got.Subtotal)
	assert.Equal(t, 20.00, got.Total)
}

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil, 0, 0)
	assert.Equal(t, 0.00, got.Subtotal)
	assert.Equal(t, 0.00, got.Total)
}

func TestParseLineItems(t *testing.T) {
	raw := []byte(`[{"quantity":2,"unit_price":100,"tax_percent":7},{"quantity":"bad"}]`)
	items, err := ParseLineItems(raw)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2.0, items[0].Quantity)
	// Malformed entries degrade to zero-value items instead of failing.
	assert.Equal(t, LineItem{}, items[1])
}

func TestParseLineItemsMalformedShape(t *testing.T) {
	_, err := ParseLineItems([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestMarshalLineItemsEmpty(t *testing.T) {
	assert.Equal(t, "[]", MarshalLineItems(nil))
}
