// Package money computes invoice totals from line items.
//
// The subtotal deliberately includes per-line tax: the sum of tax-inclusive
// line totals is what the product has always displayed as "subtotal". Renaming
// would change every stored invoice, so the quirk is kept.
package money

import (
	"encoding/json"
	"math"
)

// LineItem is a single invoice or estimate position.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxPercent  float64 `json:"tax_percent"`
}

// Totals holds the computed monetary results, rounded to two decimals.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

// ComputeTotals calculates subtotal and grand total for a line-item list.
// Per line: quantity x unit_price plus tax_percent. Rounding happens once at
// the end, not per line. Non-finite line results are coerced to zero. The
// total is not clamped; a discount larger than subtotal+shipping yields a
// negative total.
func ComputeTotals(items []LineItem, discountPercent, shipping float64) Totals {
	var subtotal float64
	for _, it := range items {
		line := it.Quantity * it.UnitPrice
		line += line * it.TaxPercent / 100
		if math.IsNaN(line) || math.IsInf(line, 0) {
			line = 0
		}
		subtotal += line
	}

	total := subtotal + shipping - subtotal*discountPercent/100
	return Totals{Subtotal: round2(subtotal), Total: round2(total)}
}

// ParseLineItems decodes a JSON line-item array. Individual elements that do
// not decode become zero-value items; only a malformed top-level shape is an
// error, which the caller reports as a validation failure.
func ParseLineItems(raw []byte) ([]LineItem, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(elems))
	for _, e := range elems {
		var it LineItem
		if err := json.Unmarshal(e, &it); err != nil {
			it = LineItem{}
		}
		items = append(items, it)
	}
	return items, nil
}

// MarshalLineItems encodes line items for storage. An empty list encodes as
// "[]" so stored invoices always hold a valid array.
func MarshalLineItems(items []LineItem) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
