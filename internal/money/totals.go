// Package money computes invoice totals from line items.
//
// Amounts accumulate at full precision and are rounded to two decimals
// (half away from zero) only when rendered for display.
package money

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is the minimal line item shape the calculator needs.
type Item struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Totals is a snapshot of computed invoice totals.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"taxRate"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// UnmarshalJSON accepts numbers, numeric strings, and empty strings.
func (t *Totals) UnmarshalJSON(data []byte) error {
	var raw struct {
		Subtotal   json.RawMessage `json:"subtotal"`
		TaxRate    json.RawMessage `json:"taxRate"`
		TaxAmount  json.RawMessage `json:"taxAmount"`
		Shipping   json.RawMessage `json:"shipping"`
		GrandTotal json.RawMessage `json:"grandTotal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Totals{
		Subtotal:   ParseJSON(raw.Subtotal),
		TaxRate:    ParseJSON(raw.TaxRate),
		TaxAmount:  ParseJSON(raw.TaxAmount),
		Shipping:   ParseJSON(raw.Shipping),
		GrandTotal: ParseJSON(raw.GrandTotal),
	}
	return nil
}

// Amount returns max(0, quantity) * max(0, unitPrice).
func Amount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return clamp(quantity).Mul(clamp(unitPrice))
}

// ComputeTotals sums item amounts and applies tax and shipping.
// Negative tax rates and shipping are clamped to zero.
func ComputeTotals(items []Item, taxRatePercent, shipping decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(Amount(item.Quantity, item.UnitPrice))
	}

	rate := clamp(taxRatePercent)
	ship := clamp(shipping)
	tax := subtotal.Mul(rate).Div(hundred)

	return Totals{
		Subtotal:   subtotal,
		TaxRate:    rate,
		TaxAmount:  tax,
		Shipping:   ship,
		GrandTotal: subtotal.Add(tax).Add(ship),
	}
}

// Display renders an amount with two decimals, locale-free.
func Display(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatCurrency renders an amount with two decimals, comma thousands
// separators and the given prefix, e.g. "CA$1,234.50".
func FormatCurrency(prefix string, amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := prefix + b.String() + "." + frac
	if negative {
		out = "-" + out
	}
	return out
}

// DisplayTotals holds the rounded display strings of a Totals value.
type DisplayTotals struct {
	Subtotal   string `json:"subtotal"`
	TaxRate    string `json:"taxRate"`
	TaxAmount  string `json:"taxAmount"`
	Shipping   string `json:"shipping"`
	GrandTotal string `json:"grandTotal"`
}

// Display returns the rounded display strings. The tax rate keeps its
// natural precision ("13", "13.5").
func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:   Display(t.Subtotal),
		TaxRate:    t.TaxRate.String(),
		TaxAmount:  Display(t.TaxAmount),
		Shipping:   Display(t.Shipping),
		GrandTotal: Display(t.GrandTotal),
	}
}

// Parse converts free-form numeric input into a decimal. Missing or
// malformed input yields zero.
func Parse(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseJSON reads a JSON number or string leniently; anything else is zero.
func ParseJSON(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return Parse(s)
}

// FromFloat converts a float input, mapping NaN and infinities to zero.
func FromFloat(v float64) decimal.Decimal {
	if v != v || v > 1e300 || v < -1e300 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
