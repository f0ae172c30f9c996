// Package domain contains persistence models for invoicing.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/money"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states. The empty status is
// valid and means no status was chosen.
type InvoiceStatus string

const (
	InvoiceStatusNone    InvoiceStatus = ""
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"
	InvoiceStatusSent    InvoiceStatus = "SENT"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// ParseStatus maps user input case-insensitively onto a known status.
func ParseStatus(raw string) (InvoiceStatus, bool) {
	switch InvoiceStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case InvoiceStatusNone:
		return InvoiceStatusNone, true
	case InvoiceStatusDraft:
		return InvoiceStatusDraft, true
	case InvoiceStatusSent:
		return InvoiceStatusSent, true
	case InvoiceStatusPaid:
		return InvoiceStatusPaid, true
	case InvoiceStatusOverdue:
		return InvoiceStatusOverdue, true
	default:
		return InvoiceStatusNone, false
	}
}

// LineItem is one billable row of an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
}

// UnmarshalJSON accepts numbers or numeric strings for quantity and
// price, and "unitPrice" as an alias of "price".
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Description string          `json:"description"`
		Quantity    json.RawMessage `json:"quantity"`
		Price       json.RawMessage `json:"price"`
		UnitPrice   json.RawMessage `json:"unitPrice"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price := raw.Price
	if len(price) == 0 {
		price = raw.UnitPrice
	}
	*li = LineItem{
		Description: raw.Description,
		Quantity:    money.ParseJSON(raw.Quantity),
		UnitPrice:   money.ParseJSON(price),
	}
	return nil
}

// Amount is quantity times unit price, negatives clamped to zero.
func (li LineItem) Amount() decimal.Decimal {
	return money.Amount(li.Quantity, li.UnitPrice)
}

// MoneyItems adapts line items for the totals calculator.
func MoneyItems(items []LineItem) []money.Item {
	out := make([]money.Item, 0, len(items))
	for _, item := range items {
		out = append(out, money.Item{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return out
}

// Invoice is a saved invoice with its parties, items, and totals snapshot.
type Invoice struct {
	ID            snowflake.ID                            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string                                  `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoices_number" json:"invoiceNumber"`
	IssueDate     string                                  `gorm:"type:varchar(10)" json:"issueDate"`
	DueDate       string                                  `gorm:"type:varchar(10)" json:"dueDate"`
	Status        InvoiceStatus                           `gorm:"type:varchar(16);not null;default:'';index" json:"status"`
	PaymentMethod string                                  `gorm:"type:text" json:"paymentMethod"`
	Notes         string                                  `gorm:"type:text" json:"notes"`
	IssuerID      string                                  `gorm:"type:text" json:"issuerId"`
	ClientID      string                                  `gorm:"type:text" json:"clientId"`
	ClientName    string                                  `gorm:"type:text" json:"clientName"`
	Sender        datatypes.JSONType[partydomain.Party]   `json:"sender"`
	Recipient     datatypes.JSONType[partydomain.Party]   `json:"recipient"`
	Items         datatypes.JSONSlice[LineItem]           `json:"items"`
	Totals        datatypes.JSONType[money.Totals]        `json:"totals"`
	CreatedAt     time.Time                               `gorm:"not null;index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt     time.Time                               `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// ComputeTotals recomputes the totals of the invoice's current items using
// the tax rate and shipping of its snapshot.
func (i Invoice) ComputeTotals() money.Totals {
	snap := i.Totals.Data()
	return money.ComputeTotals(MoneyItems(i.Items), snap.TaxRate, snap.Shipping)
}

// Summary converts the invoice to its history row.
func (i Invoice) Summary() InvoiceSummary {
	return InvoiceSummary{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		IssueDate:     i.IssueDate,
		ClientName:    i.ClientName,
		GrandTotal:    i.Totals.Data().GrandTotal,
		Status:        i.Status,
		CreatedAt:     i.CreatedAt,
	}
}

// InvoiceSummary is the row shown in invoice history.
type InvoiceSummary struct {
	ID            snowflake.ID    `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	IssueDate     string          `json:"issueDate"`
	ClientName    string          `json:"clientName"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	Status        InvoiceStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}
