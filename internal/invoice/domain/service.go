package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"github.com/smallbiznis/invoicekit/pkg/db/pagination"
)

// SaveInvoiceRequest carries every editable field of an invoice. A nil ID
// saves a new invoice; otherwise the stored record is updated in place.
type SaveInvoiceRequest struct {
	ID            *snowflake.ID     `json:"id,omitempty"`
	InvoiceNumber string            `json:"invoiceNumber"`
	IssueDate     string            `json:"issueDate"`
	DueDate       string            `json:"dueDate"`
	Status        InvoiceStatus     `json:"status"`
	PaymentMethod string            `json:"paymentMethod"`
	Notes         string            `json:"notes"`
	IssuerID      string            `json:"issuerId"`
	ClientID      string            `json:"clientId"`
	Sender        partydomain.Party `json:"sender"`
	Recipient     partydomain.Party `json:"recipient"`
	Items         []LineItem        `json:"items"`
	TaxRate       decimal.Decimal   `json:"taxRate"`
	Shipping      decimal.Decimal   `json:"shipping"`
}

// DraftFrom copies a saved invoice into a request that updates it.
func DraftFrom(inv Invoice) SaveInvoiceRequest {
	totals := inv.Totals.Data()
	items := make([]LineItem, len(inv.Items))
	copy(items, inv.Items)
	id := inv.ID
	return SaveInvoiceRequest{
		ID:            &id,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		IssuerID:      inv.IssuerID,
		ClientID:      inv.ClientID,
		Sender:        inv.Sender.Data(),
		Recipient:     inv.Recipient.Data(),
		Items:         items,
		TaxRate:       totals.TaxRate,
		Shipping:      totals.Shipping,
	}
}

type Service interface {
	Save(context.Context, SaveInvoiceRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Delete(ctx context.Context, id string) error
	NextNumber(context.Context) (string, error)
	NewDraft(context.Context) (SaveInvoiceRequest, error)
	Clone(ctx context.Context, id string) (SaveInvoiceRequest, error)
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int
	Status    *InvoiceStatus
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceSummary `json:"invoices"`
}

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
	ErrLastItem               = errors.New("last_item")
	ErrItemNotFound           = errors.New("item_not_found")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrRenderFailed           = errors.New("render_failed")

	ErrRequired        = errors.New("required")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrNoItems         = errors.New("no_items")
)

// FieldError reports a validation failure of a single form field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every failing field of a form.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is match any wrapped field error.
func (v ValidationErrors) Is(target error) bool {
	for _, fe := range v {
		if errors.Is(fe, target) {
			return true
		}
	}
	return false
}
