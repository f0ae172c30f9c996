package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParty(first string) partydomain.Party {
	return partydomain.Party{
		FirstName:    first,
		LastName:     "Smith",
		AddressLine1: "1 Main St",
		City:         "Ottawa",
		Province:     "ON",
		Country:      "Canada",
		PostalCode:   "K1A 0A1",
		Email:        "a@example.com",
		Phone:        "+1 (613) 555-0100",
	}
}

func validRequest() SaveInvoiceRequest {
	return SaveInvoiceRequest{
		InvoiceNumber: "INV-001",
		IssueDate:     "2025-01-05",
		DueDate:       "2025-01-19",
		PaymentMethod: "Cash",
		Sender:        validParty("Ann"),
		Recipient:     validParty("Bob"),
		Items: []LineItem{
			{Description: "Design", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validRequest().Validate())
}

func TestValidate_ReportsEveryField(t *testing.T) {
	req := validRequest()
	req.Sender.Email = " "
	req.PaymentMethod = ""
	req.Status = "ARCHIVED"
	req.Items = append(req.Items, LineItem{Description: "", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(-1)})

	err := req.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{
		"sender.email",
		"paymentMethod",
		"status",
		"items[1].description",
		"items[1].quantity",
		"items[1].price",
	}, fields)

	assert.ErrorIs(t, err, ErrRequired)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidate_InvalidDate(t *testing.T) {
	req := validRequest()
	req.DueDate = "next friday"
	req.IssueDate = "2025-01-05T10:00:00Z"

	err := req.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, "validation failed: dueDate: invalid_date", err.Error())
}

func TestValidate_NoItems(t *testing.T) {
	req := validRequest()
	req.Items = nil
	assert.ErrorIs(t, req.Validate(), ErrNoItems)
}

func TestLineItem_UnmarshalLenient(t *testing.T) {
	var items []LineItem
	err := json.Unmarshal([]byte(`[
		{"description":"A","quantity":"2","price":"10.5"},
		{"description":"B","quantity":3,"unitPrice":4},
		{"description":"C","quantity":"","price":"abc"}
	]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "21", items[0].Amount().String())
	assert.Equal(t, "12", items[1].Amount().String())
	assert.True(t, items[2].Amount().IsZero())
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus(" paid ")
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusPaid, status)

	status, ok = ParseStatus("")
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusNone, status)

	_, ok = ParseStatus("void")
	assert.False(t, ok)
}
