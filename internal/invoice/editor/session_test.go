package editor

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(ctx context.Context, req domain.SaveInvoiceRequest) (domain.Invoice, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Invoice), args.Error(1)
}

func party(first string) partydomain.Party {
	return partydomain.Party{
		FirstName: first, LastName: "Doe", AddressLine1: "1 Main St", City: "Ottawa",
		Province: "ON", Country: "Canada", PostalCode: "K1A 0A1", Email: "x@example.com", Phone: "+1 (613) 555-0100",
	}
}

func draft() domain.SaveInvoiceRequest {
	return domain.SaveInvoiceRequest{
		InvoiceNumber: "INV-007",
		IssueDate:     "2025-01-05",
		DueDate:       "2025-01-19",
		PaymentMethod: "Cash",
		Sender:        party("Ann"),
		Recipient:     party("Bob"),
		TaxRate:       decimal.NewFromInt(13),
	}
}

func item(desc string, qty, price int64) domain.LineItem {
	return domain.LineItem{Description: desc, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)}
}

func TestNewSession_StartsWithOneRow(t *testing.T) {
	s := NewSession(draft())

	require.Len(t, s.Rows(), 1)
	assert.Nil(t, s.CurrentInvoiceID)
	assert.Equal(t, "1", s.Items()[0].Quantity.String())
}

func TestSession_RowKeysAreStable(t *testing.T) {
	s := NewSession(draft())
	first := s.Rows()[0].Key
	second := s.AddItem(item("B", 1, 1))
	third := s.AddItem(item("C", 1, 1))

	require.NoError(t, s.RemoveItem(second))
	require.NoError(t, s.UpdateItem(third, item("C2", 2, 5)))

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0].Key)
	assert.Equal(t, third, rows[1].Key)
	assert.Equal(t, "C2", rows[1].Item.Description)

	assert.ErrorIs(t, s.UpdateItem(second, item("X", 1, 1)), domain.ErrItemNotFound)
	assert.ErrorIs(t, s.RemoveItem(second), domain.ErrItemNotFound)
}

func TestSession_RemoveLastItemRejected(t *testing.T) {
	s := NewSession(draft())
	key := s.Rows()[0].Key

	assert.ErrorIs(t, s.RemoveItem(key), domain.ErrLastItem)
	assert.Len(t, s.Rows(), 1)
}

func TestSession_Totals(t *testing.T) {
	d := draft()
	d.Items = []domain.LineItem{item("A", 2, 50), item("B", 1, 100)}
	d.Shipping = decimal.NewFromInt(10)
	s := NewSession(d)

	totals := s.Totals().Display()
	assert.Equal(t, "200.00", totals.Subtotal)
	assert.Equal(t, "26.00", totals.TaxAmount)
	assert.Equal(t, "236.00", totals.GrandTotal)
}

func TestSession_SaveAssignsIDOnce(t *testing.T) {
	ctx := context.Background()
	d := draft()
	d.Items = []domain.LineItem{item("A", 1, 10)}
	s := NewSession(d)

	saver := &mockSaver{}
	id := snowflake.ID(99)

	saver.On("Save", ctx, mock.MatchedBy(func(req domain.SaveInvoiceRequest) bool {
		return req.ID == nil
	})).Return(domain.Invoice{ID: id}, nil).Once()
	saver.On("Save", ctx, mock.MatchedBy(func(req domain.SaveInvoiceRequest) bool {
		return req.ID != nil && *req.ID == id
	})).Return(domain.Invoice{ID: id}, nil).Once()

	_, err := s.Save(ctx, saver)
	require.NoError(t, err)
	require.NotNil(t, s.CurrentInvoiceID)
	assert.Equal(t, id, *s.CurrentInvoiceID)

	_, err = s.Save(ctx, saver)
	require.NoError(t, err)
	saver.AssertExpectations(t)
}

func TestSession_SaveValidatesFirst(t *testing.T) {
	s := NewSession(draft())
	saver := &mockSaver{}

	_, err := s.Save(context.Background(), saver)

	assert.ErrorIs(t, err, domain.ErrRequired)
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Nil(t, s.CurrentInvoiceID)
}

func TestSession_ResetClearsID(t *testing.T) {
	d := draft()
	id := snowflake.ID(5)
	d.ID = &id
	d.Items = []domain.LineItem{item("A", 1, 1), item("B", 1, 1)}

	s := NewSession(d)
	require.NotNil(t, s.CurrentInvoiceID)
	assert.Len(t, s.Rows(), 2)

	s.Reset(draft())
	assert.Nil(t, s.CurrentInvoiceID)
	assert.Len(t, s.Rows(), 1)
	assert.Nil(t, s.Request().ID)
}
