package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/layout"
	"github.com/smallbiznis/invoicekit/internal/money"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"github.com/smallbiznis/invoicekit/internal/providers/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type mockInvoices struct {
	mock.Mock
}

func (m *mockInvoices) Save(ctx context.Context, req domain.SaveInvoiceRequest) (domain.Invoice, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Invoice), args.Error(1)
}

func (m *mockInvoices) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Invoice), args.Error(1)
}

func (m *mockInvoices) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.ListInvoiceResponse), args.Error(1)
}

func (m *mockInvoices) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockInvoices) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockInvoices) NewDraft(ctx context.Context) (domain.SaveInvoiceRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SaveInvoiceRequest), args.Error(1)
}

func (m *mockInvoices) Clone(ctx context.Context, id string) (domain.SaveInvoiceRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SaveInvoiceRequest), args.Error(1)
}

func sampleInvoice(items int) domain.Invoice {
	lines := make([]domain.LineItem, 0, items)
	for i := 0; i < items; i++ {
		lines = append(lines, domain.LineItem{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)})
	}
	totals := money.ComputeTotals(domain.MoneyItems(lines), decimal.NewFromInt(13), decimal.Zero)
	return domain.Invoice{
		ID:            snowflake.ID(1001),
		InvoiceNumber: "INV 042",
		IssueDate:     "2025-03-10",
		DueDate:       "2025-03-24",
		Status:        domain.InvoiceStatusPaid,
		PaymentMethod: "Cash",
		Sender:        datatypes.NewJSONType(partydomain.Party{FirstName: "Ann", LastName: "Lee"}),
		Recipient:     datatypes.NewJSONType(partydomain.Party{FirstName: "Bob", LastName: "Smith"}),
		Items:         datatypes.JSONSlice[domain.LineItem](lines),
		Totals:        datatypes.NewJSONType(totals),
	}
}

func newRenderer(invoices domain.Service) *Renderer {
	return New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
		Invoices: invoices,
		Layout:   config.NewStaticLayoutConfigHolder(config.LayoutFile{}, "CA$"),
		PDF:      pdf.New(pdf.Params{Log: zap.NewNop()}),
	})
}

func TestLayout_UsesSavedInvoice(t *testing.T) {
	invoices := &mockInvoices{}
	invoices.On("GetByID", mock.Anything, "1001").Return(sampleInvoice(60), nil)

	pages, err := newRenderer(invoices).Layout(context.Background(), "1001")
	require.NoError(t, err)

	require.Greater(t, len(pages), 1)
	for _, page := range pages {
		assert.Equal(t, 1, page.Count(layout.RoleWatermark))
	}
	assert.Equal(t, 1, pages[len(pages)-1].Count(layout.RoleFooter))
	invoices.AssertExpectations(t)
}

func TestPDF(t *testing.T) {
	invoices := &mockInvoices{}
	invoices.On("GetByID", mock.Anything, "1001").Return(sampleInvoice(3), nil)

	doc, err := newRenderer(invoices).PDF(context.Background(), "1001")
	require.NoError(t, err)

	assert.Equal(t, "Invoice-INV-042.pdf", doc.Filename)
	assert.Equal(t, 1, doc.Pages)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")))
}

func TestPDF_NotFound(t *testing.T) {
	invoices := &mockInvoices{}
	invoices.On("GetByID", mock.Anything, "7").Return(domain.Invoice{}, domain.ErrNotFound)

	_, err := newRenderer(invoices).PDF(context.Background(), "7")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_WalksEveryPage(t *testing.T) {
	invoices := &mockInvoices{}
	first := sampleInvoice(1).Summary()
	second := sampleInvoice(2).Summary()

	firstPage := domain.ListInvoiceResponse{Invoices: []domain.InvoiceSummary{first}}
	firstPage.HasMore = true
	firstPage.NextPageToken = "next"

	invoices.On("List", mock.Anything, mock.MatchedBy(func(req domain.ListInvoiceRequest) bool {
		return req.PageToken == ""
	})).Return(firstPage, nil).Once()
	invoices.On("List", mock.Anything, mock.MatchedBy(func(req domain.ListInvoiceRequest) bool {
		return req.PageToken == "next"
	})).Return(domain.ListInvoiceResponse{Invoices: []domain.InvoiceSummary{second}}, nil).Once()

	doc, err := newRenderer(invoices).History(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Invoice-History-2025-03-10.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")))
	invoices.AssertExpectations(t)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Invoice-INV-001.pdf", Filename("INV-001", "1"))
	assert.Equal(t, "Invoice-INV-2025-01.pdf", Filename("INV/2025:01", "1"))
	assert.Equal(t, "Invoice-inv_7.pdf", Filename(" inv_7 ", "1"))
	assert.Equal(t, "Invoice-facture-7.pdf", Filename("Façture 7", "1"))
	assert.Equal(t, "Invoice-99.pdf", Filename("  ", "99"))
}
