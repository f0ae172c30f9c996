// Package render lays out saved invoices and hands the pages to the PDF
// provider.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/contact"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/layout"
	"github.com/smallbiznis/invoicekit/internal/money"
	"github.com/smallbiznis/invoicekit/internal/observability/metrics"
	"github.com/smallbiznis/invoicekit/internal/providers/pdf"
	"github.com/smallbiznis/invoicekit/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	kindInvoice = "invoice"
	kindHistory = "history"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Invoices domain.Service
	Layout   *config.LayoutConfigHolder
	PDF      pdf.Provider
	Metrics  *metrics.Metrics `optional:"true"`
}

type Renderer struct {
	log      *zap.Logger
	clock    clock.Clock
	invoices domain.Service
	layout   *config.LayoutConfigHolder
	pdf      pdf.Provider
	metrics  *metrics.Metrics
}

// Document is a rendered file ready for download.
type Document struct {
	Filename string
	Content  []byte
	Pages    int
}

func New(p Params) *Renderer {
	return &Renderer{
		log:      p.Log.Named("invoice.render"),
		clock:    p.Clock,
		invoices: p.Invoices,
		layout:   p.Layout,
		pdf:      p.PDF,
		metrics:  p.Metrics,
	}
}

// Options returns the current layout options measured with the provider's
// font metrics.
func (r *Renderer) Options() layout.Options {
	opts := r.layout.Options()
	opts.Measurer = r.pdf.Measurer()
	return opts
}

// Layout returns the pages of a saved invoice.
func (r *Renderer) Layout(ctx context.Context, id string) ([]layout.Page, error) {
	inv, err := r.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return layout.Build(inv, inv.ComputeTotals(), r.Options()), nil
}

// PDF lays out and paints a saved invoice.
func (r *Renderer) PDF(ctx context.Context, id string) (Document, error) {
	inv, err := r.invoices.GetByID(ctx, id)
	if err != nil {
		return Document{}, err
	}

	start := time.Now()
	pages := layout.Build(inv, inv.ComputeTotals(), r.Options())
	content, err := r.pdf.RenderPages(ctx, pages)
	r.metrics.RecordRender(kindInvoice, time.Since(start).Seconds(), len(pages), err)
	if err != nil {
		r.log.Error("invoice render failed", zap.String("invoice_id", id), zap.Error(err))
		return Document{}, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	return Document{
		Filename: Filename(inv.InvoiceNumber, inv.ID.String()),
		Content:  content,
		Pages:    len(pages),
	}, nil
}

// History renders a statement listing every saved invoice, newest first.
func (r *Renderer) History(ctx context.Context) (Document, error) {
	summaries, err := r.allSummaries(ctx)
	if err != nil {
		return Document{}, err
	}

	prefix := r.layout.Options().CurrencyPrefix
	data := pdf.HistoryData{
		GeneratedAt: r.clock.Now(),
		Rows:        make([]pdf.HistoryRow, 0, len(summaries)),
	}
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.GrandTotal)
		data.Rows = append(data.Rows, pdf.HistoryRow{
			InvoiceNumber: s.InvoiceNumber,
			IssueDate:     contact.FormatDisplayDate(s.IssueDate),
			ClientName:    s.ClientName,
			Status:        string(s.Status),
			GrandTotal:    money.FormatCurrency(prefix, s.GrandTotal),
		})
	}
	data.Total = money.FormatCurrency(prefix, total)

	start := time.Now()
	content, err := r.pdf.RenderHistory(ctx, data)
	r.metrics.RecordRender(kindHistory, time.Since(start).Seconds(), 0, err)
	if err != nil {
		r.log.Error("history render failed", zap.Error(err))
		return Document{}, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	return Document{
		Filename: "Invoice-History-" + data.GeneratedAt.Format(contact.ISODate) + ".pdf",
		Content:  content,
	}, nil
}

func (r *Renderer) allSummaries(ctx context.Context) ([]domain.InvoiceSummary, error) {
	var out []domain.InvoiceSummary
	req := domain.ListInvoiceRequest{PageSize: pagination.MaxPageSize}
	for {
		resp, err := r.invoices.List(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Invoices...)
		if !resp.HasMore || resp.NextPageToken == "" {
			return out, nil
		}
		req.PageToken = resp.NextPageToken
	}
}

// Filename is the download name of an invoice PDF. The invoice number
// keeps its case; separators and unsafe characters become "-".
func Filename(invoiceNumber, fallback string) string {
	name := fileSafe(invoiceNumber)
	if name == "" {
		name = fallback
	}
	return "Invoice-" + name + ".pdf"
}

// fileSafe keeps ASCII words as typed and transliterates the rest through
// slug.
func fileSafe(s string) string {
	words := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r != '-' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, word := range words {
		if !isASCII(word) {
			converted := slug.Make(word)
			if strings.ToUpper(word) == word {
				converted = strings.ToUpper(converted)
			}
			word = converted
		}
		if word != "" {
			out = append(out, word)
		}
	}
	return strings.Join(out, "-")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
