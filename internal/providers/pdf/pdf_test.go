package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicekit/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMeasurer_UsesFontMetrics(t *testing.T) {
	m := NewMeasurer()
	regular := layout.Font{Family: "helvetica", Size: 10}
	bold := layout.Font{Family: "helvetica", Style: layout.StyleBold, Size: 10}

	assert.Zero(t, m.StringWidth(regular, ""))
	assert.Greater(t, m.StringWidth(regular, "WWW"), m.StringWidth(regular, "iii"))
	assert.Greater(t, m.StringWidth(bold, "Invoice"), m.StringWidth(regular, "Invoice"))
}

func TestRenderPages(t *testing.T) {
	p := New(Params{Log: zap.NewNop()})
	bold := &layout.Font{Family: "helvetica", Style: layout.StyleBold, Size: 12}

	pages := []layout.Page{
		{Number: 1, Width: 210, Height: 297, Instructions: []layout.Instruction{
			{Op: layout.OpText, Role: layout.RoleTitle, Text: "INVOICE", X: 20, Y: 30, Font: bold},
			{Op: layout.OpRect, Role: layout.RoleTableHeader, X: 20, Y: 60, W: 170, H: 8, Color: layout.Gray(250)},
			{Op: layout.OpLine, Role: layout.RoleTableHeader, X: 20, Y: 60, X2: 190, Y2: 60, LineWidth: .5},
			{Op: layout.OpText, Role: layout.RoleItemRow, Row: 1, Text: "Café €12", X: 186, Y: 75, Align: layout.AlignRight},
		}},
		{Number: 2, Width: 210, Height: 297, Instructions: []layout.Instruction{
			{Op: layout.OpText, Role: layout.RoleFooter, Text: "Thanks", X: 105, Y: 277, Align: layout.AlignCenter},
			{Op: layout.OpRotatedText, Role: layout.RoleWatermark, Text: "PAID", X: 170, Y: 267, Angle: 45, Font: bold, Color: layout.Gray(245)},
		}},
	}

	out, err := p.RenderPages(context.Background(), pages)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderPages_Errors(t *testing.T) {
	p := New(Params{Log: zap.NewNop()})

	_, err := p.RenderPages(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoPages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.RenderPages(ctx, []layout.Page{{Number: 1, Width: 210, Height: 297}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderHistory(t *testing.T) {
	p := New(Params{Log: zap.NewNop()})

	out, err := p.RenderHistory(context.Background(), HistoryData{
		GeneratedAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Rows: []HistoryRow{
			{InvoiceNumber: "INV-001", IssueDate: "March 1, 2025", ClientName: "Bob Smith", Status: "PAID", GrandTotal: "CA$27.61"},
		},
		Total: "CA$27.61",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
