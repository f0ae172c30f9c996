package pdf

import (
	"context"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

// HistoryData is the invoice history statement, already formatted.
type HistoryData struct {
	Title       string
	GeneratedAt time.Time
	Rows        []HistoryRow
	Total       string
}

type HistoryRow struct {
	InvoiceNumber string
	IssueDate     string
	ClientName    string
	Status        string
	GrandTotal    string
}

// RenderHistory writes a tabular statement of every invoice.
func (p *PDFProvider) RenderHistory(ctx context.Context, data HistoryData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = "Invoice History"
	}
	m.AddRow(12,
		text.NewCol(8, title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, "Generated "+data.GeneratedAt.Format("January 2, 2006"), props.Text{Size: 9, Align: align.Right, Top: 4}),
	)
	m.AddRow(4, col.New(12))

	header := props.Text{Size: 9, Style: fontstyle.Bold}
	m.AddRow(8,
		text.NewCol(2, "Invoice #", header),
		text.NewCol(2, "Issue Date", header),
		text.NewCol(4, "Client", header),
		text.NewCol(2, "Status", header),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	for _, row := range data.Rows {
		m.AddRow(7,
			text.NewCol(2, row.InvoiceNumber, cell),
			text.NewCol(2, row.IssueDate, cell),
			text.NewCol(4, row.ClientName, cell),
			text.NewCol(2, row.Status, cell),
			text.NewCol(2, row.GrandTotal, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(2, data.Total, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	p.log.Debug("history statement rendered", zap.Int("rows", len(data.Rows)))
	return doc.GetBytes(), nil
}
