package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/smallbiznis/invoicekit/internal/layout"
	"go.uber.org/zap"
)

// RenderPages paints every page's instructions, in order, into one PDF.
func (p *PDFProvider) RenderPages(ctx context.Context, pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	first := pages[0]
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetCreator("invoicekit", true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, in := range page.Instructions {
			paint(doc, tr, in)
		}
		if doc.Err() {
			return nil, fmt.Errorf("paint page %d: %w", page.Number, doc.Error())
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	p.log.Debug("invoice pages painted", zap.Int("pages", len(pages)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func paint(doc *gofpdf.Fpdf, tr func(string) string, in layout.Instruction) {
	switch in.Op {
	case layout.OpRect:
		doc.SetFillColor(int(in.Color.R), int(in.Color.G), int(in.Color.B))
		doc.Rect(in.X, in.Y, in.W, in.H, "F")

	case layout.OpLine:
		doc.SetDrawColor(int(in.Color.R), int(in.Color.G), int(in.Color.B))
		doc.SetLineWidth(in.LineWidth)
		doc.Line(in.X, in.Y, in.X2, in.Y2)

	case layout.OpText:
		setFont(doc, in.Font)
		doc.SetTextColor(int(in.Color.R), int(in.Color.G), int(in.Color.B))
		text := tr(in.Text)
		x := in.X
		switch in.Align {
		case layout.AlignRight:
			x -= doc.GetStringWidth(text)
		case layout.AlignCenter:
			x -= doc.GetStringWidth(text) / 2
		}
		doc.Text(x, in.Y, text)

	case layout.OpRotatedText:
		setFont(doc, in.Font)
		doc.SetTextColor(int(in.Color.R), int(in.Color.G), int(in.Color.B))
		doc.TransformBegin()
		doc.TransformRotate(in.Angle, in.X, in.Y)
		doc.Text(in.X, in.Y, tr(in.Text))
		doc.TransformEnd()
	}
}

func setFont(doc *gofpdf.Fpdf, font *layout.Font) {
	if font == nil {
		doc.SetFont("Helvetica", "", 10)
		return
	}
	doc.SetFont(fontFamily(font.Family), font.Style, font.Size)
}
