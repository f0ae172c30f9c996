package pdf

import (
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"github.com/smallbiznis/invoicekit/internal/layout"
)

// Measurer reports string widths using the core PDF font metrics. A gofpdf
// document is not safe for concurrent use, so calls are serialized.
type Measurer struct {
	mu  sync.Mutex
	doc *gofpdf.Fpdf
	tr  func(string) string
}

func NewMeasurer() *Measurer {
	doc := gofpdf.New("P", "mm", "A4", "")
	return &Measurer{
		doc: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

func (m *Measurer) StringWidth(font layout.Font, s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc.SetFont(fontFamily(font.Family), font.Style, font.Size)
	return m.doc.GetStringWidth(m.tr(s))
}

// fontFamily maps a layout family onto a core font.
func fontFamily(family string) string {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "times", "serif":
		return "Times"
	case "courier", "mono", "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

var _ layout.Measurer = (*Measurer)(nil)
