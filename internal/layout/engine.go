package layout

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/invoicekit/internal/contact"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/money"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
)

const (
	fontHelvetica = "helvetica"
	fontTimes     = "times"

	headerFill    = 8.0
	headerAdvance = 10.0
	lineHeight    = 5.0
	rowPadding    = 4.0
	cellInset     = 4.0
	addressWidth  = 100.0
	metaLabelGap  = 60.0
	totalsWidth   = 70.0
	footerOffset  = 20.0
)

var (
	black     = Gray(0)
	ink       = RGB(24, 24, 27)
	muted     = RGB(113, 113, 122)
	rule      = RGB(228, 228, 231)
	notesInk  = Gray(60)
	headerBg  = Gray(250)
	descFont  = Font{Family: fontHelvetica, Size: 9}
	notesFont = Font{Family: fontHelvetica, Size: 9}
)

// Build lays out the invoice and its totals onto pages. It is a pure
// function of its inputs and always terminates.
func Build(inv invoicedomain.Invoice, totals money.Totals, opts Options) []Page {
	b := newBuilder(opts.withDefaults())

	b.heading(inv)
	b.billTo(inv.Recipient.Data())
	b.table(inv.Items)
	b.totals(totals)
	b.notes(inv.Notes)
	b.footer()
	b.watermark(string(inv.Status))

	return b.pages
}

type builder struct {
	opts Options
	m    Measurer

	pages []Page
	y     float64

	contentW float64
	descW    float64
	qtyW     float64
}

func newBuilder(opts Options) *builder {
	contentW := opts.PageWidth - 2*opts.Margin
	b := &builder{
		opts:     opts,
		m:        opts.Measurer,
		contentW: contentW,
		descW:    contentW * 0.50,
		qtyW:     contentW * 0.15,
	}
	b.newPage()
	return b
}

func (b *builder) newPage() {
	b.pages = append(b.pages, Page{
		Number: len(b.pages) + 1,
		Width:  b.opts.PageWidth,
		Height: b.opts.PageHeight,
	})
	b.y = b.opts.Margin
}

// limit is the lowest baseline content may reach before the footer zone.
func (b *builder) limit() float64 {
	return b.opts.PageHeight - b.opts.BottomReserve
}

func (b *builder) right() float64 {
	return b.opts.PageWidth - b.opts.Margin
}

func (b *builder) emit(in Instruction) {
	page := &b.pages[len(b.pages)-1]
	page.Instructions = append(page.Instructions, in)
}

func (b *builder) text(role Role, s string, x, y float64, font Font, align Align, color Color) {
	f := font
	b.emit(Instruction{Op: OpText, Role: role, Text: s, X: x, Y: y, Font: &f, Align: align, Color: color})
}

func (b *builder) line(role Role, x1, y1, x2, y2 float64, color Color, width float64) {
	b.emit(Instruction{Op: OpLine, Role: role, X: x1, Y: y1, X2: x2, Y2: y2, Color: color, LineWidth: width})
}

func (b *builder) heading(inv invoicedomain.Invoice) {
	m := b.opts.Margin
	sender := inv.Sender.Data()

	b.text(RoleTitle, b.opts.Title, m, b.y, Font{Family: fontHelvetica, Style: StyleBold, Size: 28}, AlignLeft, black)
	b.y += 15

	b.text(RoleSender, sender.FullName(), m, b.y, Font{Family: fontHelvetica, Style: StyleBold, Size: 12}, AlignLeft, black)
	b.y += 6

	rightX := b.right()
	rightY := m + 15
	label := Font{Family: fontHelvetica, Style: StyleBold, Size: 10}
	value := Font{Family: fontHelvetica, Size: 10}
	for _, row := range [][2]string{
		{"Invoice #:", inv.InvoiceNumber},
		{"Payment:", inv.PaymentMethod},
		{"Issue Date:", contact.FormatDisplayDate(inv.IssueDate)},
		{"Due Date:", contact.FormatDisplayDate(inv.DueDate)},
	} {
		b.text(RoleMeta, row[0], rightX-metaLabelGap, rightY, label, AlignLeft, black)
		b.text(RoleMeta, row[1], rightX, rightY, value, AlignRight, black)
		rightY += 5
	}

	b.address(RoleSender, sender)
	if rightY > b.y {
		b.y = rightY
	}
	b.y += 10
}

func (b *builder) billTo(recipient partydomain.Party) {
	m := b.opts.Margin

	b.text(RoleBillTo, "Bill To:", m, b.y, Font{Family: fontHelvetica, Style: StyleBold, Size: 11}, AlignLeft, black)
	b.y += 7
	b.text(RoleBillTo, recipient.FullName(), m, b.y, Font{Family: fontHelvetica, Style: StyleBold, Size: 12}, AlignLeft, black)
	b.y += 5

	b.address(RoleBillTo, recipient)
	b.y += 10
}

// address prints the postal and contact lines of a party, skipping the
// empty ones.
func (b *builder) address(role Role, p partydomain.Party) {
	font := Font{Family: fontHelvetica, Size: 10}
	for _, value := range []string{p.AddressLine1, p.AddressLine2, p.LocationLine(), p.Email, p.Phone} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		for _, line := range Wrap(b.m, font, value, addressWidth) {
			b.text(role, line, b.opts.Margin, b.y, font, AlignLeft, black)
			b.y += lineHeight
		}
	}
}

func (b *builder) tableHeader() {
	m := b.opts.Margin
	b.emit(Instruction{Op: OpRect, Role: RoleTableHeader, X: m, Y: b.y, W: b.contentW, H: headerFill, Color: headerBg})
	b.line(RoleTableHeader, m, b.y, b.right(), b.y, rule, 0.5)
	b.line(RoleTableHeader, m, b.y+headerFill, b.right(), b.y+headerFill, rule, 0.5)

	font := Font{Family: fontHelvetica, Style: StyleBold, Size: 8}
	baseline := b.y + 5.5
	b.text(RoleTableHeader, "DESCRIPTION", m+cellInset, baseline, font, AlignLeft, muted)
	b.text(RoleTableHeader, "QTY", m+b.descW+cellInset, baseline, font, AlignLeft, muted)
	b.text(RoleTableHeader, "RATE", m+b.descW+b.qtyW+cellInset, baseline, font, AlignLeft, muted)
	b.text(RoleTableHeader, "AMOUNT", b.right()-cellInset, baseline, font, AlignRight, muted)

	b.y += headerAdvance
}

func (b *builder) rowLines(item invoicedomain.LineItem) ([]string, float64) {
	lines := Wrap(b.m, descFont, item.Description, b.descW-2*cellInset)
	height := float64(len(lines))*lineHeight + rowPadding
	if height < headerAdvance {
		height = headerAdvance
	}
	return lines, height
}

// table prints the item rows. A row that does not fit above the footer
// zone moves to a new page, which starts with the header again. Rows are
// never split.
func (b *builder) table(items []invoicedomain.LineItem) {
	if len(items) > 0 {
		if _, first := b.rowLines(items[0]); b.y+headerAdvance+first > b.limit() {
			b.newPage()
		}
	}
	b.tableHeader()

	rowsOnPage := 0
	for i, item := range items {
		lines, height := b.rowLines(item)
		if rowsOnPage > 0 && b.y+height > b.limit() {
			b.newPage()
			b.tableHeader()
			rowsOnPage = 0
		}
		b.row(i+1, item, lines, height)
		rowsOnPage++
	}
}

func (b *builder) row(index int, item invoicedomain.LineItem, lines []string, height float64) {
	m := b.opts.Margin
	baseline := b.y + 5
	for i, line := range lines {
		b.cell(index, line, m+cellInset, baseline+float64(i)*lineHeight, AlignLeft)
	}
	b.cell(index, item.Quantity.String(), m+b.descW+cellInset, baseline, AlignLeft)
	b.cell(index, money.FormatCurrency("", item.UnitPrice), m+b.descW+b.qtyW+cellInset, baseline, AlignLeft)
	b.cell(index, money.FormatCurrency(b.opts.CurrencyPrefix, item.Amount()), b.right()-cellInset, baseline, AlignRight)

	b.y += height
	b.emit(Instruction{Op: OpLine, Role: RoleItemRow, Row: index, X: m, Y: b.y, X2: b.right(), Y2: b.y, Color: rule, LineWidth: 0.1})
}

func (b *builder) cell(index int, s string, x, y float64, align Align) {
	f := descFont
	b.emit(Instruction{Op: OpText, Role: RoleItemRow, Row: index, Text: s, X: x, Y: y, Font: &f, Align: align, Color: ink})
}

// totalsHeight is the vertical extent of the totals block measured from
// its first baseline to its last.
func totalsHeight(t money.Totals) float64 {
	h := 5.0 + 7 + 3
	if t.Shipping.IsPositive() {
		h += 5
	}
	return h
}

// totals prints the summary block right-aligned at the page edge. The
// block moves to a new page as a whole when it does not fit.
func (b *builder) totals(t money.Totals) {
	x := b.right() - totalsWidth
	valueX := b.right()
	prefix := b.opts.CurrencyPrefix

	y := b.y + 10
	if y+totalsHeight(t) > b.limit() {
		b.newPage()
		y = b.y
	}

	labelFont := Font{Family: fontHelvetica, Size: 8.5}
	pair := func(label, value string) {
		b.text(RoleTotals, label, x, y, labelFont, AlignLeft, muted)
		b.text(RoleTotals, value, valueX, y, labelFont, AlignRight, ink)
	}

	pair("Subtotal:", money.FormatCurrency(prefix, t.Subtotal))
	y += 5
	if t.Shipping.IsPositive() {
		pair("Shipping:", money.FormatCurrency(prefix, t.Shipping))
		y += 5
	}
	pair(fmt.Sprintf("Tax (%s%%):", t.TaxRate.String()), money.FormatCurrency(prefix, t.TaxAmount))
	y += 7

	b.line(RoleTotals, x, y-2, valueX, y-2, rule, 0.3)
	y += 3

	totalFont := Font{Family: fontHelvetica, Style: StyleBold, Size: 11}
	b.text(RoleTotals, "Total:", x, y, totalFont, AlignLeft, ink)
	b.text(RoleTotals, money.FormatCurrency(prefix, t.GrandTotal), valueX, y, totalFont, AlignRight, ink)

	b.y = y + 20
}

// notes prints the notes paragraph. A block that fits on a fresh page is
// never split; a longer one starts at the cursor and flows onto further
// pages line by line.
func (b *builder) notes(notes string) {
	if strings.TrimSpace(notes) == "" {
		return
	}
	b.y += 10

	lines := Wrap(b.m, notesFont, notes, b.contentW)
	const labelAdvance = 6.0
	blockH := labelAdvance + float64(len(lines))*lineHeight

	fitsFresh := b.opts.Margin+blockH <= b.limit()
	if b.y+blockH > b.limit() && (fitsFresh || b.y+labelAdvance+lineHeight > b.limit()) {
		b.newPage()
	}

	b.text(RoleNotes, "Notes:", b.opts.Margin, b.y, Font{Family: fontHelvetica, Style: StyleBold, Size: 10}, AlignLeft, black)
	b.y += labelAdvance

	for _, line := range lines {
		if b.y+lineHeight > b.limit() && b.y > b.opts.Margin {
			b.newPage()
		}
		b.text(RoleNotes, line, b.opts.Margin, b.y, notesFont, AlignLeft, notesInk)
		b.y += lineHeight
	}
	b.y += 10
}

func (b *builder) footer() {
	b.text(RoleFooter, b.opts.FooterText, b.opts.PageWidth/2, b.opts.PageHeight-footerOffset,
		Font{Family: fontTimes, Style: StyleItalic, Size: 11}, AlignCenter, muted)
}

// watermark stamps the status on every page, after all other content.
func (b *builder) watermark(status string) {
	status = strings.TrimSpace(status)
	if status == "" {
		return
	}
	wm := b.opts.Watermark
	font := Font{Family: fontHelvetica, Style: StyleBold, Size: wm.Size}
	for i := range b.pages {
		b.pages[i].Instructions = append(b.pages[i].Instructions, Instruction{
			Op:    OpRotatedText,
			Role:  RoleWatermark,
			Text:  status,
			X:     b.opts.PageWidth - wm.OffsetX,
			Y:     b.opts.PageHeight - wm.OffsetY,
			Font:  &font,
			Align: AlignCenter,
			Color: Gray(wm.Gray),
			Angle: wm.Angle,
		})
	}
}
