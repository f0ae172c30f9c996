// Package layout paginates an invoice into fixed-size pages of primitive
// draw instructions. It does no painting; a rendering backend consumes the
// pages and produces a concrete document.
package layout

// Op is the primitive kind of an instruction.
type Op string

const (
	OpText        Op = "text"
	OpRect        Op = "rect"
	OpLine        Op = "line"
	OpRotatedText Op = "rotated_text"
)

// Role tags the invoice section an instruction belongs to.
type Role string

const (
	RoleTitle       Role = "title"
	RoleSender      Role = "sender"
	RoleMeta        Role = "meta"
	RoleBillTo      Role = "bill_to"
	RoleTableHeader Role = "table_header"
	RoleItemRow     Role = "item_row"
	RoleTotals      Role = "totals"
	RoleNotes       Role = "notes"
	RoleFooter      Role = "footer"
	RoleWatermark   Role = "watermark"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Font styles follow the core PDF font conventions.
const (
	StyleNormal = ""
	StyleBold   = "B"
	StyleItalic = "I"
)

type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style,omitempty"`
	Size   float64 `json:"size"`
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func Gray(v uint8) Color { return Color{R: v, G: v, B: v} }

// RGB builds a color from its components.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Instruction is one primitive draw call. Coordinates are millimetres
// from the top-left corner of the page; text Y is the baseline.
//
// Row is the 1-based index of the line item an item_row instruction
// belongs to, and zero for every other role.
type Instruction struct {
	Op        Op      `json:"op"`
	Role      Role    `json:"role"`
	Row       int     `json:"row,omitempty"`
	Text      string  `json:"text,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	X2        float64 `json:"x2,omitempty"`
	Y2        float64 `json:"y2,omitempty"`
	W         float64 `json:"w,omitempty"`
	H         float64 `json:"h,omitempty"`
	Font      *Font   `json:"font,omitempty"`
	Align     Align   `json:"align,omitempty"`
	Color     Color   `json:"color"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Angle     float64 `json:"angle,omitempty"`
}

// Page is one printed page and its instructions in paint order.
type Page struct {
	Number       int           `json:"number"`
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Instructions []Instruction `json:"instructions"`
}

// Count returns how many instructions on the page have the given role.
func (p Page) Count(role Role) int {
	n := 0
	for _, in := range p.Instructions {
		if in.Role == role {
			n++
		}
	}
	return n
}
