package layout

import "unicode/utf8"

const mmPerPoint = 25.4 / 72

// Measurer reports the rendered width of a string in millimetres.
type Measurer interface {
	StringWidth(font Font, s string) float64
}

// ApproxMeasurer estimates widths from an average glyph width. It keeps
// layout deterministic when no font metrics are available.
type ApproxMeasurer struct{}

func (ApproxMeasurer) StringWidth(font Font, s string) float64 {
	em := 0.5
	if font.Style == StyleBold {
		em = 0.55
	}
	return float64(utf8.RuneCountInString(s)) * font.Size * mmPerPoint * em
}
