package layout

import "strings"

// Wrap splits text into lines that fit width, breaking on whitespace and on
// hard newlines. A word wider than a line is split between characters.
// Empty text yields a single empty line.
func Wrap(m Measurer, font Font, text string, width float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(m, font, paragraph, width)...)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func wrapParagraph(m Measurer, font Font, paragraph string, width float64) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.StringWidth(font, candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.StringWidth(font, word) <= width {
			current = word
			continue
		}
		pieces := breakWord(m, font, word, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func breakWord(m Measurer, font Font, word string, width float64) []string {
	var pieces []string
	var piece []rune
	for _, r := range word {
		next := append(piece, r)
		if len(piece) > 0 && m.StringWidth(font, string(next)) > width {
			pieces = append(pieces, string(piece))
			piece = []rune{r}
			continue
		}
		piece = next
	}
	return append(pieces, string(piece))
}
