package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	seqPadRe      = regexp.MustCompile(`\{SEQ(\d+)\}`)
	trailingDigit = regexp.MustCompile(`\d+$`)
)

// DefaultInvoiceNumber is issued when no invoice has been saved yet.
const DefaultInvoiceNumber = "INV-001"

// NextInvoiceNumber derives the number following lastIssued.
//
// The trailing run of digits is incremented and re-padded to its original
// width; the prefix is kept. A number without trailing digits is returned
// unchanged. This function is pure: the caller persists the counter.
func NextInvoiceNumber(lastIssued string) string {
	if lastIssued == "" {
		return DefaultInvoiceNumber
	}

	loc := trailingDigit.FindStringIndex(lastIssued)
	if loc == nil {
		return lastIssued
	}

	prefix := lastIssued[:loc[0]]
	digits := lastIssued[loc[0]:]

	return prefix + increment(digits)
}

// increment adds one to a decimal digit string of any length, keeping
// leading zeros. "009" -> "010", "999" -> "1000".
func increment(digits string) string {
	if n, err := strconv.ParseUint(digits, 10, 63); err == nil {
		return fmt.Sprintf("%0*d", len(digits), n+1)
	}

	out := []byte(digits)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < '9' {
			out[i]++
			return string(out)
		}
		out[i] = '0'
	}
	return "1" + string(out)
}

// FormatInvoiceNumber formats a human-readable invoice number
// based on a template, invoice issue time, and monotonic sequence.
//
// Used to seed the counter when a numbering template is configured.
func FormatInvoiceNumber(
	template string,
	issuedAt time.Time,
	seq int64,
) (string, error) {

	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}

	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := template

	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}

		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}

		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}
