package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextInvoiceNumber(t *testing.T) {
	cases := []struct {
		last string
		want string
	}{
		{"", "INV-001"},
		{"INV-001", "INV-002"},
		{"INV-009", "INV-010"},
		{"INV-999", "INV-1000"},
		{"X", "X"},
		{"2024-07", "2024-08"},
		{"A1B", "A1B"},
		{"INV-99999999999999999999", "INV-100000000000000000000"},
		{"INV-00000000000000000009", "INV-00000000000000000010"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NextInvoiceNumber(tc.last), "last=%q", tc.last)
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber("INV-{YYYY}{MM}{DD}-{SEQ4}", issued, 1)
	require.NoError(t, err)
	assert.Equal(t, "INV-20250105-0001", got)

	_, err = FormatInvoiceNumber("", issued, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{SEQ}", issued, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{BAD}", issued, 1)
	assert.Error(t, err)
}
