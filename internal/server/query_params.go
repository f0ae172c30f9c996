package server

import (
	"strings"

	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
)

func parseOptionalStatus(value string) (*invoicedomain.InvoiceStatus, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	status, ok := invoicedomain.ParseStatus(trimmed)
	if !ok {
		return nil, invoicedomain.ErrInvalidStatus
	}
	return &status, nil
}

func attachment(filename string) string {
	return `attachment; filename="` + strings.ReplaceAll(filename, `"`, "") + `"`
}
