package domain

import (
	"context"

	"gorm.io/gorm"
)

// Service owns the invoice number counter.
type Service interface {
	// Last returns the last issued number, or "" when none was issued.
	Last(ctx context.Context) (string, error)
	// Next proposes the number for a new invoice without consuming it.
	Next(ctx context.Context) (string, error)
	// Advance records number as the last issued one. Pass the transaction
	// that inserts the invoice.
	Advance(ctx context.Context, tx *gorm.DB, number string) error
	// Reset replaces the counter; an empty number clears it.
	Reset(ctx context.Context, tx *gorm.DB, number string) error
}
