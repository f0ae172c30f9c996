// Package editor holds the state of one invoice being composed: the id of
// the stored invoice it edits, if any, and its ordered line items.
package editor

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/money"
)

// Row is a line item with a key that stays stable while other rows are
// added or removed.
type Row struct {
	Key  int             `json:"key"`
	Item domain.LineItem `json:"item"`
}

// Saver persists a validated invoice form.
type Saver interface {
	Save(context.Context, domain.SaveInvoiceRequest) (domain.Invoice, error)
}

// Session is not safe for concurrent use.
type Session struct {
	// CurrentInvoiceID is nil until the first successful save.
	CurrentInvoiceID *snowflake.ID
	// Draft holds the header fields. Its Items are ignored; rows are
	// authoritative.
	Draft domain.SaveInvoiceRequest

	rows    []Row
	nextKey int
}

// BlankItem is the row a fresh form starts with.
func BlankItem() domain.LineItem {
	return domain.LineItem{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero}
}

// NewSession starts a session from a draft. A draft with an ID edits that
// stored invoice.
func NewSession(draft domain.SaveInvoiceRequest) *Session {
	s := &Session{}
	s.Load(draft)
	return s
}

// Load replaces the whole session state with the draft.
func (s *Session) Load(draft domain.SaveInvoiceRequest) {
	s.CurrentInvoiceID = nil
	if draft.ID != nil {
		id := *draft.ID
		s.CurrentInvoiceID = &id
	}

	items := draft.Items
	draft.ID = nil
	draft.Items = nil
	s.Draft = draft

	s.rows = nil
	s.nextKey = 0
	for _, item := range items {
		s.AddItem(item)
	}
	if len(s.rows) == 0 {
		s.AddItem(BlankItem())
	}
}

// Reset starts a new invoice; the next save inserts rather than updates.
func (s *Session) Reset(draft domain.SaveInvoiceRequest) {
	draft.ID = nil
	s.Load(draft)
}

// AddItem appends a row and returns its key.
func (s *Session) AddItem(item domain.LineItem) int {
	s.nextKey++
	s.rows = append(s.rows, Row{Key: s.nextKey, Item: item})
	return s.nextKey
}

func (s *Session) UpdateItem(key int, item domain.LineItem) error {
	i := s.indexOf(key)
	if i < 0 {
		return domain.ErrItemNotFound
	}
	s.rows[i].Item = item
	return nil
}

// RemoveItem deletes a row. The last remaining row cannot be removed.
func (s *Session) RemoveItem(key int) error {
	i := s.indexOf(key)
	if i < 0 {
		return domain.ErrItemNotFound
	}
	if len(s.rows) == 1 {
		return domain.ErrLastItem
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return nil
}

func (s *Session) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Session) Items() []domain.LineItem {
	out := make([]domain.LineItem, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row.Item)
	}
	return out
}

// Totals recomputes the totals of the current rows.
func (s *Session) Totals() money.Totals {
	return money.ComputeTotals(domain.MoneyItems(s.Items()), s.Draft.TaxRate, s.Draft.Shipping)
}

// Request builds the save request for the current state.
func (s *Session) Request() domain.SaveInvoiceRequest {
	req := s.Draft
	req.Items = s.Items()
	req.ID = nil
	if s.CurrentInvoiceID != nil {
		id := *s.CurrentInvoiceID
		req.ID = &id
	}
	return req
}

func (s *Session) Validate() error {
	return s.Request().Validate()
}

// Save validates and persists the session. After the first successful save
// the session keeps the assigned id, so saving again updates the same
// invoice.
func (s *Session) Save(ctx context.Context, saver Saver) (domain.Invoice, error) {
	req := s.Request()
	if err := req.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	inv, err := saver.Save(ctx, req)
	if err != nil {
		return domain.Invoice{}, err
	}

	id := inv.ID
	s.CurrentInvoiceID = &id
	return inv, nil
}

func (s *Session) indexOf(key int) int {
	for i, row := range s.rows {
		if row.Key == key {
			return i
		}
	}
	return -1
}
