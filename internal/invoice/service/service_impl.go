package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/contact"
	"github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/money"
	"github.com/smallbiznis/invoicekit/internal/observability/logger"
	"github.com/smallbiznis/invoicekit/internal/observability/metrics"
	sequencedomain "github.com/smallbiznis/invoicekit/internal/sequence/domain"
	dbpkg "github.com/smallbiznis/invoicekit/pkg/db"
	"github.com/smallbiznis/invoicekit/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Repo     domain.Repository
	Sequence sequencedomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	dueDays int
	repo    domain.Repository
	seq     sequencedomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		dueDays: p.Config.DefaultDueDays,
		repo:    p.Repo,
		seq:     p.Sequence,
		metrics: p.Metrics,
	}
}

// Save validates the request and stores it. A request without an ID
// inserts a new invoice and advances the sequence counter in the same
// transaction; otherwise the stored invoice is overwritten in place,
// keeping its ID and CreatedAt.
func (s *Service) Save(ctx context.Context, req domain.SaveInvoiceRequest) (domain.Invoice, error) {
	if err := req.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now().UTC()
	created := req.ID == nil

	var saved domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !created {
			existing, err := s.repo.FindByID(ctx, tx, *req.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrNotFound
			}
			apply(existing, req)
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			saved = *existing
			return nil
		}

		invoice := domain.Invoice{
			ID:        s.genID.Generate(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		apply(&invoice, req)
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.seq.Advance(ctx, tx, invoice.InvoiceNumber); err != nil {
			return err
		}
		saved = invoice
		return nil
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateInvoiceNumber
		}
		return domain.Invoice{}, err
	}

	s.metrics.RecordInvoiceSaved(created)
	logger.WithInvoice(s.log, saved.ID.String(), saved.InvoiceNumber).Info("invoice saved",
		zap.Bool("created", created),
		zap.Int("items", len(saved.Items)),
		zap.String("grand_total", saved.Totals.Data().GrandTotal.StringFixed(2)),
	)
	return saved, nil
}

// apply copies the editable fields of req onto inv and recomputes totals.
func apply(inv *domain.Invoice, req domain.SaveInvoiceRequest) {
	status, _ := domain.ParseStatus(string(req.Status))
	sender := req.Sender.Normalize()
	recipient := req.Recipient.Normalize()

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		item.Description = strings.TrimSpace(item.Description)
		items = append(items, item)
	}

	inv.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	inv.IssueDate = contact.NormalizeDate(req.IssueDate)
	inv.DueDate = contact.NormalizeDate(req.DueDate)
	inv.Status = status
	inv.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	inv.Notes = req.Notes
	inv.IssuerID = strings.TrimSpace(req.IssuerID)
	inv.ClientID = strings.TrimSpace(req.ClientID)
	inv.ClientName = recipient.FullName()
	inv.Sender = datatypes.NewJSONType(sender)
	inv.Recipient = datatypes.NewJSONType(recipient)
	inv.Items = datatypes.JSONSlice[domain.LineItem](items)
	inv.Totals = datatypes.NewJSONType(money.ComputeTotals(domain.MoneyItems(items), req.TaxRate, req.Shipping))
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.Invoice{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

// List returns invoice summaries newest first, one page at a time.
func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{}
	if req.Status != nil {
		status, ok := domain.ParseStatus(string(*req.Status))
		if !ok {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = &status
	}

	page := pagination.Pagination{PageToken: strings.TrimSpace(req.PageToken), PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Limit(), func(inv *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	summaries := make([]domain.InvoiceSummary, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		summaries = append(summaries, item.Summary())
	}

	resp := domain.ListInvoiceResponse{Invoices: summaries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, invoiceID); err != nil {
		return err
	}
	s.metrics.RecordInvoiceDeleted()
	logger.WithInvoice(s.log, item.ID.String(), item.InvoiceNumber).Info("invoice deleted")
	return nil
}

func (s *Service) NextNumber(ctx context.Context) (string, error) {
	return s.seq.Next(ctx)
}

// NewDraft returns an empty form: the next number, today as issue date,
// the default due date and one blank item.
func (s *Service) NewDraft(ctx context.Context) (domain.SaveInvoiceRequest, error) {
	number, err := s.seq.Next(ctx)
	if err != nil {
		return domain.SaveInvoiceRequest{}, err
	}
	today := s.clock.Now().Format(contact.ISODate)
	return domain.SaveInvoiceRequest{
		InvoiceNumber: number,
		IssueDate:     today,
		DueDate:       contact.AddDays(today, s.dueDays),
		Items:         []domain.LineItem{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.Zero}},
		TaxRate:       decimal.Zero,
		Shipping:      decimal.Zero,
	}, nil
}

// Clone copies a saved invoice into an unsaved draft carrying the next
// invoice number. Saving the draft creates a new invoice.
func (s *Service) Clone(ctx context.Context, id string) (domain.SaveInvoiceRequest, error) {
	source, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.SaveInvoiceRequest{}, err
	}
	number, err := s.seq.Next(ctx)
	if err != nil {
		return domain.SaveInvoiceRequest{}, err
	}

	draft := domain.DraftFrom(source)
	draft.ID = nil
	draft.InvoiceNumber = number
	return draft, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
