package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/invoicekit/internal/clock"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/observability/metrics"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	sequencedomain "github.com/smallbiznis/invoicekit/internal/sequence/domain"
	dbpkg "github.com/smallbiznis/invoicekit/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	PartyRepo   partydomain.Repository
	InvoiceRepo invoicedomain.Repository
	Sequence    sequencedomain.Service
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	partyRepo   partydomain.Repository
	invoiceRepo invoicedomain.Repository
	seq         sequencedomain.Service
	metrics     *metrics.Metrics
}

// ImportResult reports what an import replaced.
type ImportResult struct {
	Collections int  `json:"collections"`
	Issuers     int  `json:"issuers"`
	Clients     int  `json:"clients"`
	Invoices    int  `json:"invoices"`
	Counter     bool `json:"counter"`
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("backup.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		partyRepo:   p.PartyRepo,
		invoiceRepo: p.InvoiceRepo,
		seq:         p.Sequence,
		metrics:     p.Metrics,
	}
}

// Export snapshots every profile, invoice and the sequence counter.
func (s *Service) Export(ctx context.Context) (Document, error) {
	issuers, err := s.partyRepo.List(ctx, s.db, partydomain.KindIssuer)
	if err != nil {
		return Document{}, err
	}
	clients, err := s.partyRepo.List(ctx, s.db, partydomain.KindClient)
	if err != nil {
		return Document{}, err
	}
	invoices, err := s.invoiceRepo.ListAll(ctx, s.db)
	if err != nil {
		return Document{}, err
	}
	last, err := s.seq.Last(ctx)
	if err != nil {
		return Document{}, err
	}

	now := s.clock.Now().UTC()
	doc := Document{
		ID:             ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		LastInvoiceNum: last,
		Timestamp:      now,
	}
	if doc.Issuers, err = collectionOf(issuers); err != nil {
		return Document{}, err
	}
	if doc.Clients, err = collectionOf(clients); err != nil {
		return Document{}, err
	}
	if doc.Invoices, err = collectionOf(invoices); err != nil {
		return Document{}, err
	}

	s.metrics.RecordBackup("export")
	s.log.Info("backup exported",
		zap.String("backup_id", doc.ID),
		zap.Int("issuers", len(issuers)),
		zap.Int("clients", len(clients)),
		zap.Int("invoices", len(invoices)),
	)
	return doc, nil
}

// Import replaces every collection present in doc, and the counter when
// set, in one transaction. A document with no collection is rejected.
func (s *Service) Import(ctx context.Context, doc Document) (ImportResult, error) {
	var result ImportResult
	for _, c := range []Collection{doc.Issuers, doc.Clients, doc.Invoices} {
		if c.Present() {
			result.Collections++
		}
	}
	if result.Collections == 0 {
		return ImportResult{}, ErrInvalidBackup
	}

	now := s.clock.Now().UTC()
	issuers, err := s.decodeProfiles(doc.Issuers, partydomain.KindIssuer)
	if err != nil {
		return ImportResult{}, err
	}
	clients, err := s.decodeProfiles(doc.Clients, partydomain.KindClient)
	if err != nil {
		return ImportResult{}, err
	}
	invoices, err := s.decodeInvoices(doc.Invoices)
	if err != nil {
		return ImportResult{}, err
	}
	for _, p := range issuers {
		stamp(&p.CreatedAt, &p.UpdatedAt, now)
	}
	for _, p := range clients {
		stamp(&p.CreatedAt, &p.UpdatedAt, now)
	}
	for _, inv := range invoices {
		stamp(&inv.CreatedAt, &inv.UpdatedAt, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if doc.Issuers.Present() {
			if err := s.replaceProfiles(ctx, tx, partydomain.KindIssuer, issuers); err != nil {
				return err
			}
		}
		if doc.Clients.Present() {
			if err := s.replaceProfiles(ctx, tx, partydomain.KindClient, clients); err != nil {
				return err
			}
		}
		if doc.Invoices.Present() {
			if err := s.invoiceRepo.DeleteAll(ctx, tx); err != nil {
				return err
			}
			for _, inv := range invoices {
				if err := s.invoiceRepo.Insert(ctx, tx, inv); err != nil {
					return err
				}
			}
		}
		if number := strings.TrimSpace(doc.LastInvoiceNum); number != "" {
			return s.seq.Reset(ctx, tx, number)
		}
		return nil
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidBackup, invoicedomain.ErrDuplicateInvoiceNumber)
		}
		return ImportResult{}, err
	}

	result.Issuers = len(issuers)
	result.Clients = len(clients)
	result.Invoices = len(invoices)
	result.Counter = strings.TrimSpace(doc.LastInvoiceNum) != ""

	s.metrics.RecordBackup("import")
	s.log.Info("backup imported",
		zap.String("backup_id", doc.ID),
		zap.Int("collections", result.Collections),
		zap.Int("issuers", result.Issuers),
		zap.Int("clients", result.Clients),
		zap.Int("invoices", result.Invoices),
		zap.Bool("counter", result.Counter),
	)
	return result, nil
}

func (s *Service) replaceProfiles(ctx context.Context, tx *gorm.DB, kind partydomain.Kind, profiles []*partydomain.Profile) error {
	if err := s.partyRepo.DeleteAll(ctx, tx, kind); err != nil {
		return err
	}
	for _, p := range profiles {
		if err := s.partyRepo.Insert(ctx, tx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) decodeProfiles(c Collection, kind partydomain.Kind) ([]*partydomain.Profile, error) {
	out := make([]*partydomain.Profile, 0, len(c))
	seen := make(map[snowflake.ID]bool, len(c))
	for i, raw := range c {
		var p partydomain.Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidBackup, kind, i, err)
		}
		p.Kind = kind
		p.Party = p.Party.Normalize()
		p.NameKey = partydomain.NameKeyFor(p.Party)
		if p.ID == 0 || seen[p.ID] {
			p.ID = s.genID.Generate()
		}
		seen[p.ID] = true
		out = append(out, &p)
	}
	return out, nil
}

// invoiceRecord reads the id separately since older backups use ids that
// are not snowflakes.
type invoiceRecord struct {
	invoicedomain.Invoice
	ID json.RawMessage `json:"id"`
}

func (s *Service) decodeInvoices(c Collection) ([]*invoicedomain.Invoice, error) {
	out := make([]*invoicedomain.Invoice, 0, len(c))
	seen := make(map[snowflake.ID]bool, len(c))
	for i, raw := range c {
		var rec invoiceRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: invoices[%d]: %v", ErrInvalidBackup, i, err)
		}

		inv := rec.Invoice
		inv.InvoiceNumber = strings.TrimSpace(inv.InvoiceNumber)
		if inv.InvoiceNumber == "" {
			return nil, fmt.Errorf("%w: invoices[%d]: missing invoiceNumber", ErrInvalidBackup, i)
		}

		inv.ID = parseLegacyID(rec.ID)
		if inv.ID == 0 || seen[inv.ID] {
			inv.ID = s.genID.Generate()
		}
		seen[inv.ID] = true

		inv.Status, _ = invoicedomain.ParseStatus(string(inv.Status))
		inv.Sender = datatypes.NewJSONType(inv.Sender.Data().Normalize())
		inv.Recipient = datatypes.NewJSONType(inv.Recipient.Data().Normalize())
		if strings.TrimSpace(inv.ClientName) == "" {
			inv.ClientName = inv.Recipient.Data().FullName()
		}
		out = append(out, &inv)
	}
	return out, nil
}

func parseLegacyID(raw json.RawMessage) snowflake.ID {
	value := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = unquoted
	}
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return snowflake.ID(id)
}

// stamp fills missing timestamps and stores them in UTC.
func stamp(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*createdAt = createdAt.UTC()
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
	*updatedAt = updatedAt.UTC()
}
