package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/invoice/format"
	"github.com/smallbiznis/invoicekit/internal/sequence/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	template string
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("sequence.service"),
		clock:    p.Clock,
		template: strings.TrimSpace(p.Config.InvoiceNumberTemplate),
		repo:     p.Repo,
	}
}

func (s *Service) Last(ctx context.Context) (string, error) {
	setting, err := s.repo.Get(ctx, s.db, domain.LastInvoiceNumberKey)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return strings.TrimSpace(setting.Value), nil
}

// Next increments the trailing digits of the last issued number. With no
// history the configured template seeds the sequence, else INV-001.
func (s *Service) Next(ctx context.Context) (string, error) {
	last, err := s.Last(ctx)
	if err != nil {
		return "", err
	}
	if last == "" && s.template != "" {
		seeded, err := format.FormatInvoiceNumber(s.template, s.clock.Now(), 1)
		if err == nil {
			return seeded, nil
		}
		s.log.Warn("invalid invoice number template", zap.String("template", s.template), zap.Error(err))
	}
	return format.NextInvoiceNumber(last), nil
}

func (s *Service) Advance(ctx context.Context, tx *gorm.DB, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Put(ctx, tx, &domain.Setting{
		Key:       domain.LastInvoiceNumberKey,
		Value:     number,
		UpdatedAt: s.clock.Now(),
	}); err != nil {
		return err
	}
	s.log.Debug("invoice number advanced", zap.String("invoice_number", number))
	return nil
}

func (s *Service) Reset(ctx context.Context, tx *gorm.DB, number string) error {
	if tx == nil {
		tx = s.db
	}
	if strings.TrimSpace(number) == "" {
		return s.repo.Delete(ctx, tx, domain.LastInvoiceNumberKey)
	}
	return s.Advance(ctx, tx, number)
}
