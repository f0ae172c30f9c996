// Package pdf paints invoice pages and history statements as PDF.
package pdf

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicekit/internal/layout"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrNoPages = errors.New("no_pages")

// Provider turns laid-out pages and invoice history into PDF bytes.
type Provider interface {
	// Measurer returns font metrics matching the fonts the provider paints
	// with, so layout wraps text the way it will be drawn.
	Measurer() layout.Measurer
	RenderPages(ctx context.Context, pages []layout.Page) ([]byte, error)
	RenderHistory(ctx context.Context, data HistoryData) ([]byte, error)
}

type Params struct {
	fx.In

	Log *zap.Logger
}

type PDFProvider struct {
	log      *zap.Logger
	measurer *Measurer
}

func New(p Params) Provider {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFProvider{
		log:      log.Named("pdf.provider"),
		measurer: NewMeasurer(),
	}
}

func (p *PDFProvider) Measurer() layout.Measurer {
	return p.measurer
}

var Module = fx.Module("pdf.provider",
	fx.Provide(New),
)
