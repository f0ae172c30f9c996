package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/invoicekit/internal/backup"
	"github.com/smallbiznis/invoicekit/internal/config"
	invoicedomain "github.com/smallbiznis/invoicekit/internal/invoice/domain"
	"github.com/smallbiznis/invoicekit/internal/invoice/render"
	"github.com/smallbiznis/invoicekit/internal/observability"
	obslogger "github.com/smallbiznis/invoicekit/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicekit/internal/observability/metrics"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
	Gatherer    prometheus.Gatherer     `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(p.HTTPMetrics.Middleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	invoiceSvc invoicedomain.Service
	partySvc   partydomain.Service
	renderer   *render.Renderer
	backupSvc  *backup.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	InvoiceSvc invoicedomain.Service
	PartySvc   partydomain.Service
	Renderer   *render.Renderer
	BackupSvc  *backup.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		invoiceSvc: p.InvoiceSvc,
		partySvc:   p.PartySvc,
		renderer:   p.Renderer,
		backupSvc:  p.BackupSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Profiles --------
	issuers := api.Group("/issuers")
	{
		issuers.GET("", s.ListProfiles(partydomain.KindIssuer))
		issuers.POST("", s.SaveProfile(partydomain.KindIssuer))
		issuers.GET("/:id", s.GetProfileByID)
		issuers.DELETE("/:id", s.DeleteProfile)
	}
	clients := api.Group("/clients")
	{
		clients.GET("", s.ListProfiles(partydomain.KindClient))
		clients.POST("", s.SaveProfile(partydomain.KindClient))
		clients.GET("/:id", s.GetProfileByID)
		clients.DELETE("/:id", s.DeleteProfile)
	}

	// -------- Invoices --------
	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.ListInvoices)
		invoices.POST("", s.SaveInvoice)
		invoices.GET("/next-number", s.NextInvoiceNumber)
		invoices.GET("/draft", s.NewInvoiceDraft)
		invoices.GET("/history.pdf", s.InvoiceHistoryPDF)
		invoices.GET("/:id", s.GetInvoiceByID)
		invoices.DELETE("/:id", s.DeleteInvoice)
		invoices.POST("/:id/clone", s.CloneInvoice)
		invoices.GET("/:id/layout", s.InvoiceLayout)
		invoices.GET("/:id/pdf", s.InvoicePDF)
	}

	api.POST("/totals", s.PreviewTotals)

	// -------- Backup --------
	api.GET("/backup", s.ExportBackup)
	api.POST("/backup", s.ImportBackup)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
