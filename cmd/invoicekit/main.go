package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicekit/internal/backup"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/config"
	"github.com/smallbiznis/invoicekit/internal/invoice"
	"github.com/smallbiznis/invoicekit/internal/migration"
	"github.com/smallbiznis/invoicekit/internal/observability"
	"github.com/smallbiznis/invoicekit/internal/party"
	"github.com/smallbiznis/invoicekit/internal/providers"
	"github.com/smallbiznis/invoicekit/internal/sequence"
	"github.com/smallbiznis/invoicekit/internal/server"
	"github.com/smallbiznis/invoicekit/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		providers.Module,

		// Functional Domains
		party.Module,
		sequence.Module,
		invoice.Module,
		backup.Module,

		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
