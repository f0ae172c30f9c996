package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smallbiznis/invoicekit/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("CURRENCY_PREFIX", "")
	t.Setenv("DEFAULT_DUE_DAYS", "")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "CA$", cfg.CurrencyPrefix)
	assert.Equal(t, 14, cfg.DefaultDueDays)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("DEFAULT_DUE_DAYS", "30")
	t.Setenv("ENVIRONMENT", "test")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 30, cfg.DefaultDueDays)
	assert.True(t, cfg.IsDevelopment())
}

func TestLayoutConfigHolder_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yml")
	content := []byte(`layout:
  page:
    width: 216
    height: 279
    margin: 18
  bottomReserve: 35
  footerText: "Merci!"
  watermark:
    angle: 30
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewLayoutConfigHolder(Config{LayoutConfigPath: path, CurrencyPrefix: "$"}, zap.NewNop())
	require.NoError(t, err)

	opts := holder.Options()
	assert.Equal(t, 216.0, opts.PageWidth)
	assert.Equal(t, 279.0, opts.PageHeight)
	assert.Equal(t, 18.0, opts.Margin)
	assert.Equal(t, 35.0, opts.BottomReserve)
	assert.Equal(t, "Merci!", opts.FooterText)
	assert.Equal(t, "$", opts.CurrencyPrefix)
	assert.Equal(t, 30.0, opts.Watermark.Angle)
}

func TestLayoutConfigHolder_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  page:\n    width: 100\n    margin: 60\n"), 0o600))

	_, err := NewLayoutConfigHolder(Config{LayoutConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestValidateLayoutFile_UsesEffectiveGeometry(t *testing.T) {
	var f LayoutFile
	require.NoError(t, validateLayoutFile(f))

	f.Page.Margin = 120
	assert.Error(t, validateLayoutFile(f), "margin against the default width")

	f = LayoutFile{}
	f.Page.Height = 50
	assert.Error(t, validateLayoutFile(f), "default margin and reserve against a short page")

	f = LayoutFile{BottomReserve: 280}
	assert.Error(t, validateLayoutFile(f), "reserve against the default height")

	f = LayoutFile{BottomReserve: 60}
	f.Page.Margin = 25
	assert.NoError(t, validateLayoutFile(f))
}

func TestLayoutConfigHolder_RejectsMarginWithoutWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  page:\n    margin: 120\n"), 0o600))

	_, err := NewLayoutConfigHolder(Config{LayoutConfigPath: path}, zap.NewNop())
	assert.Error(t, err)
}

func TestStaticLayoutConfigHolder(t *testing.T) {
	holder := NewStaticLayoutConfigHolder(LayoutFile{}, "CA$")
	assert.Equal(t, layout.Options{CurrencyPrefix: "CA$"}, holder.Options())
}
