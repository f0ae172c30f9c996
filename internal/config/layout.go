package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/invoicekit/internal/layout"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LayoutFile mirrors the "layout" key of layout.yml.
type LayoutFile struct {
	Page struct {
		Width  float64 `mapstructure:"width"`
		Height float64 `mapstructure:"height"`
		Margin float64 `mapstructure:"margin"`
	} `mapstructure:"page"`
	BottomReserve float64                 `mapstructure:"bottomReserve"`
	Title         string                  `mapstructure:"title"`
	FooterText    string                  `mapstructure:"footerText"`
	Watermark     layout.WatermarkOptions `mapstructure:"watermark"`
}

// Options converts the file into engine options. Zero values fall back to
// the engine defaults.
func (f LayoutFile) Options(currencyPrefix string) layout.Options {
	return layout.Options{
		PageWidth:      f.Page.Width,
		PageHeight:     f.Page.Height,
		Margin:         f.Page.Margin,
		BottomReserve:  f.BottomReserve,
		Title:          f.Title,
		FooterText:     f.FooterText,
		CurrencyPrefix: currencyPrefix,
		Watermark:      f.Watermark,
	}
}

type LayoutConfigHolder struct {
	current  atomic.Value // holds LayoutFile
	currency string
}

// NewLayoutConfigHolder reads layout.yml and watches it for changes. A
// missing file leaves the engine defaults in place.
func NewLayoutConfigHolder(cfg Config, log *zap.Logger) (*LayoutConfigHolder, error) {
	log = log.Named("layout-config")
	v := viper.New()

	if path := strings.TrimSpace(cfg.LayoutConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("layout")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/invoicekit")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INVOICEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &LayoutConfigHolder{currency: cfg.CurrencyPrefix}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		holder.current.Store(LayoutFile{})
		return holder, nil
	}

	file, err := readLayoutFile(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(file)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readLayoutFile(v)
		if err != nil {
			log.Warn("layout config reload ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("layout config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticLayoutConfigHolder serves a fixed layout file.
func NewStaticLayoutConfigHolder(file LayoutFile, currencyPrefix string) *LayoutConfigHolder {
	holder := &LayoutConfigHolder{currency: currencyPrefix}
	holder.current.Store(file)
	return holder
}

func (h *LayoutConfigHolder) Get() LayoutFile {
	return h.current.Load().(LayoutFile)
}

// Options returns the current layout options.
func (h *LayoutConfigHolder) Options() layout.Options {
	return h.Get().Options(h.currency)
}

func readLayoutFile(v *viper.Viper) (LayoutFile, error) {
	var file LayoutFile
	if err := v.UnmarshalKey("layout", &file); err != nil {
		return LayoutFile{}, err
	}
	if err := validateLayoutFile(file); err != nil {
		return LayoutFile{}, err
	}
	return file, nil
}

func validateLayoutFile(f LayoutFile) error {
	if f.Page.Width < 0 || f.Page.Height < 0 || f.Page.Margin < 0 {
		return errors.New("layout.page dimensions cannot be negative")
	}
	if f.BottomReserve < 0 {
		return errors.New("layout.bottomReserve cannot be negative")
	}

	// Zero values are replaced by engine defaults, so check what the
	// engine will actually use.
	width := orDefault(f.Page.Width, layout.DefaultPageWidth)
	height := orDefault(f.Page.Height, layout.DefaultPageHeight)
	margin := orDefault(f.Page.Margin, layout.DefaultMargin)
	reserve := orDefault(f.BottomReserve, layout.DefaultBottomReserve)

	if margin*2 >= width {
		return errors.New("layout.page.margin leaves no content width")
	}
	if margin+reserve >= height {
		return errors.New("layout.page.margin and layout.bottomReserve leave no content height")
	}
	return nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
