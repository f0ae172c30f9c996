package layout

// Default page geometry is A4 in millimetres.
const (
	DefaultPageWidth     = 210.0
	DefaultPageHeight    = 297.0
	DefaultMargin        = 20.0
	DefaultBottomReserve = 40.0
	DefaultFooterText    = "Thank you for your business!"
	DefaultTitle         = "INVOICE"
	DefaultCurrency      = "CA$"
)

type WatermarkOptions struct {
	// OffsetX and OffsetY place the anchor relative to the bottom-right
	// corner of the page.
	OffsetX float64 `json:"offsetX" mapstructure:"offsetX"`
	OffsetY float64 `json:"offsetY" mapstructure:"offsetY"`
	Angle   float64 `json:"angle" mapstructure:"angle"`
	Size    float64 `json:"size" mapstructure:"size"`
	Gray    uint8   `json:"gray" mapstructure:"gray"`
}

// Options controls page geometry and the fixed texts of the document.
type Options struct {
	PageWidth      float64
	PageHeight     float64
	Margin         float64
	BottomReserve  float64
	Title          string
	FooterText     string
	CurrencyPrefix string
	Watermark      WatermarkOptions
	Measurer       Measurer
}

func DefaultWatermark() WatermarkOptions {
	return WatermarkOptions{OffsetX: 40, OffsetY: 30, Angle: 45, Size: 60, Gray: 245}
}

func DefaultOptions() Options {
	return Options{
		PageWidth:      DefaultPageWidth,
		PageHeight:     DefaultPageHeight,
		Margin:         DefaultMargin,
		BottomReserve:  DefaultBottomReserve,
		Title:          DefaultTitle,
		FooterText:     DefaultFooterText,
		CurrencyPrefix: DefaultCurrency,
		Watermark:      DefaultWatermark(),
		Measurer:       ApproxMeasurer{},
	}
}

// withDefaults fills every zero field from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PageWidth <= 0 {
		o.PageWidth = def.PageWidth
	}
	if o.PageHeight <= 0 {
		o.PageHeight = def.PageHeight
	}
	if o.Margin <= 0 {
		o.Margin = def.Margin
	}
	if o.BottomReserve <= 0 {
		o.BottomReserve = def.BottomReserve
	}
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.FooterText == "" {
		o.FooterText = def.FooterText
	}
	if o.CurrencyPrefix == "" {
		o.CurrencyPrefix = def.CurrencyPrefix
	}
	if o.Watermark.OffsetX <= 0 {
		o.Watermark.OffsetX = def.Watermark.OffsetX
	}
	if o.Watermark.OffsetY <= 0 {
		o.Watermark.OffsetY = def.Watermark.OffsetY
	}
	if o.Watermark.Angle == 0 {
		o.Watermark.Angle = def.Watermark.Angle
	}
	if o.Watermark.Size <= 0 {
		o.Watermark.Size = def.Watermark.Size
	}
	if o.Watermark.Gray == 0 {
		o.Watermark.Gray = def.Watermark.Gray
	}
	if o.Measurer == nil {
		o.Measurer = def.Measurer
	}
	return o
}
