package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 120.0
	fontSize       = 9.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
	labelPadding   = 10

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	// cells are scaled up until the spectrum area reaches these sizes
	defaultMinWidth  = 800
	defaultMinHeight = 400
	maxRowHeight     = 40
)

// BorderConfig defines the sizes of white space around the spectrum
type BorderConfig struct {
	Top    int // Space for frequency scale
	Left   int // Space for run scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for spectrum visualization
type RenderConfig struct {
	// Visual configuration
	FontSize      float64    // Font size in points
	ColorTheme    ColorTheme // Color scheme for values
	ColorMapSize  int        // Number of colors in gradient (0 for default)
	NoAnnotations bool       // Render the bare spectrum only

	// Smallest spectrum area, cells are scaled by whole pixels to reach it
	MinWidth  int
	MinHeight int

	// Info bar suffix, e.g. the session description
	Description string

	// Border configuration
	BorderConfig BorderConfig
}

// SpectrumRenderer handles the visualization of spectrum data, one row per run
type SpectrumRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
	font     *truetype.Font
}

// NewSpectrumRenderer creates a new spectrum renderer with the given configuration
func NewSpectrumRenderer(config RenderConfig) (*SpectrumRenderer, error) {
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.ColorTheme == "" {
		config.ColorTheme = ClassicTheme
	}
	if config.MinWidth == 0 {
		config.MinWidth = defaultMinWidth
	}
	if config.MinHeight == 0 {
		config.MinHeight = defaultMinHeight
	}

	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &SpectrumRenderer{config: config, font: parsedFont}, nil
}

// layout is the geometry of a rendered image
type layout struct {
	borders      BorderConfig
	area         image.Rectangle // spectrum area
	cellWidth    int
	rowHeight    int
	spectrumCols int
}

func (r *SpectrumRenderer) layout(spec *SpectrumData, ann *annotator) layout {
	l := layout{
		borders:   r.config.BorderConfig,
		cellWidth: max(1, r.config.MinWidth/max(1, spec.Width)),
		rowHeight: min(maxRowHeight, max(1, r.config.MinHeight/max(1, spec.Height))),
	}

	// widen the left border to fit the longest run label
	if ann != nil {
		for i := range spec.Rows {
			w := font.MeasureString(ann.fontFace, rowLabel(spec.Rows[i], i)).Round()
			l.borders.Left = max(l.borders.Left, w+2*labelPadding)
		}
	}

	l.spectrumCols = spec.Width * l.cellWidth
	l.area = image.Rect(
		l.borders.Left,
		l.borders.Top,
		l.borders.Left+l.spectrumCols,
		l.borders.Top+spec.Height*l.rowHeight,
	)
	return l
}

// Render creates an image of the spectrum data with annotations
func (r *SpectrumRenderer) Render(spec *SpectrumData) (*image.RGBA, error) {
	if spec.Empty() || spec.Width == 0 {
		return nil, fmt.Errorf("rendering spectrum: no data")
	}

	// Update or create color map
	bounds := spec.BoundsTracker.Current()
	if r.colorMap == nil {
		size := r.config.ColorMapSize
		if size == 0 {
			size = DefaultColorMapSize
		}
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, bounds, size)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	var ann *annotator
	if !r.config.NoAnnotations {
		ann = newAnnotator(r.font, r.config.FontSize)
		defer ann.Close()
	}

	l := r.layout(spec, ann)

	// Create image with space for borders
	fullWidth := l.area.Max.X + l.borders.Right
	fullHeight := l.area.Max.Y + l.borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if ann != nil {
		if err := ann.annotate(img, spec, l, bounds, r.config.Description); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderSpectrum(img, l, spec)

	return img, nil
}

// renderSpectrum draws the actual spectrum data using the color map. Rows with fewer
// samples than the widest row are stretched over the full width.
func (r *SpectrumRenderer) renderSpectrum(img *image.RGBA, l layout, spec *SpectrumData) {
	for y, row := range spec.Rows {
		if len(row.Values) == 0 {
			continue
		}
		top := l.area.Min.Y + y*l.rowHeight
		for x := 0; x < l.spectrumCols; x++ {
			i := x * len(row.Values) / l.spectrumCols
			c := r.colorMap.GetColor(row.Values[i])
			for dy := 0; dy < l.rowHeight; dy++ {
				img.Set(l.area.Min.X+x, top+dy, c)
			}
		}
	}
}

type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(f *truetype.Font, size float64) *annotator {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, spec *SpectrumData, l layout, bounds ValueBounds, description string) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawFrequencyScale(img, spec, l); err != nil {
		return fmt.Errorf("drawing frequency scale: %w", err)
	}
	if err := a.drawRunScale(img, spec, l); err != nil {
		return fmt.Errorf("drawing run scale: %w", err)
	}
	if err := a.drawInfoBar(img, spec, l, bounds, description); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, spec *SpectrumData, l layout) error {
	span := spec.FrequencyMax - spec.FrequencyMin
	if span <= 0 {
		return a.drawFrequencyLabel(img, l, l.area.Min.X+l.area.Dx()/2, spec.FrequencyMin)
	}

	freqStep := calculateNiceFrequencyStep(span, l.area.Dx())
	startFreq := math.Ceil(spec.FrequencyMin/freqStep) * freqStep

	for freq := startFreq; freq <= spec.FrequencyMax; freq += freqStep {
		xRatio := (freq - spec.FrequencyMin) / span
		x := l.area.Min.X + int(xRatio*float64(l.area.Dx()-1))
		if err := a.drawFrequencyLabel(img, l, x, freq); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawFrequencyLabel(img *image.RGBA, l layout, x int, freq float64) error {
	for y := l.borders.Top - tickMarkHeight; y < l.borders.Top; y++ {
		img.Set(x, y, color.Black)
	}

	label := formatFrequency(freq)
	width := font.MeasureString(a.fontFace, label)
	textY := l.borders.Top - tickMarkHeight - a.fontHeight()/2
	if _, err := a.context.DrawString(label, freetype.Pt(x-(width.Round()/2), textY)); err != nil {
		return fmt.Errorf("drawing frequency label: %w", err)
	}
	return nil
}

// drawRunScale labels rows, skipping rows when they are denser than the font allows
func (a *annotator) drawRunScale(img *image.RGBA, spec *SpectrumData, l layout) error {
	metrics := a.fontFace.Metrics()
	fontHeight := a.fontHeight()
	every := max(1, int(math.Ceil(float64(fontHeight+2)/float64(l.rowHeight))))

	for i := 0; i < len(spec.Rows); i += every {
		imgY := l.area.Min.Y + i*l.rowHeight + l.rowHeight/2

		// Draw tick mark
		for x := l.borders.Left - tickMarkHeight; x < l.borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		// Center text vertically relative to the tick mark position
		textY := imgY + fontHeight/2 - metrics.Descent.Round()

		label := rowLabel(spec.Rows[i], i)
		width := font.MeasureString(a.fontFace, label).Round()
		pt := freetype.Pt(l.borders.Left-tickMarkHeight-labelPadding/2-width, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing run label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, spec *SpectrumData, l layout, bounds ValueBounds, description string) error {
	var sb strings.Builder

	sb.WriteString(formatFrequencyRange(spec.FrequencyMin, spec.FrequencyMax))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("%s: %.3f - %.3f (mean %.3f)",
		formatQuantity(spec.Quantity), bounds.Min, bounds.Max, bounds.Mean))

	if spec.Width > 1 {
		freqPerSample := (spec.FrequencyMax - spec.FrequencyMin) / float64(spec.Width-1)
		sb.WriteString("; ")
		sb.WriteString(fmt.Sprintf("step %s", formatFrequency(freqPerSample)))
	}
	if description != "" {
		sb.WriteString("; ")
		sb.WriteString(description)
	}

	metrics := a.fontFace.Metrics()

	// Center text vertically in bottom border
	textY := img.Bounds().Max.Y - (l.borders.Bottom-a.fontHeight())/2 - metrics.Descent.Round()

	pt := freetype.Pt(l.borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

// Helper functions

// calculateNiceFrequencyStep picks a 1-2-5 step that spaces labels about
// pixelsPerLabel apart
func calculateNiceFrequencyStep(span float64, width int) float64 {
	desiredSteps := max(1, float64(width)/pixelsPerLabel)
	targetStep := span / desiredSteps

	magnitude := math.Pow(10, math.Floor(math.Log10(targetStep)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= targetStep {
			return step
		}
	}
	return 10 * magnitude
}

func formatFrequency(freq float64) string {
	return humanize.SIWithDigits(freq, 1, "Hz")
}

func formatFrequencyRange(min, max float64) string {
	return fmt.Sprintf("Freq: %s - %s", formatFrequency(min), formatFrequency(max))
}

func formatQuantity(q Quantity) string {
	s := string(q)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// rowLabel names a row by its run label, its parameter or its position
func rowLabel(row Row, i int) string {
	switch {
	case row.Label != "":
		return row.Label
	case row.Parameter != nil:
		return humanize.Ftoa(*row.Parameter)
	default:
		return fmt.Sprintf("#%d", i+1)
	}
}
