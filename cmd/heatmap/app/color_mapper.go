package app

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined color scheme for transmittance visualization.
// - ClassicTheme: Blue for opaque, red for transparent
// - GrayscaleTheme: Monochrome visualization
// - JungleTheme: Dark green to yellow transition
// - ThermalTheme: Black to red to yellow to white
// - MarineTheme: Deep blue to cyan to white
type ColorTheme string

const (
	ClassicTheme   ColorTheme = "classic"
	GrayscaleTheme ColorTheme = "grayscale"
	JungleTheme    ColorTheme = "jungle"
	ThermalTheme   ColorTheme = "thermal"
	MarineTheme    ColorTheme = "marine"

	DefaultColorMapSize = 256 // Default number of colors in the map
)

var validThemes = map[ColorTheme]struct{}{
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

// ParseColorTheme returns the theme named by s
func ParseColorTheme(s string) (ColorTheme, error) {
	theme := ColorTheme(strings.ToLower(s))
	if _, ok := validThemes[theme]; !ok {
		return "", fmt.Errorf("invalid color theme: %s", s)
	}
	return theme, nil
}

// ColorMapper maps values to colors of a theme through a pre-computed palette
type ColorMapper struct {
	colorMap    []color.Color // Pre-computed colors
	themeName   ColorTheme
	size        int // Cache size
	boundsMin   float64
	boundsRange float64
}

// NewColorMapper creates a new color mapper with specified theme and bounds.
// Uses default size (256) for the color map.
func NewColorMapper(theme ColorTheme, bounds ValueBounds) *ColorMapper {
	return NewColorMapperWithSize(theme, bounds, DefaultColorMapSize)
}

// NewColorMapperWithSize creates a new color mapper with specified size.
// Size determines the number of pre-computed colors in the map.
func NewColorMapperWithSize(theme ColorTheme, bounds ValueBounds, size int) *ColorMapper {
	if size <= 1 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap:  make([]color.Color, size),
		themeName: theme,
		size:      size,
	}

	palette := getColorTheme(theme)
	for i := range cm.colorMap {
		cm.colorMap[i] = palette(float64(i) / float64(size-1)).Clamped()
	}
	cm.UpdateBounds(bounds)
	return cm
}

// UpdateBounds updates the value range mapped onto the palette
func (cm *ColorMapper) UpdateBounds(bounds ValueBounds) {
	cm.boundsMin = bounds.Min
	cm.boundsRange = bounds.Max - bounds.Min
}

// GetColor returns a color for the given value, NaN maps to the lowest color
func (cm *ColorMapper) GetColor(v float64) color.Color {
	if math.IsNaN(v) || cm.boundsRange <= 0 {
		return cm.colorMap[0]
	}

	index := int(math.Round((v - cm.boundsMin) / cm.boundsRange * float64(cm.size-1)))
	if index < 0 {
		return cm.colorMap[0]
	}
	if index >= cm.size {
		return cm.colorMap[cm.size-1]
	}
	return cm.colorMap[index]
}

// ThemeName returns the current color theme name
func (cm *ColorMapper) ThemeName() ColorTheme {
	return cm.themeName
}

// Size returns the color map size
func (cm *ColorMapper) Size() int {
	return cm.size
}

// gradient blends between evenly spaced keypoints in the CIE L*a*b* space
func gradient(keypoints ...colorful.Color) func(float64) colorful.Color {
	return func(v float64) colorful.Color {
		v = math.Max(0, math.Min(1, v))
		pos := v * float64(len(keypoints)-1)
		i := min(int(pos), len(keypoints)-2)
		return keypoints[i].BlendLab(keypoints[i+1], pos-float64(i))
	}
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Color theme implementations
func getColorTheme(theme ColorTheme) func(float64) colorful.Color {
	switch theme {
	case GrayscaleTheme:
		return func(v float64) colorful.Color {
			g := math.Pow(v, 0.7)
			return colorful.Color{R: g, G: g, B: g}
		}

	case JungleTheme:
		return func(v float64) colorful.Color {
			return colorful.Hsv(120-(v*60), 1.0, 0.3+(math.Pow(v, 0.6)*0.7))
		}

	case ThermalTheme:
		return gradient(hex("#000000"), hex("#ff0000"), hex("#ffff00"), hex("#ffffff"))

	case MarineTheme:
		return func(v float64) colorful.Color {
			return colorful.Hsv(240-(v*60), 1.0-(v*0.8), 0.3+(math.Pow(v, 0.6)*0.7))
		}

	default:
		return func(v float64) colorful.Color {
			return colorful.Hsv(240-(v*240), 0.9+(v*0.1), math.Pow(v, 0.7))
		}
	}
}
