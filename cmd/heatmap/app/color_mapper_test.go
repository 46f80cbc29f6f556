package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorTheme(t *testing.T) {
	for theme := range validThemes {
		got, err := ParseColorTheme(string(theme))
		require.NoError(t, err)
		assert.Equal(t, theme, got)
	}

	got, err := ParseColorTheme("THERMAL")
	require.NoError(t, err)
	assert.Equal(t, ThermalTheme, got)

	_, err = ParseColorTheme("rainbow")
	assert.Error(t, err)
}

func TestColorMapper_GetColor(t *testing.T) {
	cm := NewColorMapperWithSize(GrayscaleTheme, ValueBounds{Min: 0, Max: 1}, 11)
	assert.Equal(t, 11, cm.Size())
	assert.Equal(t, GrayscaleTheme, cm.ThemeName())

	gray := func(v float64) uint32 {
		r, _, _, _ := cm.GetColor(v).RGBA()
		return r
	}

	assert.Zero(t, gray(0))
	assert.Equal(t, uint32(0xffff), gray(1))

	// out of range values clamp to the palette ends
	assert.Equal(t, gray(0), gray(-5))
	assert.Equal(t, gray(1), gray(5))
	assert.Equal(t, gray(0), gray(math.NaN()))

	// brighter for larger values
	assert.Less(t, gray(0.2), gray(0.5))
	assert.Less(t, gray(0.5), gray(0.8))
}

func TestColorMapper_UpdateBounds(t *testing.T) {
	cm := NewColorMapper(GrayscaleTheme, ValueBounds{Min: 0, Max: 1})
	before := cm.GetColor(0.5)

	cm.UpdateBounds(ValueBounds{Min: 0.5, Max: 1})
	assert.Equal(t, cm.GetColor(0), cm.GetColor(0.5))
	assert.NotEqual(t, before, cm.GetColor(0.5))

	// degenerate bounds map everything to the lowest color
	cm.UpdateBounds(ValueBounds{Min: 0.5, Max: 0.5})
	assert.Equal(t, cm.GetColor(-1), cm.GetColor(0.7))
}

func TestColorMapper_Themes(t *testing.T) {
	for theme := range validThemes {
		t.Run(string(theme), func(t *testing.T) {
			cm := NewColorMapper(theme, ValueBounds{Min: 0, Max: 1})
			assert.NotEqual(t, cm.GetColor(0), cm.GetColor(1))

			for _, c := range cm.colorMap {
				_, _, _, a := c.RGBA()
				assert.Equal(t, uint32(0xffff), a)
			}
		})
	}
}
