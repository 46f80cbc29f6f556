package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/roman-kulish/mmwave-stack/internal/spectrum"
)

const (
	QuantityTransmittance Quantity = "transmittance"
	QuantityReflectance   Quantity = "reflectance"

	defaultMinValue = 0.0
	defaultMaxValue = 1.0

	// smallest value range spread over the palette
	minimumRange = 0.01
)

// Quantity selects which power fraction of a sample is rendered
type Quantity string

var validQuantities = map[Quantity]struct{}{
	QuantityTransmittance: {},
	QuantityReflectance:   {},
}

// ParseQuantity returns the quantity named by s
func ParseQuantity(s string) (Quantity, error) {
	q := Quantity(strings.ToLower(s))
	if _, ok := validQuantities[q]; !ok {
		return "", fmt.Errorf("invalid quantity: %s", s)
	}
	return q, nil
}

// Of returns the quantity of a sample
func (q Quantity) Of(p spectrum.SpectralPoint) float64 {
	if q == QuantityReflectance {
		return p.Reflectance
	}
	return p.Transmittance
}

// ValueBounds represents the range of values mapped onto the colour palette
type ValueBounds struct {
	Min  float64
	Max  float64
	Mean float64
}

// Bounds tracks the range of rendered values. Fixed ends, when set, take precedence
// over the observed ones.
type Bounds struct {
	fixedMin, fixedMax *float64

	min, max, sum float64
	count         int
}

// NewBounds creates a new bounds tracker, either end may be nil to follow the data
func NewBounds(fixedMin, fixedMax *float64) *Bounds {
	return &Bounds{
		fixedMin: fixedMin,
		fixedMax: fixedMax,
		min:      math.Inf(1),
		max:      math.Inf(-1),
	}
}

// Update adds a value to the tracker, NaNs are ignored
func (b *Bounds) Update(v float64) {
	if math.IsNaN(v) {
		return
	}
	b.min = min(b.min, v)
	b.max = max(b.max, v)
	b.sum += v
	b.count++
}

// Current returns the bounds of the values seen so far
func (b *Bounds) Current() ValueBounds {
	if b.count == 0 {
		vb := ValueBounds{Min: defaultMinValue, Max: defaultMaxValue, Mean: (defaultMinValue + defaultMaxValue) / 2}
		b.applyFixed(&vb)
		return vb
	}

	vb := ValueBounds{Min: b.min, Max: b.max, Mean: b.sum / float64(b.count)}
	if vb.Max-vb.Min < minimumRange {
		center := (vb.Max + vb.Min) / 2
		vb.Min = center - minimumRange/2
		vb.Max = center + minimumRange/2
	}
	b.applyFixed(&vb)
	return vb
}

func (b *Bounds) applyFixed(vb *ValueBounds) {
	if b.fixedMin != nil {
		vb.Min = *b.fixedMin
	}
	if b.fixedMax != nil {
		vb.Max = *b.fixedMax
	}
}
