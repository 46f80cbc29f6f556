package app

import (
	"math"

	"github.com/roman-kulish/mmwave-stack/internal/spectrum"
)

// Row is the spectrum of a single run, one value per frequency sample
type Row struct {
	Label     string
	Parameter *float64
	Values    []float64
}

type SpectrumData struct {
	Width, Height              int
	FrequencyMin, FrequencyMax float64
	Quantity                   Quantity
	BoundsTracker              *Bounds
	Rows                       []Row
}

func NewSpectrumData(q Quantity, b *Bounds) *SpectrumData {
	return &SpectrumData{
		Width:         0,
		Height:        0,
		FrequencyMin:  math.MaxFloat64,
		FrequencyMax:  0,
		Quantity:      q,
		BoundsTracker: b,
		Rows:          make([]Row, 0),
	}
}

func (s *SpectrumData) Update(span *spectrum.SpectralSpan) {
	s.Width = max(s.Width, len(span.Samples))
	s.Height++

	s.FrequencyMin = min(s.FrequencyMin, span.FrequencyStart)
	s.FrequencyMax = max(s.FrequencyMax, span.FrequencyEnd)

	row := Row{Values: make([]float64, len(span.Samples))}
	if span.Run != nil {
		row.Label = span.Run.Label
		row.Parameter = span.Run.Parameter
	}
	for i, sample := range span.Samples {
		row.Values[i] = s.Quantity.Of(sample)
		s.BoundsTracker.Update(row.Values[i])
	}
	s.Rows = append(s.Rows, row)
}

// Empty reports whether no span has been read
func (s *SpectrumData) Empty() bool {
	return s.Height == 0
}
