package model

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyBand is returned when no sample of a result falls inside a band
var ErrEmptyBand = errors.New("no samples in band")

// Band is a closed frequency interval, Hz
type Band struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// BandAround returns the band center*(1-fraction) .. center*(1+fraction), e.g. the
// +/-15% band of a detector channel.
func BandAround(center, fraction float64) Band {
	return Band{Low: center * (1 - fraction), High: center * (1 + fraction)}
}

// Contains reports whether freq lies inside the band
func (b Band) Contains(freq float64) bool {
	return freq >= b.Low && freq <= b.High
}

// Center returns the middle of the band
func (b Band) Center() float64 {
	return (b.Low + b.High) / 2
}

func (b Band) String() string {
	return fmt.Sprintf("%s - %s", humanize.SIWithDigits(b.Low, 2, "Hz"), humanize.SIWithDigits(b.High, 2, "Hz"))
}

// Validate checks that the band is a non-empty positive interval
func (b Band) Validate() error {
	if b.Low <= 0 || b.High <= 0 {
		return fmt.Errorf("model.Band: frequencies must be positive: %g, %g given", b.Low, b.High)
	}
	if b.Low > b.High {
		return fmt.Errorf("model.Band: low frequency must not exceed high frequency: %g > %g", b.Low, b.High)
	}
	return nil
}

// BandStats summarises transmittance and reflectance over a band
type BandStats struct {
	Band    Band `json:"band"`
	Samples int  `json:"samples"`

	MeanTransmittance   float64 `json:"meanTransmittance"`
	StdDevTransmittance float64 `json:"stdDevTransmittance"`
	MinTransmittance    float64 `json:"minTransmittance"`
	MaxTransmittance    float64 `json:"maxTransmittance"`
	MeanReflectance     float64 `json:"meanReflectance"`
}

// Band computes the statistics of every sample of r inside b. The standard deviation
// is the population one.
func (r *Result) Band(b Band) (BandStats, error) {
	if r.Result == nil {
		return BandStats{}, fmt.Errorf("%w: %s", ErrEmptyBand, b)
	}

	var trans, refl []float64
	for i, f := range r.Frequency {
		if b.Contains(f) {
			trans = append(trans, r.Transmittance[i])
			refl = append(refl, r.Reflectance[i])
		}
	}
	if len(trans) == 0 {
		return BandStats{}, fmt.Errorf("%w: %s", ErrEmptyBand, b)
	}

	mean, std := stat.PopMeanStdDev(trans, nil)
	return BandStats{
		Band:                b,
		Samples:             len(trans),
		MeanTransmittance:   mean,
		StdDevTransmittance: std,
		MinTransmittance:    floats.Min(trans),
		MaxTransmittance:    floats.Max(trans),
		MeanReflectance:     stat.Mean(refl, nil),
	}, nil
}
