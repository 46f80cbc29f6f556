package model

import (
	"log/slog"

	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

const (
	DefaultLowFrequency  = 500e6 // Hz
	DefaultHighFrequency = 500e9 // Hz
	DefaultSampleCount   = 1000
)

// Option configures a Model
type Option func(*Model)

// WithFrequencyRange sets the frequencies the model is evaluated at: n evenly spaced
// samples from f1 to f2 inclusive. f1 may be above f2, in which case the sweep runs
// from high to low frequency. When f1 == f2 the sweep has exactly one sample.
func WithFrequencyRange(f1, f2 float64, n int) Option {
	return func(m *Model) {
		m.freq1 = f1
		m.freq2 = f2
		m.samples = n
	}
}

// WithIncidenceAngle sets the angle of incidence on the source side, in radians from
// normal. Defaults to 0.
func WithIncidenceAngle(theta float64) Option {
	return func(m *Model) {
		m.angle = theta
	}
}

// WithPolarization selects the polarization of the incident wave. Defaults to 's'.
func WithPolarization(pol tmm.Polarization) Option {
	return func(m *Model) {
		m.polarization = pol
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}
