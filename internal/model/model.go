package model

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

var (
	// ErrInvalidSampleCount is returned when a frequency range asks for no samples
	ErrInvalidSampleCount = fmt.Errorf("%w: number of samples must be positive", tmm.ErrInvalidSweep)

	// ErrInvalidFrequency is returned when a frequency bound is not a positive finite number
	ErrInvalidFrequency = fmt.Errorf("%w: frequencies must be positive and finite", tmm.ErrInvalidSweep)

	// ErrNotImplemented is returned by features which are not available yet
	ErrNotImplemented = errors.New("not implemented")
)

// Model is a layer stack assembled for calculation together with the sweep to run
// over it. A Model is immutable once built and safe to Run any number of times.
type Model struct {
	stack  layer.Stack
	params tmm.Params

	freq1, freq2 float64
	samples      int
	angle        float64
	polarization tmm.Polarization

	logger *slog.Logger
}

// New assembles a model from a stack ordered from source to terminator.
func New(stack layer.Stack, options ...Option) (*Model, error) {
	m := Model{
		freq1:        DefaultLowFrequency,
		freq2:        DefaultHighFrequency,
		samples:      DefaultSampleCount,
		polarization: tmm.PolarizationS,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&m)
	}

	resolved, err := stack.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving stack: %w", err)
	}
	m.stack = resolved

	freqs, err := FrequencyRange(m.freq1, m.freq2, m.samples)
	if err != nil {
		return nil, err
	}

	index, tand, thick := resolved.Arrays()
	m.params = tmm.Params{
		Index:        index,
		LossTangent:  tand,
		Thickness:    thick,
		Frequencies:  freqs,
		Angle:        m.angle,
		Polarization: m.polarization,
		Halpern:      resolved.Halpern(),
	}

	if err = m.params.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// FrequencyRange returns n evenly spaced frequencies from f1 to f2 inclusive.
// f1 == f2 always yields a single frequency.
func FrequencyRange(f1, f2 float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d given", ErrInvalidSampleCount, n)
	}
	for _, f := range []float64{f1, f2} {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %g given", ErrInvalidFrequency, f)
		}
	}

	if f1 == f2 || n == 1 {
		return []float64{f1}, nil
	}
	freqs := floats.Span(make([]float64, n), f1, f2)
	// the last step may round past f2
	freqs[n-1] = f2
	return freqs, nil
}

// Stack returns the resolved layer stack
func (m *Model) Stack() layer.Stack {
	return slices.Clone(m.stack)
}

// Frequencies returns the frequency sweep, Hz
func (m *Model) Frequencies() []float64 {
	return slices.Clone(m.params.Frequencies)
}

// LowFrequency returns the lower bound of the frequency sweep, Hz
func (m *Model) LowFrequency() float64 {
	return min(m.freq1, m.freq2)
}

// HighFrequency returns the upper bound of the frequency sweep, Hz
func (m *Model) HighFrequency() float64 {
	return max(m.freq1, m.freq2)
}

// IncidenceAngle returns the angle of incidence in radians
func (m *Model) IncidenceAngle() float64 {
	return m.angle
}

// Polarization returns the polarization of the incident wave
func (m *Model) Polarization() tmm.Polarization {
	return m.polarization
}

// AngleSweep would run the model over a range of incidence angles. Angles close to
// pi/2 are not handled well enough yet, so it is not available.
func (m *Model) AngleSweep(theta1, theta2 float64, n int) ([]*Result, error) {
	return nil, fmt.Errorf("sweeping %g to %g rad: %w", theta1, theta2, ErrNotImplemented)
}

// Run calculates transmittance and reflectance over the frequency sweep
func (m *Model) Run() (*Result, error) {
	m.logger.Debug("running model",
		slog.Int("layers", len(m.stack)),
		slog.Int("samples", len(m.params.Frequencies)),
		slog.String("lowFreq", humanize.SIWithDigits(m.LowFrequency(), 2, "Hz")),
		slog.String("highFreq", humanize.SIWithDigits(m.HighFrequency(), 2, "Hz")),
		slog.String("polarization", m.polarization.String()),
		slog.Float64("angle", m.angle))

	res, err := tmm.Run(&m.params)
	if err != nil {
		return nil, fmt.Errorf("running model: %w", err)
	}

	return &Result{
		RunID:         uuid.New(),
		Structure:     m.stack.String(),
		Stack:         m.Stack(),
		LowFrequency:  m.LowFrequency(),
		HighFrequency: m.HighFrequency(),
		Angle:         m.angle,
		Polarization:  m.polarization,
		Index:         slices.Clone(m.params.Index),
		LossTangent:   slices.Clone(m.params.LossTangent),
		Thickness:     slices.Clone(m.params.Thickness),
		Halpern:       m.stack.Halpern(),
		Result:        res,
	}, nil
}
