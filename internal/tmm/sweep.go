package tmm

import (
	"errors"
	"fmt"
	"math"
)

// Params are the calculation-ready simulation parameters. Index, LossTangent and
// Thickness are parallel slices ordered from source (0) to terminator (N-1).
type Params struct {
	Index        []float64
	LossTangent  []float64
	Thickness    []float64   // metres, +Inf for source and terminator
	Frequencies  []float64   // Hz
	Angle        float64     // incidence angle in radians
	Polarization Polarization

	// Halpern maps a layer position to its frequency-dependent absorption fit,
	// overriding that layer's static loss tangent.
	Halpern map[int]Halpern
}

// Result holds the swept power spectra; all slices share the length of the frequency sweep
type Result struct {
	Frequency     []float64 `json:"frequency"`
	Transmittance []float64 `json:"transmittance"`
	Reflectance   []float64 `json:"reflectance"`
}

// Len returns the number of frequency samples
func (r *Result) Len() int {
	return len(r.Frequency)
}

// IsGrazing reports whether theta (radians) is numerically indistinguishable from pi/2
func IsGrazing(theta float64) bool {
	const (
		rtol = 1e-5
		atol = 1e-8
	)
	return math.Abs(theta-math.Pi/2) <= atol+rtol*math.Pi/2
}

// Validate checks the structure of the parameters before any computation
func (p *Params) Validate() error {
	n := len(p.Index)

	var errs []error
	if n < 3 {
		errs = append(errs, fmt.Errorf("%w: need a source, at least one material and a terminator: %d layers given", ErrInvalidStack, n))
	}
	if len(p.LossTangent) != n || len(p.Thickness) != n {
		errs = append(errs, fmt.Errorf("%w: %d indices, %d loss tangents, %d thicknesses",
			ErrInvalidStack, n, len(p.LossTangent), len(p.Thickness)))
	}
	for i, idx := range p.Index {
		if idx <= 0 || math.IsNaN(idx) || math.IsInf(idx, 0) {
			errs = append(errs, fmt.Errorf("%w: refractive index of layer %d must be positive and finite: %g", ErrInvalidStack, i, idx))
		}
	}
	for pos := range p.Halpern {
		if pos <= 0 || pos >= n-1 {
			errs = append(errs, fmt.Errorf("%w: Halpern layer %d is not a material layer", ErrInvalidStack, pos))
		}
	}
	if len(p.Frequencies) == 0 {
		errs = append(errs, fmt.Errorf("%w: no frequencies", ErrInvalidSweep))
	}
	if IsGrazing(p.Angle) {
		errs = append(errs, fmt.Errorf("%w: %g rad", ErrGrazingIncidence, p.Angle))
	}
	if err := p.Polarization.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Evaluate computes transmittance and reflectance at a single frequency. theta must be
// the result of Refract for p. Evaluate does not modify p and keeps no state between
// calls, so distinct frequencies may be evaluated in any order.
func Evaluate(p *Params, theta []complex128, freq float64) (transmittance, reflectance float64, err error) {
	tand := p.LossTangent
	if len(p.Halpern) > 0 {
		tand = ReplaceLossTangents(freq, p.LossTangent, p.Halpern)
	}

	k := Wavenumber(freq, p.Index, tand, theta, true)
	delta := Phase(k, p.Thickness)

	r, t, err := Amplitudes(p.Index, delta, theta, p.Polarization)
	if err != nil {
		return 0, 0, err
	}

	last := len(p.Index) - 1
	transmittance = Transmittance(t, p.Index[0], p.Index[last], theta[0], theta[last])
	reflectance = Reflectance(r)
	return transmittance, reflectance, nil
}

// Run sweeps the calculation over p.Frequencies in order. Angles only depend on the
// static index profile and are computed once.
func Run(p *Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	theta := Refract(p.Index, p.Angle)

	res := Result{
		Frequency:     make([]float64, len(p.Frequencies)),
		Transmittance: make([]float64, len(p.Frequencies)),
		Reflectance:   make([]float64, len(p.Frequencies)),
	}
	copy(res.Frequency, p.Frequencies)

	for i, f := range p.Frequencies {
		t, r, err := Evaluate(p, theta, f)
		if err != nil {
			return nil, fmt.Errorf("evaluating %g Hz: %w", f, err)
		}
		res.Transmittance[i] = t
		res.Reflectance[i] = r
	}

	return &res, nil
}
