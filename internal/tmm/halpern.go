package tmm

import "math"

// HalpernReferenceFrequency normalises the frequency in the Halpern absorption fit, Hz
const HalpernReferenceFrequency = 30e9

// Halpern holds the power-law absorption fit alpha = 2*A*(f/30GHz)^B of a material
// together with the real part of its refractive index N.
type Halpern struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	N float64 `json:"n"`
}

// LossTangent returns the equivalent loss tangent at freq (Hz)
func (h Halpern) LossTangent(freq float64) float64 {
	return AlphaToLossTangent(freq, h.A, h.B, h.N)
}

// AlphaToImagIndex converts the Halpern coefficients to the imaginary part of the
// refractive index (extinction coefficient) at freq (Hz).
//
// Born & Wolf, Principles of Optics, ch. 13.1: kappa = c*alpha/(4*pi*n*f), with
// alpha in 1/cm, hence the factor of 100.
func AlphaToImagIndex(freq, a, b, n float64) float64 {
	if a == 0 {
		return 0
	}

	alpha := 2 * a * math.Pow(freq/HalpernReferenceFrequency, b)
	return (100 * SpeedOfLight * alpha) / (4 * math.Pi * n * freq)
}

// AlphaToLossTangent converts the Halpern coefficients to a loss tangent at freq (Hz)
// through the complex permittivity (n + j*kappa)^2 = (n^2 - kappa^2) + j*2*n*kappa.
func AlphaToLossTangent(freq, a, b, n float64) float64 {
	if a == 0 {
		return 0
	}

	kappa := AlphaToImagIndex(freq, a, b, n)
	return (2 * n * kappa) / (n*n - kappa*kappa)
}

// ReplaceLossTangents returns a copy of tand with the entries of every Halpern layer
// replaced by their loss tangent at freq. tand itself is never modified.
func ReplaceLossTangents(freq float64, tand []float64, halpern map[int]Halpern) []float64 {
	out := make([]float64, len(tand))
	copy(out, tand)

	for i, h := range halpern {
		out[i] = h.LossTangent(freq)
	}
	return out
}
