package tmm

import (
	"math"
	"math/cmplx"
)

// SpeedOfLight in vacuum, m/s. The rounded value is the one the published spectra
// and the Halpern fits were produced with.
const SpeedOfLight = 3e8

// Wavenumber returns the complex wavenumber in every layer at the given frequency (Hz).
//
// The lossy form folds the propagation angle and the loss tangent in:
//
//	k = 2*pi*f*n*cos(theta)/c * sqrt(1 + j*tand)
//
// while the lossless form is the bare k = 2*pi*f*n/c.
func Wavenumber(freq float64, index, tand []float64, theta []complex128, lossy bool) []complex128 {
	k := make([]complex128, len(index))
	k0 := 2 * math.Pi * freq / SpeedOfLight

	for i, n := range index {
		if !lossy {
			k[i] = complex(k0*n, 0)
			continue
		}
		k[i] = complex(k0*n, 0) * cmplx.Cos(theta[i]) * cmplx.Sqrt(complex(1, tand[i]))
	}

	return k
}

// Phase returns the phase accumulated across each layer, delta = k*d.
//
// Source and terminator have infinite thickness. Their phase is kept as a signed
// infinity in every non-zero component of k instead of the NaN a plain complex
// product would give (0*Inf in the cross terms).
func Phase(k []complex128, thickness []float64) []complex128 {
	delta := make([]complex128, len(k))
	for i := range k {
		delta[i] = complex(scale(real(k[i]), thickness[i]), scale(imag(k[i]), thickness[i]))
	}
	return delta
}

func scale(x, d float64) float64 {
	if x == 0 {
		return 0
	}
	return x * d
}
