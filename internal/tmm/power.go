package tmm

import (
	"math/cmplx"
)

// Reflectance returns the reflected power fraction |r|^2
func Reflectance(r complex128) float64 {
	a := cmplx.Abs(r)
	return a * a
}

// Transmittance returns the transmitted power fraction. The index/cosine ratio
// accounts for the different impedance and beam cross-section of the source and
// terminator media. An evanescent terminator carries no power.
func Transmittance(t complex128, indexI, indexF float64, thetaI, thetaF complex128) float64 {
	a := cmplx.Abs(t)

	in := real(complex(indexI, 0) * cmplx.Cos(thetaI))
	out := real(complex(indexF, 0) * cmplx.Cos(thetaF))
	return a * a * (out / in)
}
