package tmm

import (
	"math"
	"math/cmplx"
)

// realTolerance is the largest imaginary residue, relative to machine epsilon,
// that is still considered to be a real number.
const realTolerance = 100 * 2.220446049250313e-16

// Refract propagates the incidence angle theta0 (radians) through the stack using
// Snell's law. The returned slice has the same length as index and angle[0] == theta0.
//
// While the Snell argument stays within [-1, 1] all angles are real. Past the critical
// angle the argument leaves that range and the angle becomes complex, which the
// Fresnel and phase formulas carry as an evanescent wave.
func Refract(index []float64, theta0 float64) []complex128 {
	if len(index) == 0 {
		return nil
	}

	thetas := make([]complex128, len(index))
	thetas[0] = complex(theta0, 0)

	for i := 1; i < len(index); i++ {
		arg := complex(index[i-1]/index[i], 0) * cmplx.Sin(thetas[i-1])
		thetas[i] = forwardAngle(index[i], asin(arg))
	}

	return thetas
}

// forwardAngle picks the branch of theta whose wave travels (or decays) away from the
// previous interface. Both theta and pi-theta satisfy Snell's law.
func forwardAngle(n float64, theta complex128) complex128 {
	if imag(theta) == 0 {
		return theta
	}

	nc := complex(n, 0) * cmplx.Cos(theta)

	var forward bool
	if math.Abs(imag(nc)) > realTolerance {
		forward = imag(nc) > 0
	} else {
		forward = real(nc) > 0
	}

	if !forward {
		return math.Pi - theta
	}
	return theta
}

func asin(x complex128) complex128 {
	if math.Abs(imag(x)) > realTolerance {
		return cmplx.Asin(x)
	}

	re := real(x)
	if re < -1 || re > 1 {
		return cmplx.Asin(complex(re, 0))
	}
	return complex(math.Asin(re), 0)
}
