package tmm

import (
	"fmt"
	"math/cmplx"
)

// Interfaces holds the Fresnel amplitudes of every interface in a stack.
// R[i] and T[i] belong to the interface between layers i and i+1.
type Interfaces struct {
	R []complex128
	T []complex128
}

// NewInterfaces computes the reflection and transmission amplitudes of the N-1
// interfaces of a stack of N layers.
func NewInterfaces(index []float64, theta []complex128, pol Polarization) (Interfaces, error) {
	if err := pol.Validate(); err != nil {
		return Interfaces{}, err
	}
	if len(index) < 2 || len(theta) != len(index) {
		return Interfaces{}, fmt.Errorf("%w: %d indices and %d angles", ErrInvalidStack, len(index), len(theta))
	}

	ifc := Interfaces{
		R: make([]complex128, len(index)-1),
		T: make([]complex128, len(index)-1),
	}

	for i := 0; i < len(index)-1; i++ {
		var err error
		if ifc.R[i], err = ReflectionAmplitude(index[i], index[i+1], theta[i], theta[i+1], pol); err != nil {
			return Interfaces{}, err
		}
		if ifc.T[i], err = TransmissionAmplitude(index[i], index[i+1], theta[i], theta[i+1], pol); err != nil {
			return Interfaces{}, err
		}
	}

	return ifc, nil
}

// LayerMatrices returns the characteristic matrix of every interior layer,
// first element for layer 1, last for layer N-2:
//
//	M_i = 1/t(i,i+1) * diag(exp(-j*delta_i), exp(j*delta_i)) * [[1, r(i,i+1)], [r(i,i+1), 1]]
func LayerMatrices(ifc Interfaces, delta []complex128) []Matrix2 {
	n := len(delta)
	if n < 3 {
		return nil
	}

	m := make([]Matrix2, 0, n-2)
	for i := 1; i < n-1; i++ {
		prop := NewMatrix2(cmplx.Exp(-1i*delta[i]), 0, 0, cmplx.Exp(1i*delta[i]))
		refl := NewMatrix2(1, ifc.R[i], ifc.R[i], 1)

		m = append(m, prop.Mul(refl).Scale(1/ifc.T[i]))
	}

	return m
}

// TransferMatrix multiplies the coupling matrix of the first interface by every
// interior layer matrix, strictly in stack order from source to terminator.
func TransferMatrix(ifc Interfaces, delta []complex128) Matrix2 {
	m := Identity()
	for _, lm := range LayerMatrices(ifc, delta) {
		m = m.Mul(lm)
	}

	coupling := NewMatrix2(1, ifc.R[0], ifc.R[0], 1).Scale(1 / ifc.T[0])
	return coupling.Mul(m)
}

// Amplitudes returns the net reflection and transmission amplitudes of the stack
func Amplitudes(index []float64, delta, theta []complex128, pol Polarization) (r, t complex128, err error) {
	if len(delta) != len(index) {
		return 0, 0, fmt.Errorf("%w: %d indices and %d phases", ErrInvalidStack, len(index), len(delta))
	}

	ifc, err := NewInterfaces(index, theta, pol)
	if err != nil {
		return 0, 0, err
	}

	m := TransferMatrix(ifc, delta)

	t = 1 / m[0][0]
	r = m[1][0] / m[0][0]
	return r, t, nil
}
