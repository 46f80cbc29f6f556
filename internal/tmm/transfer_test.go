package tmm

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix2_Mul(t *testing.T) {
	a := NewMatrix2(1, 2, 3, 4)
	b := NewMatrix2(0, 1i, 1, 0)

	assert.Equal(t, a, Identity().Mul(a))
	assert.Equal(t, a, a.Mul(Identity()))

	assert.Equal(t, NewMatrix2(2, 1i, 4, 3i), a.Mul(b))
	assert.Equal(t, NewMatrix2(3i, 4i, 1, 2), b.Mul(a))
	assert.NotEqual(t, a.Mul(b), b.Mul(a))

	assert.Equal(t, NewMatrix2(2i, 4i, 6i, 8i), a.Scale(2i))
}

func TestNewInterfaces(t *testing.T) {
	index := []float64{1, 2, 2, 1}
	theta := Refract(index, 0)

	ifc, err := NewInterfaces(index, theta, PolarizationS)
	require.NoError(t, err)
	require.Len(t, ifc.R, 3)
	require.Len(t, ifc.T, 3)

	assert.InDelta(t, -1.0/3, real(ifc.R[0]), tolerance)
	assert.InDelta(t, 2.0/3, real(ifc.T[0]), tolerance)
	assert.InDelta(t, 0, real(ifc.R[1]), tolerance)
	assert.InDelta(t, 1, real(ifc.T[1]), tolerance)
	assert.InDelta(t, 1.0/3, real(ifc.R[2]), tolerance)
	assert.InDelta(t, 4.0/3, real(ifc.T[2]), tolerance)
}

func TestNewInterfaces_Errors(t *testing.T) {
	_, err := NewInterfaces([]float64{1, 2, 1}, make([]complex128, 3), "x")
	assert.ErrorIs(t, err, ErrInvalidPolarization)

	_, err = NewInterfaces([]float64{1, 2, 1}, make([]complex128, 2), PolarizationS)
	assert.ErrorIs(t, err, ErrInvalidStack)
}

func TestLayerMatrices(t *testing.T) {
	index := []float64{1, 1.5, 2, 1}
	theta := Refract(index, 0)
	delta := []complex128{complex(math.Inf(1), 0), 0.7, 1.3, complex(math.Inf(1), 0)}

	ifc, err := NewInterfaces(index, theta, PolarizationP)
	require.NoError(t, err)

	m := LayerMatrices(ifc, delta)
	require.Len(t, m, 2)

	for j, i := range []int{1, 2} {
		e := cmplx.Exp(-1i * delta[i])
		r, tr := ifc.R[i], ifc.T[i]

		assert.InDelta(t, real(e/tr), real(m[j][0][0]), tolerance)
		assert.InDelta(t, imag(e/tr), imag(m[j][0][0]), tolerance)
		assert.InDelta(t, real(e*r/tr), real(m[j][0][1]), tolerance)
		assert.InDelta(t, imag(e*r/tr), imag(m[j][0][1]), tolerance)
		assert.InDelta(t, real(r/(e*tr)), real(m[j][1][0]), tolerance)
		assert.InDelta(t, real(1/(e*tr)), real(m[j][1][1]), tolerance)
	}

	assert.Nil(t, LayerMatrices(ifc, delta[:2]))
}

func TestAmplitudes_UniformStack(t *testing.T) {
	index := []float64{1, 1, 1}
	theta := Refract(index, 0)
	delta := []complex128{0, 0, 0}

	for _, pol := range []Polarization{PolarizationS, PolarizationP} {
		t.Run(string(pol), func(t *testing.T) {
			r, tr, err := Amplitudes(index, delta, theta, pol)
			require.NoError(t, err)

			assert.InDelta(t, 0, cmplx.Abs(r), tolerance)
			assert.InDelta(t, 1, real(tr), tolerance)
			assert.InDelta(t, 0, imag(tr), tolerance)
		})
	}
}

func TestAmplitudes_QuarterWaveCoating(t *testing.T) {
	// An n=sqrt(ns) quarter-wave layer on an ns substrate cancels reflection
	// at its design frequency.
	ns := 4.0
	nc := math.Sqrt(ns)
	index := []float64{1, nc, ns}
	theta := Refract(index, 0)
	delta := []complex128{complex(math.Inf(1), 0), math.Pi / 2, complex(math.Inf(1), 0)}

	r, tr, err := Amplitudes(index, delta, theta, PolarizationS)
	require.NoError(t, err)

	assert.InDelta(t, 0, Reflectance(r), 1e-12)
	assert.InDelta(t, 1, Transmittance(tr, index[0], index[2], theta[0], theta[2]), 1e-12)
}

func TestAmplitudes_LengthMismatch(t *testing.T) {
	_, _, err := Amplitudes([]float64{1, 2, 1}, []complex128{0, 0}, make([]complex128, 3), PolarizationS)
	assert.ErrorIs(t, err, ErrInvalidStack)
}

func TestPower(t *testing.T) {
	assert.InDelta(t, 0.25, Reflectance(complex(0, -0.5)), tolerance)
	assert.InDelta(t, 0.5, Reflectance(complex(0.5, 0.5)), tolerance)

	// |t|^2 * (n_f cos(theta_f)) / (n_i cos(theta_i))
	assert.InDelta(t, 0.36*2, Transmittance(0.6, 1, 2, 0, 0), tolerance)
	assert.InDelta(t, 0.36*2*math.Cos(0.3)/math.Cos(0.5), Transmittance(0.6i, 1, 2, 0.5, 0.3), tolerance)
}
