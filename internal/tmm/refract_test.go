package tmm

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefract_NormalIncidenceStaysNormal(t *testing.T) {
	profiles := [][]float64{
		{1, 1, 1},
		{1, 1.2, 1.5141, 3.3818, 1},
		{3.4155, 1.304, 1.897, 2.549, 1.5141, 1},
	}

	for _, index := range profiles {
		theta := Refract(index, 0)
		require.Len(t, theta, len(index))
		for i, th := range theta {
			assert.Equal(t, complex128(0), th, "layer %d", i)
		}
	}
}

func TestRefract_SnellsLaw(t *testing.T) {
	index := []float64{1, 1.5, 3.4, 1}
	theta0 := math.Pi / 6

	theta := Refract(index, theta0)
	require.Len(t, theta, len(index))

	assert.Equal(t, complex(theta0, 0), theta[0])
	assert.InDelta(t, math.Asin(0.5/1.5), real(theta[1]), tolerance)
	assert.InDelta(t, math.Asin(0.5/3.4), real(theta[2]), tolerance)
	assert.InDelta(t, theta0, real(theta[3]), tolerance)

	for i, th := range theta {
		assert.Zero(t, imag(th), "layer %d", i)

		// n*sin(theta) is invariant through the stack
		assert.InDelta(t, 0.5, index[i]*real(cmplx.Sin(th)), tolerance, "layer %d", i)
	}
}

func TestRefract_TotalInternalReflectionIsEvanescent(t *testing.T) {
	theta := Refract([]float64{1.5, 1.5, 1}, 1.0)
	require.Len(t, theta, 3)

	last := theta[2]
	assert.NotZero(t, imag(last))
	assert.False(t, cmplx.IsNaN(last))

	// forward decaying branch
	assert.Greater(t, imag(cmplx.Cos(last)), 0.0)
}

func TestRefract_Empty(t *testing.T) {
	assert.Nil(t, Refract(nil, 0.2))
}
