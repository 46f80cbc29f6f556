package tmm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mil = 2.54e-5

func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + (end-start)*float64(i)/float64(n-1)
	}
	return out
}

func coatedSilicon(tand float64) *Params {
	inf := math.Inf(1)
	return &Params{
		Index:        []float64{1, 1.2, 1.5141, 1.897, 1.5141, 3.3818, 1},
		LossTangent:  []float64{0, tand, tand, tand, tand, tand, 0},
		Thickness:    []float64{inf, 15 * mil, mil, 5 * mil, mil, 0.01, inf},
		Frequencies:  linspace(10e9, 400e9, 97),
		Polarization: PolarizationS,
	}
}

func TestRun_ThreeLayerIdentityStack(t *testing.T) {
	inf := math.Inf(1)

	for _, pol := range []Polarization{PolarizationS, PolarizationP} {
		t.Run(string(pol), func(t *testing.T) {
			p := &Params{
				Index:        []float64{1, 1, 1},
				LossTangent:  []float64{0, 0, 0},
				Thickness:    []float64{inf, 1, inf},
				Frequencies:  linspace(500e6, 500e9, 50),
				Polarization: pol,
			}

			res, err := Run(p)
			require.NoError(t, err)
			require.Equal(t, 50, res.Len())

			assert.Equal(t, p.Frequencies, res.Frequency)
			for i := range res.Frequency {
				assert.InDelta(t, 1, res.Transmittance[i], 1e-12, "f=%g", res.Frequency[i])
				assert.InDelta(t, 0, res.Reflectance[i], 1e-12, "f=%g", res.Frequency[i])
			}
		})
	}
}

func TestRun_UniformStackIsTransparent(t *testing.T) {
	inf := math.Inf(1)

	for _, pol := range []Polarization{PolarizationS, PolarizationP} {
		for _, angle := range []float64{0, 0.3, 1.2} {
			p := &Params{
				Index:        []float64{1.5, 1.5, 1.5, 1.5, 1.5},
				LossTangent:  []float64{0, 0, 0, 0, 0},
				Thickness:    []float64{inf, 1e-3, 7e-3, 0.2, inf},
				Frequencies:  linspace(1e9, 900e9, 31),
				Angle:        angle,
				Polarization: pol,
			}

			res, err := Run(p)
			require.NoError(t, err)

			for i := range res.Frequency {
				assert.InDelta(t, 1, res.Transmittance[i], 1e-9, "pol=%s angle=%g f=%g", pol, angle, res.Frequency[i])
				assert.InDelta(t, 0, res.Reflectance[i], 1e-12, "pol=%s angle=%g f=%g", pol, angle, res.Frequency[i])
			}
		}
	}
}

func TestRun_EnergyConservation(t *testing.T) {
	for _, pol := range []Polarization{PolarizationS, PolarizationP} {
		for _, angle := range []float64{0, 0.2, 0.7, 1.3} {
			p := coatedSilicon(0)
			p.Polarization = pol
			p.Angle = angle

			res, err := Run(p)
			require.NoError(t, err)

			for i := range res.Frequency {
				sum := res.Transmittance[i] + res.Reflectance[i]
				assert.InDelta(t, 1, sum, 1e-9, "pol=%s angle=%g f=%g", pol, angle, res.Frequency[i])
				assert.GreaterOrEqual(t, res.Reflectance[i], 0.0)
				assert.GreaterOrEqual(t, res.Transmittance[i], 0.0)
			}
		}
	}
}

func TestRun_AsymmetricTerminator(t *testing.T) {
	// Source and terminator differ, so the r convention matters
	inf := math.Inf(1)
	p := &Params{
		Index:        []float64{1, 2.2, 1.3, 3.1},
		LossTangent:  []float64{0, 0, 0, 0},
		Thickness:    []float64{inf, 0.7e-3, 2.1e-3, inf},
		Frequencies:  linspace(20e9, 300e9, 41),
		Angle:        0.45,
		Polarization: PolarizationP,
	}

	res, err := Run(p)
	require.NoError(t, err)

	for i := range res.Frequency {
		assert.InDelta(t, 1, res.Transmittance[i]+res.Reflectance[i], 1e-9, "f=%g", res.Frequency[i])
	}
}

func TestRun_LossyStackAbsorbs(t *testing.T) {
	res, err := Run(coatedSilicon(5e-3))
	require.NoError(t, err)

	for i := range res.Frequency {
		sum := res.Transmittance[i] + res.Reflectance[i]
		assert.Less(t, sum, 1.0, "f=%g", res.Frequency[i])
		assert.Greater(t, sum, 0.0, "f=%g", res.Frequency[i])
	}
}

func TestRun_TotalInternalReflection(t *testing.T) {
	inf := math.Inf(1)
	p := &Params{
		Index:        []float64{1.5, 1.5, 1},
		LossTangent:  []float64{0, 0, 0},
		Thickness:    []float64{inf, 1e-3, inf},
		Frequencies:  linspace(10e9, 100e9, 10),
		Angle:        1.0,
		Polarization: PolarizationS,
	}

	res, err := Run(p)
	require.NoError(t, err)

	for i := range res.Frequency {
		assert.InDelta(t, 1, res.Reflectance[i], 1e-9)
		assert.InDelta(t, 0, res.Transmittance[i], 1e-9)
	}
}

func TestRun_Idempotent(t *testing.T) {
	p := coatedSilicon(1e-3)
	p.Angle = 0.3
	p.Halpern = map[int]Halpern{5: {A: 0.01, B: 1.2, N: 3.3818}}

	first, err := Run(p)
	require.NoError(t, err)

	second, err := Run(p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_HalpernOverridesLossTangent(t *testing.T) {
	freq := 150e9
	h := Halpern{A: 0.02, B: 1.1, N: 3.3818}

	withHalpern := coatedSilicon(1e-3)
	withHalpern.Frequencies = []float64{freq}
	withHalpern.Halpern = map[int]Halpern{5: h}

	static := coatedSilicon(1e-3)
	static.Frequencies = []float64{freq}
	static.LossTangent[5] = h.LossTangent(freq)

	a, err := Run(withHalpern)
	require.NoError(t, err)
	b, err := Run(static)
	require.NoError(t, err)

	assert.Equal(t, b.Transmittance, a.Transmittance)
	assert.Equal(t, b.Reflectance, a.Reflectance)

	// input is left untouched
	assert.Equal(t, 1e-3, withHalpern.LossTangent[5])
}

func TestEvaluate_OrderIndependent(t *testing.T) {
	p := coatedSilicon(2e-3)
	p.Halpern = map[int]Halpern{1: {A: 0.05, B: 2, N: 1.2}}
	theta := Refract(p.Index, p.Angle)

	res, err := Run(p)
	require.NoError(t, err)

	for i := len(p.Frequencies) - 1; i >= 0; i-- {
		tr, r, err := Evaluate(p, theta, p.Frequencies[i])
		require.NoError(t, err)

		assert.Equal(t, res.Transmittance[i], tr)
		assert.Equal(t, res.Reflectance[i], r)
	}
}

func TestParams_Validate(t *testing.T) {
	inf := math.Inf(1)
	valid := func() *Params {
		return &Params{
			Index:        []float64{1, 2, 1},
			LossTangent:  []float64{0, 0, 0},
			Thickness:    []float64{inf, 1e-3, inf},
			Frequencies:  []float64{1e9},
			Polarization: PolarizationS,
		}
	}

	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		modify func(*Params)
		want   error
	}{
		{"too few layers", func(p *Params) {
			p.Index, p.LossTangent, p.Thickness = p.Index[:2], p.LossTangent[:2], p.Thickness[:2]
		}, ErrInvalidStack},
		{"mismatched slices", func(p *Params) { p.Thickness = p.Thickness[:2] }, ErrInvalidStack},
		{"non-positive index", func(p *Params) { p.Index[1] = 0 }, ErrInvalidStack},
		{"halpern on source", func(p *Params) { p.Halpern = map[int]Halpern{0: {A: 1, B: 1, N: 1}} }, ErrInvalidStack},
		{"halpern on terminator", func(p *Params) { p.Halpern = map[int]Halpern{2: {A: 1, B: 1, N: 1}} }, ErrInvalidStack},
		{"no frequencies", func(p *Params) { p.Frequencies = nil }, ErrInvalidSweep},
		{"grazing incidence", func(p *Params) { p.Angle = math.Pi / 2 }, ErrGrazingIncidence},
		{"nearly grazing incidence", func(p *Params) { p.Angle = math.Pi/2 - 1e-9 }, ErrGrazingIncidence},
		{"invalid polarization", func(p *Params) { p.Polarization = "u" }, ErrInvalidPolarization},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.modify(p)

			err := p.Validate()
			assert.ErrorIs(t, err, tc.want)

			_, err = Run(p)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestIsGrazing(t *testing.T) {
	assert.True(t, IsGrazing(math.Pi/2))
	assert.False(t, IsGrazing(0))
	assert.False(t, IsGrazing(1.5707))
	assert.False(t, IsGrazing(89.9*math.Pi/180))
}
