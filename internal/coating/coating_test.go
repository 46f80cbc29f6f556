package coating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

const (
	center       = 150e9
	substrateN   = 4.0
	quarterWaveN = 2.0
)

// quarterWave is the thickness of a quarter wave sheet of index n at the band center
func quarterWave(n float64) layer.Distance {
	return layer.Distance(tmm.SpeedOfLight / center / (4 * n))
}

func singleSheetRecipe() *Recipe {
	return &Recipe{
		Materials: []layer.Layer{layer.Material("AR", quarterWaveN, 0, quarterWave(quarterWaveN))},
		Substrate: layer.Material("Substrate", substrateN, 0, layer.Distance(0.01)),
	}
}

func TestRecipe_Build(t *testing.T) {
	a := layer.Material("A", 1.3, 0, 10*layer.Mil)
	b := layer.Material("B", 1.9, 0, 5*layer.Mil)
	bond := layer.Material("LDPE", 1.5141, 2.7e-4, layer.Mil)
	substrate := layer.Material("Silicon", 3.3818, 1.6e-4, layer.Distance(0.01))

	recipe := &Recipe{Materials: []layer.Layer{a, b}, Bond: &bond, Substrate: substrate}
	require.NoError(t, recipe.Validate())

	stack, err := recipe.Build([]int{2, 1})
	require.NoError(t, err)

	var names []string
	for _, l := range stack {
		names = append(names, l.Description)
	}
	assert.Equal(t, []string{"Source", "A", "LDPE", "A", "LDPE", "B", "LDPE", "Silicon", "Terminator"}, names)
	assert.False(t, stack[len(stack)-1].IsVacuum())

	stack, err = recipe.Build([]int{0, 0})
	require.NoError(t, err)
	assert.Len(t, stack, 3)

	_, err = recipe.Build([]int{1})
	assert.Error(t, err)

	_, err = recipe.Build([]int{1, -1})
	assert.Error(t, err)
}

func TestRecipe_BuildWithoutBond(t *testing.T) {
	recipe := singleSheetRecipe()
	vacuum := layer.Terminator(true)
	recipe.Terminator = &vacuum

	stack, err := recipe.Build([]int{3})
	require.NoError(t, err)
	require.Len(t, stack, 6)
	assert.True(t, stack[5].IsVacuum())
	require.NoError(t, stack.Validate())
}

func TestRecipe_Validate(t *testing.T) {
	src := layer.Source(1, 0)
	term := layer.Terminator(true)
	good := singleSheetRecipe()

	testCases := []struct {
		name   string
		modify func(r *Recipe)
	}{
		{"no materials", func(r *Recipe) { r.Materials = nil }},
		{"source as material", func(r *Recipe) { r.Materials = append(r.Materials, src) }},
		{"bad material", func(r *Recipe) { r.Materials[0].Thickness = 0 }},
		{"terminator as bond", func(r *Recipe) { r.Bond = &term }},
		{"terminator as substrate", func(r *Recipe) { r.Substrate = term }},
		{"terminator as source", func(r *Recipe) { r.Source = &term }},
		{"source as terminator", func(r *Recipe) { r.Terminator = &src }},
	}

	require.NoError(t, good.Validate())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := singleSheetRecipe()
			tc.modify(r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestCrunch_QuarterWaveWins(t *testing.T) {
	band := model.BandAround(center, 0.15)

	var seen int
	candidates, err := Crunch(context.Background(), singleSheetRecipe(), 2, band,
		WithSamples(51),
		WithProgress(func(Candidate) { seen++ }))
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, 3, seen)

	for i, c := range candidates {
		assert.Equal(t, []int{i}, c.Counts)
		assert.Equal(t, 51, c.Stats.Samples)
		assert.Len(t, c.Stack, 3+i)
	}

	// bare substrate: R = ((4-1)/(4+1))^2
	assert.InDelta(t, 0.64, candidates[0].Stats.MeanTransmittance, 1e-9)
	assert.Greater(t, candidates[1].Stats.MeanTransmittance, 0.97)
	assert.Less(t, candidates[2].Stats.MeanTransmittance, candidates[1].Stats.MeanTransmittance)

	best := Best(candidates)
	require.NotNil(t, best)
	assert.Equal(t, []int{1}, best.Counts)
	assert.Equal(t, "1", best.Label())
}

func TestCrunch_EnumerationOrder(t *testing.T) {
	recipe := singleSheetRecipe()
	recipe.Materials = append(recipe.Materials, layer.Material("B", 1.5, 0, 2*layer.Mil))

	candidates, err := Crunch(context.Background(), recipe, 1, model.BandAround(center, 0.1), WithSamples(5))
	require.NoError(t, err)

	var counts [][]int
	for _, c := range candidates {
		counts = append(counts, c.Counts)
	}
	assert.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, counts)

	serial, err := Crunch(context.Background(), recipe, 1, model.BandAround(center, 0.1), WithSamples(5), WithWorkers(1))
	require.NoError(t, err)
	require.Len(t, serial, len(candidates))
	for i := range serial {
		assert.Equal(t, candidates[i].Counts, serial[i].Counts)
		assert.Equal(t, candidates[i].Stats, serial[i].Stats)
	}
}

func TestCrunch_Errors(t *testing.T) {
	band := model.BandAround(center, 0.15)

	_, err := Crunch(context.Background(), &Recipe{}, 2, band)
	assert.Error(t, err)

	_, err = Crunch(context.Background(), singleSheetRecipe(), -1, band)
	assert.Error(t, err)

	_, err = Crunch(context.Background(), singleSheetRecipe(), 1, model.Band{Low: 2e9, High: 1e9})
	assert.Error(t, err)

	_, err = Crunch(context.Background(), singleSheetRecipe(), 1, band, WithPolarization("x"))
	assert.ErrorIs(t, err, tmm.ErrInvalidPolarization)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	candidates, err := Crunch(ctx, singleSheetRecipe(), 3, band)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, candidates)
}

func TestBest(t *testing.T) {
	assert.Nil(t, Best(nil))

	candidates := []Candidate{
		{Counts: []int{0, 0}, Stats: model.BandStats{MeanTransmittance: 0.7}},
		{Counts: []int{2, 1}, Stats: model.BandStats{MeanTransmittance: 0.95}},
		{Counts: []int{1, 1}, Stats: model.BandStats{MeanTransmittance: 0.95}},
		{Counts: []int{1, 0}, Stats: model.BandStats{MeanTransmittance: 0.9}},
	}

	best := Best(candidates)
	require.NotNil(t, best)
	assert.Equal(t, []int{1, 1}, best.Counts)

	perSheets := BestPerSheetCount(candidates)
	require.Len(t, perSheets, 4)
	assert.Equal(t, []int{0, 0}, perSheets[0].Counts)
	assert.Equal(t, []int{1, 0}, perSheets[1].Counts)
	assert.Equal(t, []int{1, 1}, perSheets[2].Counts)
	assert.Equal(t, []int{2, 1}, perSheets[3].Counts)
}

func TestCandidate_Label(t *testing.T) {
	assert.Equal(t, "304", Candidate{Counts: []int{3, 0, 4}}.Label())
	assert.Equal(t, "12-0-4", Candidate{Counts: []int{12, 0, 4}}.Label())
	assert.Equal(t, 16, Candidate{Counts: []int{12, 0, 4}}.Sheets())
}

func TestScanThickness(t *testing.T) {
	stack := layer.Stack{
		layer.Source(1, 0),
		layer.Material("AR", quarterWaveN, 0, layer.Mil),
		layer.Material("Substrate", substrateN, 0, layer.Distance(0.01)),
		layer.Terminator(false),
	}
	band := model.Band{Low: center, High: center}
	thicknesses := []float64{0.5 * quarterWave(quarterWaveN).Metres(), quarterWave(quarterWaveN).Metres(), 2 * quarterWave(quarterWaveN).Metres()}

	results, err := ScanThickness(context.Background(), stack, 1, thicknesses, band, WithSamples(1))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, res := range results {
		require.Equal(t, 1, res.Len())
		assert.Equal(t, center, res.Frequency[0])
	}
	assert.InDelta(t, 1, results[1].Transmittance[0], 1e-9)
	assert.InDelta(t, 0.64, results[2].Transmittance[0], 1e-9)
	assert.Less(t, results[0].Transmittance[0], results[1].Transmittance[0])

	// the input stack is left alone
	assert.Equal(t, layer.Distance(layer.Mil), stack[1].Thickness)

	_, err = ScanThickness(context.Background(), stack, 0, thicknesses, band)
	assert.ErrorIs(t, err, tmm.ErrInvalidStack)
	_, err = ScanThickness(context.Background(), stack, 3, thicknesses, band)
	assert.ErrorIs(t, err, tmm.ErrInvalidStack)
	_, err = ScanThickness(context.Background(), stack, 1, nil, band)
	assert.Error(t, err)
}
