package app

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

const modelConfig = `
settings:
  logLevel: debug
simulation:
  frequency: {start: 10e9, end: 400e9, samples: 200}
  incidenceAngle: 10
  polarization: p
  stack:
    - {kind: source}
    - {kind: material, description: Zitex, index: 1.2, lossTangent: 9e-4, thickness: 15mil}
    - {kind: material, description: LDPE, index: 1.5141, lossTangent: 2.7e-4, thickness: 1mil}
    - {kind: material, description: Silicon, index: 3.3818, lossTangent: 1.6e-4, thickness: 1cm}
    - {kind: terminator, vacuum: false}
output:
  file: result.txt
  plot: result.png
  band: {center: 150e9, fraction: 0.15}
storage:
  enabled: true
  dataDirectory: data
  maxBatchSize: 500
`

func TestParseConfig_Model(t *testing.T) {
	config, err := ParseConfig([]byte(modelConfig))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.Settings.LogLevel)
	assert.Equal(t, FrequencyConfig{Start: 10e9, End: 400e9, Samples: 200}, config.Simulation.Frequency)
	assert.InDelta(t, 10*math.Pi/180, config.Simulation.Angle(), 1e-15)
	assert.Equal(t, tmm.PolarizationP, config.Simulation.Polarization)

	stack := config.Simulation.Stack
	require.Len(t, stack, 5)
	assert.Equal(t, layer.KindSource, stack[0].Kind)
	assert.Equal(t, 1.0, stack[0].Index)
	assert.InDelta(t, 15*layer.Mil, stack[1].Thickness.Metres(), 1e-15)
	assert.InDelta(t, 0.01, stack[3].Thickness.Metres(), 1e-15)
	assert.False(t, stack[4].IsVacuum())

	require.NotNil(t, config.Output.Band)
	assert.InDelta(t, 127.5e9, config.Output.Band.Band().Low, 1e-3)
	assert.True(t, config.Storage.Enabled)
	assert.Equal(t, 500, config.Storage.MaxBatchSize)

	assert.Nil(t, config.Coating)
	assert.Nil(t, config.Scan)
}

func TestParseConfig_Defaults(t *testing.T) {
	config, err := ParseConfig([]byte(`
simulation:
  stack:
    - {kind: source}
    - {kind: material, index: 1.5, thickness: 1mm}
    - {kind: terminator}
`))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, config.Settings.LogLevel)
	assert.Equal(t, model.DefaultLowFrequency, config.Simulation.Frequency.Start)
	assert.Equal(t, model.DefaultHighFrequency, config.Simulation.Frequency.End)
	assert.Equal(t, model.DefaultSampleCount, config.Simulation.Frequency.Samples)
	assert.Equal(t, tmm.PolarizationS, config.Simulation.Polarization)
	assert.Zero(t, config.Simulation.Angle())
	assert.False(t, config.Storage.Enabled)
}

func TestParseConfig_Coating(t *testing.T) {
	config, err := ParseConfig([]byte(`
simulation:
  frequency: {samples: 50}
coating:
  maxCount: 3
  recipe:
    materials:
      - {kind: material, description: Zitex, index: 1.2, thickness: 15mil}
      - {kind: material, description: RO3035, index: 1.897, thickness: 5mil}
    bond: {kind: material, description: LDPE, index: 1.5141, thickness: 1mil}
    substrate: {kind: material, description: Silicon, index: 3.3818, thickness: 1cm}
output:
  band: {center: 150e9, fraction: 0.15}
`))
	require.NoError(t, err)
	require.NotNil(t, config.Coating)

	assert.Equal(t, 3, config.Coating.MaxCount)
	assert.Len(t, config.Coating.Recipe.Materials, 2)
	require.NotNil(t, config.Coating.Recipe.Bond)
	assert.Equal(t, "LDPE", config.Coating.Recipe.Bond.Description)
}

func TestParseConfig_Scan(t *testing.T) {
	config, err := ParseConfig([]byte(`
simulation:
  stack:
    - {kind: source}
    - {kind: material, description: PTFE, index: 1.44, thickness: 1mm}
    - {kind: terminator, vacuum: true}
scan: {layer: 1, start: 1mm, end: 3mm, steps: 5}
`))
	require.NoError(t, err)
	require.NotNil(t, config.Scan)

	thicknesses := config.Scan.Thicknesses()
	require.Len(t, thicknesses, 5)
	assert.InDelta(t, 1e-3, thicknesses[0], 1e-15)
	assert.InDelta(t, 1.5e-3, thicknesses[1], 1e-15)
	assert.InDelta(t, 3e-3, thicknesses[4], 1e-15)

	config.Scan.Steps = 1
	assert.Equal(t, []float64{1e-3}, config.Scan.Thicknesses())
}

func TestParseConfig_Errors(t *testing.T) {
	stack := `
  stack:
    - {kind: source}
    - {kind: material, index: 1.5, thickness: 1mm}
    - {kind: terminator}
`
	testCases := []struct {
		name   string
		config string
	}{
		{"malformed", "simulation: ["},
		{"no stack", "simulation: {}"},
		{"bad distance", "simulation:\n  stack:\n    - {kind: material, thickness: 3 parsecs}"},
		{"bad polarization", "simulation:\n  polarization: x" + stack},
		{"grazing", "simulation:\n  incidenceAngle: 90" + stack},
		{"zero samples", "simulation:\n  frequency: {samples: 0}" + stack},
		{"negative frequency", "simulation:\n  frequency: {start: -1}" + stack},
		{"scan terminator", "simulation:" + stack + "scan: {layer: 2, start: 1mm, end: 2mm, steps: 2}"},
		{"scan steps", "simulation:" + stack + "scan: {layer: 1, start: 1mm, end: 2mm, steps: 0}"},
		{"scan infinite", "simulation:" + stack + "scan: {layer: 1, start: 1mm, end: inf, steps: 2}"},
		{"band fraction", "simulation:" + stack + "output: {band: {center: 150e9, fraction: 1.5}}"},
		{"crunch without band", "simulation:" + stack + "coating: {maxCount: 1, recipe: {materials: [{kind: material, index: 1.2, thickness: 1mil}], substrate: {kind: material, index: 3, thickness: 1cm}}}"},
		{"crunch and scan", "simulation:" + stack + "scan: {layer: 1, start: 1mm, end: 2mm, steps: 2}\noutput: {band: {center: 150e9, fraction: 0.1}}\ncoating: {maxCount: 1, recipe: {materials: [{kind: material, index: 1.2, thickness: 1mil}], substrate: {kind: material, index: 3, thickness: 1cm}}}"},
		{"batch size", "simulation:" + stack + "storage: {maxBatchSize: -1}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.config))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(modelConfig), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, config.Simulation.Stack, 5)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
