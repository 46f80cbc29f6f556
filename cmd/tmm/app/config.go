package app

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/mmwave-stack/internal/coating"
	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/model"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

// Config represents the main application configuration
type Config struct {
	Settings   Settings         `yaml:"settings"`
	Simulation SimulationConfig `yaml:"simulation"`
	Coating    *CoatingConfig   `yaml:"coating"`
	Scan       *ScanConfig      `yaml:"scan"`
	Output     OutputConfig     `yaml:"output"`
	Storage    StorageConfig    `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// FrequencyConfig represents the frequency sweep, Hz
type FrequencyConfig struct {
	Start   float64 `yaml:"start"`
	End     float64 `yaml:"end"`
	Samples int     `yaml:"samples"`
}

// SimulationConfig represents the simulated stack and how it is illuminated
type SimulationConfig struct {
	Frequency FrequencyConfig `yaml:"frequency"`

	// IncidenceAngle is in degrees
	IncidenceAngle float64          `yaml:"incidenceAngle"`
	Polarization   tmm.Polarization `yaml:"polarization"`
	Stack          layer.Stack      `yaml:"stack"`
}

// CoatingConfig represents an anti-reflection coating recipe to crunch. The crunch
// replaces the simulated stack with every stack the recipe can build.
type CoatingConfig struct {
	Recipe   coating.Recipe `yaml:"recipe"`
	MaxCount int            `yaml:"maxCount"`
}

// ScanConfig represents a thickness scan of a single layer of the simulated stack
type ScanConfig struct {
	Layer int            `yaml:"layer"`
	Start layer.Distance `yaml:"start"`
	End   layer.Distance `yaml:"end"`
	Steps int            `yaml:"steps"`
}

// BandConfig represents a detector band as a center frequency and a fractional half width
type BandConfig struct {
	Center   float64 `yaml:"center"`
	Fraction float64 `yaml:"fraction"`
}

// OutputConfig represents where results go
type OutputConfig struct {
	File string      `yaml:"file"`
	Plot string      `yaml:"plot"`
	Band *BandConfig `yaml:"band"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
	Enabled       bool   `yaml:"enabled"`
}

// LoadConfig reads and validates the configuration file at path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration. Missing simulation settings
// take the model defaults.
func ParseConfig(data []byte) (*Config, error) {
	config := Config{
		Settings: Settings{LogLevel: slog.LevelInfo},
		Simulation: SimulationConfig{
			Frequency: FrequencyConfig{
				Start:   model.DefaultLowFrequency,
				End:     model.DefaultHighFrequency,
				Samples: model.DefaultSampleCount,
			},
			Polarization: tmm.PolarizationS,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

func (c *Config) Validate() error {
	errs := []error{c.Simulation.Validate(c.Coating != nil), c.Output.Validate(), c.Storage.Validate()}

	if c.Coating != nil {
		if c.Scan != nil {
			errs = append(errs, errors.New("app.Config: coating and scan are mutually exclusive"))
		}
		if c.Output.Band == nil {
			errs = append(errs, errors.New("app.Config: coating requires an output band"))
		}
		errs = append(errs, c.Coating.Validate())
	}
	if c.Scan != nil {
		errs = append(errs, c.Scan.Validate(c.Simulation.Stack))
	}

	return errors.Join(errs...)
}

// Validate checks the simulation settings. The stack is optional when a coating recipe
// provides the stacks.
func (c *SimulationConfig) Validate(recipe bool) error {
	var errs []error
	if c.Frequency.Samples <= 0 {
		errs = append(errs, fmt.Errorf("app.SimulationConfig: frequency samples must be positive: %d", c.Frequency.Samples))
	}
	if c.Frequency.Start <= 0 || c.Frequency.End <= 0 {
		errs = append(errs, fmt.Errorf("app.SimulationConfig: frequencies must be positive: %g, %g", c.Frequency.Start, c.Frequency.End))
	}
	if math.Abs(c.IncidenceAngle) >= 90 {
		errs = append(errs, fmt.Errorf("app.SimulationConfig: incidence angle must be within (-90, 90) degrees: %g", c.IncidenceAngle))
	}
	if err := c.Polarization.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("app.SimulationConfig: %w", err))
	}
	if !recipe || len(c.Stack) > 0 {
		if err := c.Stack.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("app.SimulationConfig: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Angle returns the incidence angle in radians
func (c *SimulationConfig) Angle() float64 {
	return c.IncidenceAngle * math.Pi / 180
}

// Band returns the frequency sweep as a band
func (c *SimulationConfig) Band() model.Band {
	return model.Band{
		Low:  min(c.Frequency.Start, c.Frequency.End),
		High: max(c.Frequency.Start, c.Frequency.End),
	}
}

func (c *CoatingConfig) Validate() error {
	if c.MaxCount < 0 {
		return fmt.Errorf("app.CoatingConfig: maximum count must not be negative: %d", c.MaxCount)
	}
	if err := c.Recipe.Validate(); err != nil {
		return fmt.Errorf("app.CoatingConfig: %w", err)
	}
	return nil
}

func (c *ScanConfig) Validate(stack layer.Stack) error {
	var errs []error
	if c.Layer <= 0 || c.Layer >= len(stack)-1 {
		errs = append(errs, fmt.Errorf("app.ScanConfig: layer %d is not a material layer of the stack", c.Layer))
	}
	if c.Steps <= 0 {
		errs = append(errs, fmt.Errorf("app.ScanConfig: steps must be positive: %d", c.Steps))
	}
	if c.Start <= 0 || c.End <= 0 || math.IsInf(float64(c.Start), 0) || math.IsInf(float64(c.End), 0) {
		errs = append(errs, fmt.Errorf("app.ScanConfig: thicknesses must be positive and finite: %s, %s", c.Start, c.End))
	}
	return errors.Join(errs...)
}

// Thicknesses returns the scanned thicknesses, metres
func (c *ScanConfig) Thicknesses() []float64 {
	if c.Steps == 1 || c.Start == c.End {
		return []float64{c.Start.Metres()}
	}
	return floats.Span(make([]float64, c.Steps), c.Start.Metres(), c.End.Metres())
}

func (c *BandConfig) Validate() error {
	if c.Fraction <= 0 || c.Fraction >= 1 {
		return fmt.Errorf("app.BandConfig: fraction must be within (0, 1): %g", c.Fraction)
	}
	return c.Band().Validate()
}

// Band returns the configured band
func (c *BandConfig) Band() model.Band {
	return model.BandAround(c.Center, c.Fraction)
}

func (c *OutputConfig) Validate() error {
	if c.Band != nil {
		return c.Band.Validate()
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("app.StorageConfig: maximum batch size must not be negative: %d", c.MaxBatchSize)
	}
	return nil
}
