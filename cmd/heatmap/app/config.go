package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	Quantity      Quantity
	MinFrequency  *float64
	MaxFrequency  *float64
	MinValue      *float64
	MaxValue      *float64
	Verbose       bool
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:   ImagePNG,
		Theme:    ClassicTheme,
		Quantity: QuantityTransmittance,
	}
}

func NewConfigFromCLI() (*Config, error) {
	return parseConfig(flag.CommandLine, os.Args[1:])
}

// parseFrequency accepts plain numbers in Hz as well as SI values such as "150GHz"
func parseFrequency(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	v, unit, err := humanize.ParseSI(s)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency '%s': %w", s, err)
	}
	if unit != "" && !strings.EqualFold(unit, "Hz") {
		return 0, fmt.Errorf("invalid frequency '%s': unexpected unit %s", s, unit)
	}
	return v, nil
}

func frequencyVar(fs *flag.FlagSet, p **float64, name, usage string) {
	fs.Func(name, usage, func(s string) error {
		v, err := parseFrequency(s)
		if err != nil {
			return err
		}
		*p = &v
		return nil
	})
}

func parseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	c := NewConfig()

	var imageFormat, theme, quantity string
	var minValue, maxValue float64
	fs.StringVar(&c.DBPath, "db", "", "Path to the database file")
	fs.Int64Var(&c.SessionID, "s", 1, "Session ID")
	fs.StringVar(&c.OutputFile, "o", "", "Path to the output file, without extension")
	fs.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	fs.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, jungle, thermal, marine]")
	fs.StringVar(&quantity, "q", string(QuantityTransmittance), "Rendered quantity. [transmittance, reflectance]")
	frequencyVar(fs, &c.MinFrequency, "min-freq", "Lowest rendered frequency, e.g. 100e9 or 100GHz")
	frequencyVar(fs, &c.MaxFrequency, "max-freq", "Highest rendered frequency, e.g. 200e9 or 200GHz")
	fs.Float64Var(&minValue, "min-value", 0, "Define a manual minimum value (format n.nn)")
	fs.Float64Var(&maxValue, "max-value", 0, "Define a manual maximum value (format n.nn)")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	fs.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as frequency and run scales")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "min-value" {
			c.MinValue = &minValue
		}
		if f.Name == "max-value" {
			c.MaxValue = &maxValue
		}
	})

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.MinFrequency != nil && c.MaxFrequency != nil && *c.MinFrequency > *c.MaxFrequency {
		err = fmt.Errorf("min frequency %g is greater than max frequency %g", *c.MinFrequency, *c.MaxFrequency)
	} else if c.MinValue != nil && c.MaxValue != nil && *c.MinValue >= *c.MaxValue {
		err = fmt.Errorf("min value %g must be less than max value %g", *c.MinValue, *c.MaxValue)
	}
	if err == nil {
		c.Theme, err = ParseColorTheme(theme)
	}
	if err == nil {
		c.Quantity, err = ParseQuantity(quantity)
	}

	if err != nil {
		fs.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
