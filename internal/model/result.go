package model

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

const (
	headerRunID        = "Run"
	headerStructure    = "Structure"
	headerLowFreq      = "Frequency lower bound (Hz)"
	headerHighFreq     = "Frequency upper bound (Hz)"
	headerAngle        = "Incident angle (rad)"
	headerPolarization = "Polarization"
	headerIndex        = "Refractive indices"
	headerLossTangent  = "Loss tangents"
	headerThickness    = "Thicknesses (m)"
	headerHalpern      = "Halpern layers"

	columnsHeader = "Frequency\t\t\tTransmittance\t\t\tReflectance"
)

// ErrMalformedResult is returned when a saved result cannot be parsed
var ErrMalformedResult = errors.New("malformed result")

// Result is the outcome of a single model run together with the parameters it was
// run with.
type Result struct {
	RunID     uuid.UUID
	Structure string

	// Stack is nil for results read back from a file
	Stack layer.Stack

	LowFrequency  float64
	HighFrequency float64
	Angle         float64
	Polarization  tmm.Polarization
	Index         []float64
	LossTangent   []float64
	Thickness     []float64
	Halpern       map[int]tmm.Halpern

	*tmm.Result
}

// SaveFile writes the result to a file at path, see Save
func (r *Result) SaveFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	w := bufio.NewWriter(f)
	if err = r.Save(w); err != nil {
		return err
	}
	return w.Flush()
}

// Save writes the result as text: a '#' commented header describing the simulation
// followed by one tab separated "frequency transmittance reflectance" row per sample.
func (r *Result) Save(w io.Writer) error {
	halpern, err := json.Marshal(r.Halpern)
	if err != nil {
		return fmt.Errorf("marshaling Halpern layers: %w", err)
	}

	header := []string{
		fmt.Sprintf("%s: %s", headerRunID, r.RunID),
		fmt.Sprintf("%s: %s", headerStructure, r.Structure),
		fmt.Sprintf("%s: %s", headerLowFreq, formatFloat(r.LowFrequency)),
		fmt.Sprintf("%s: %s", headerHighFreq, formatFloat(r.HighFrequency)),
		fmt.Sprintf("%s: %s", headerAngle, formatFloat(r.Angle)),
		fmt.Sprintf("%s: %s", headerPolarization, r.Polarization),
		fmt.Sprintf("%s: %s", headerIndex, formatFloats(r.Index)),
		fmt.Sprintf("%s: %s", headerLossTangent, formatFloats(r.LossTangent)),
		fmt.Sprintf("%s: %s", headerThickness, formatFloats(r.Thickness)),
		fmt.Sprintf("%s: %s", headerHalpern, halpern),
		"",
		columnsHeader,
	}

	for _, line := range header {
		if _, err = fmt.Fprintf(w, "# %s\n", line); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if r.Result == nil {
		return nil
	}
	for i := range r.Frequency {
		if _, err = fmt.Fprintf(w, "%.18e\t%.18e\t%.18e\n", r.Frequency[i], r.Transmittance[i], r.Reflectance[i]); err != nil {
			return fmt.Errorf("writing sample %d: %w", i, err)
		}
	}
	return nil
}

// ReadResultFile reads a result saved with SaveFile
func ReadResultFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result file: %w", err)
	}
	defer f.Close()

	return ReadResult(f)
}

// ReadResult parses a result written by Save
func ReadResult(r io.Reader) (*Result, error) {
	res := Result{Result: &tmm.Result{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var line int
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "#") {
			if err := res.parseHeader(strings.TrimSpace(strings.TrimPrefix(text, "#"))); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedResult, line, err)
			}
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 columns, %d given", ErrMalformedResult, line, len(fields))
		}

		var values [3]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedResult, line, err)
			}
			values[i] = v
		}

		res.Frequency = append(res.Frequency, values[0])
		res.Transmittance = append(res.Transmittance, values[1])
		res.Reflectance = append(res.Reflectance, values[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}

	return &res, nil
}

func (r *Result) parseHeader(text string) (err error) {
	key, value, ok := strings.Cut(text, ": ")
	if !ok {
		return nil // blank or column header line
	}

	switch key {
	case headerRunID:
		r.RunID, err = uuid.Parse(value)
	case headerStructure:
		r.Structure = value
	case headerLowFreq:
		r.LowFrequency, err = strconv.ParseFloat(value, 64)
	case headerHighFreq:
		r.HighFrequency, err = strconv.ParseFloat(value, 64)
	case headerAngle:
		r.Angle, err = strconv.ParseFloat(value, 64)
	case headerPolarization:
		r.Polarization = tmm.Polarization(value)
		err = r.Polarization.Validate()
	case headerIndex:
		r.Index, err = parseFloats(value)
	case headerLossTangent:
		r.LossTangent, err = parseFloats(value)
	case headerThickness:
		r.Thickness, err = parseFloats(value)
	case headerHalpern:
		err = json.Unmarshal([]byte(value), &r.Halpern)
	}

	if err != nil {
		return fmt.Errorf("parsing %s: %w", strings.ToLower(key), err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFloats(s []float64) string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = formatFloat(f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")

	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
