package layer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mil is one thousandth of an inch in metres
const Mil = 2.54e-5

// Distance is a length in metres. In configuration files it may be written either as
// a plain number of metres or with a unit suffix, e.g. "15mil", "1.5mm", "10um".
type Distance float64

var units = []struct {
	suffix string
	scale  float64
}{
	// longest suffixes first, so "mm" is never read as "m"
	{"mil", Mil},
	{"in", 0.0254},
	{"mm", 1e-3},
	{"um", 1e-6},
	{"cm", 1e-2},
	{"m", 1},
}

// ParseDistance parses a distance with an optional unit suffix
func ParseDistance(s string) (Distance, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("layer.Distance: empty value")
	}
	if s == "inf" || s == "+inf" {
		return Distance(math.Inf(1)), nil
	}

	scale := 1.0
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			scale = u.scale
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("layer.Distance: failed to parse: %w", err)
	}
	return Distance(v * scale), nil
}

// Metres returns d as a float64
func (d Distance) Metres() float64 {
	return float64(d)
}

func (d Distance) String() string {
	if math.IsInf(float64(d), 1) {
		return "inf"
	}
	return strconv.FormatFloat(float64(d), 'g', -1, 64) + "m"
}

func (d *Distance) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseDistance(value.Value)
	if err != nil {
		return err
	}

	*d = v
	return nil
}

func (d Distance) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Distance) UnmarshalJSON(bytes []byte) error {
	var v any
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case float64:
		*d = Distance(val)
	case string:
		parsed, err := ParseDistance(val)
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("layer.Distance: unsupported value %v", v)
	}
	return nil
}

func (d Distance) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
