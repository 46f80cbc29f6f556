package layer

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

const (
	KindSource     Kind = "source"
	KindMaterial   Kind = "material"
	KindTerminator Kind = "terminator"
)

// ErrInvalidLayer is returned when a layer's properties do not fit its kind
var ErrInvalidLayer = errors.New("invalid layer")

var validKinds = map[Kind]struct{}{
	KindSource:     {},
	KindMaterial:   {},
	KindTerminator: {},
}

// Kind tells the role a layer plays in a stack
type Kind string

func (k Kind) String() string {
	return string(k)
}

// Layer is a single planar slab of a stack.
//
// A source or a terminator is semi-infinite: its thickness is ignored and always
// reported as +Inf. A terminator with Vacuum unset (nil) is treated as vacuum.
type Layer struct {
	Kind        Kind     `yaml:"kind" json:"kind"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Index       float64  `yaml:"index" json:"index"`
	LossTangent float64  `yaml:"lossTangent" json:"lossTangent"`
	Thickness   Distance `yaml:"thickness,omitempty" json:"thickness,omitempty"`

	// Halpern absorption coefficients; the fit is used only when both are set
	HalpernA *float64 `yaml:"halpernA,omitempty" json:"halpernA,omitempty"`
	HalpernB *float64 `yaml:"halpernB,omitempty" json:"halpernB,omitempty"`

	Vacuum *bool `yaml:"vacuum,omitempty" json:"vacuum,omitempty"`
}

// UnmarshalYAML decodes a layer, defaulting a missing refractive index to 1
func (l *Layer) UnmarshalYAML(value *yaml.Node) error {
	type plain Layer

	p := plain{Index: 1}
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("layer.Layer: %w", err)
	}

	*l = Layer(p)
	return nil
}

// Source returns a semi-infinite source layer
func Source(index, lossTangent float64) Layer {
	return Layer{Kind: KindSource, Description: "Source", Index: index, LossTangent: lossTangent}
}

// Material returns a finite material layer
func Material(description string, index, lossTangent float64, thickness Distance) Layer {
	return Layer{
		Kind:        KindMaterial,
		Description: description,
		Index:       index,
		LossTangent: lossTangent,
		Thickness:   thickness,
	}
}

// Terminator returns a lossless semi-infinite terminator. With vacuum set its index
// is 1, otherwise it matches the index of the last material of the stack.
func Terminator(vacuum bool) Layer {
	return Layer{Kind: KindTerminator, Description: "Terminator", Index: 1, Vacuum: &vacuum}
}

// TerminatorWithIndex returns a semi-infinite terminator of the given medium
func TerminatorWithIndex(index, lossTangent float64) Layer {
	vacuum := false
	return Layer{Kind: KindTerminator, Description: "Terminator", Index: index, LossTangent: lossTangent, Vacuum: &vacuum}
}

// WithHalpern returns a copy of l using the Halpern absorption fit alpha = 2*a*(f/30GHz)^b
// instead of its static loss tangent.
func (l Layer) WithHalpern(a, b float64) Layer {
	l.HalpernA = &a
	l.HalpernB = &b
	return l
}

// HasHalpern reports whether both Halpern coefficients are set
func (l Layer) HasHalpern() bool {
	return l.HalpernA != nil && l.HalpernB != nil
}

// IsVacuum reports whether a terminator stands for free space
func (l Layer) IsVacuum() bool {
	return l.Vacuum == nil || *l.Vacuum
}

// EffectiveThickness returns the thickness used in calculations, in metres
func (l Layer) EffectiveThickness() float64 {
	if l.Kind != KindMaterial {
		return math.Inf(1)
	}
	return l.Thickness.Metres()
}

func (l Layer) String() string {
	desc := l.Description
	if desc == "" {
		desc = "Layer"
	}

	switch l.Kind {
	case KindMaterial:
		return fmt.Sprintf("%s (n=%g, tand=%g, d=%s)", desc, l.Index, l.LossTangent, l.Thickness)
	default:
		return fmt.Sprintf("%s (%s, n=%g, tand=%g)", desc, l.Kind, l.Index, l.LossTangent)
	}
}

// Validate checks the properties of the layer against its kind
func (l Layer) Validate() error {
	if _, ok := validKinds[l.Kind]; !ok {
		return fmt.Errorf("%w: unknown kind '%s'", ErrInvalidLayer, l.Kind)
	}
	if l.Index <= 0 || math.IsNaN(l.Index) || math.IsInf(l.Index, 0) {
		return fmt.Errorf("%w: %s: refractive index must be positive and finite: %g given", ErrInvalidLayer, l.Kind, l.Index)
	}
	if l.LossTangent < 0 || math.IsNaN(l.LossTangent) || math.IsInf(l.LossTangent, 0) {
		return fmt.Errorf("%w: %s: loss tangent must not be negative: %g given", ErrInvalidLayer, l.Kind, l.LossTangent)
	}

	if l.Kind != KindMaterial {
		if l.HalpernA != nil || l.HalpernB != nil {
			return fmt.Errorf("%w: %s: Halpern coefficients are only allowed on materials", ErrInvalidLayer, l.Kind)
		}
		if l.Kind == KindSource && l.Vacuum != nil {
			return fmt.Errorf("%w: %s: vacuum is only allowed on terminators", ErrInvalidLayer, l.Kind)
		}
		return nil
	}

	d := l.Thickness.Metres()
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %s '%s': thickness must be positive and finite: %s given", ErrInvalidLayer, l.Kind, l.Description, l.Thickness)
	}
	if l.Vacuum != nil {
		return fmt.Errorf("%w: %s '%s': vacuum is only allowed on terminators", ErrInvalidLayer, l.Kind, l.Description)
	}
	if l.HasHalpern() && (*l.HalpernA < 0 || *l.HalpernB < 0) {
		return fmt.Errorf("%w: %s '%s': Halpern coefficients must not be negative", ErrInvalidLayer, l.Kind, l.Description)
	}

	return nil
}
