package layer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

// Stack is an ordered sequence of layers from the source (first) to the terminator (last)
type Stack []Layer

// Validate checks that the stack is a source, at least one material and a terminator,
// and that every layer is valid for its position.
func (s Stack) Validate() error {
	if len(s) < 3 {
		return fmt.Errorf("%w: must have a source, at least one material and a terminator: %d layers given",
			tmm.ErrInvalidStack, len(s))
	}

	var errs []error
	for i, l := range s {
		var want Kind
		switch i {
		case 0:
			want = KindSource
		case len(s) - 1:
			want = KindTerminator
		default:
			want = KindMaterial
		}

		if l.Kind != want {
			errs = append(errs, fmt.Errorf("%w: layer %d must be a %s, %s given", tmm.ErrInvalidStack, i, want, l.Kind))
			continue
		}
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("layer %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Resolve validates the stack and returns a copy ready for calculation. A non-vacuum
// terminator left at index 1 takes the index of the last material, so the wave leaves
// the stack into that medium.
func (s Stack) Resolve() (Stack, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	out := make(Stack, len(s))
	copy(out, s)

	last := len(out) - 1
	term := out[last]
	if term.Index == 1 && !term.IsVacuum() {
		term.Index = out[last-1].Index
		out[last] = term
	}

	return out, nil
}

// Arrays splits the stack into the parallel index, loss tangent and thickness slices
func (s Stack) Arrays() (index, lossTangent, thickness []float64) {
	index = make([]float64, len(s))
	lossTangent = make([]float64, len(s))
	thickness = make([]float64, len(s))

	for i, l := range s {
		index[i] = l.Index
		lossTangent[i] = l.LossTangent
		thickness[i] = l.EffectiveThickness()
	}
	return index, lossTangent, thickness
}

// Halpern returns the Halpern fit of every material which has both coefficients set,
// keyed by position in the stack.
func (s Stack) Halpern() map[int]tmm.Halpern {
	out := make(map[int]tmm.Halpern)
	for i, l := range s {
		if l.Kind != KindMaterial || !l.HasHalpern() {
			continue
		}
		out[i] = tmm.Halpern{A: *l.HalpernA, B: *l.HalpernB, N: l.Index}
	}
	return out
}

// Thickness returns the total thickness of the material layers in metres
func (s Stack) Thickness() float64 {
	var total float64
	for _, l := range s {
		if l.Kind == KindMaterial {
			total += l.Thickness.Metres()
		}
	}
	return total
}

func (s Stack) String() string {
	parts := make([]string, len(s))
	for i, l := range s {
		parts[i] = l.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
