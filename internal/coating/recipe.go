package coating

import (
	"errors"
	"fmt"

	"github.com/roman-kulish/mmwave-stack/internal/layer"
	"github.com/roman-kulish/mmwave-stack/internal/tmm"
)

// Recipe describes an anti-reflection coating built up from sheets of a few materials,
// each sheet glued down with a bonding layer, on top of a substrate.
//
// For counts {2, 1} and materials {A, B} the stack is
//
//	source, A, bond, A, bond, B, bond, substrate, terminator
type Recipe struct {
	// Materials are ordered from the outermost (next to the source) to the innermost
	Materials []layer.Layer `yaml:"materials"`

	// Bond follows every material sheet; nil means the sheets are not bonded
	Bond *layer.Layer `yaml:"bond"`

	Substrate layer.Layer `yaml:"substrate"`

	// Source and Terminator default to vacuum on the source side and the substrate
	// medium on the far side
	Source     *layer.Layer `yaml:"source"`
	Terminator *layer.Layer `yaml:"terminator"`
}

// Validate checks the recipe's layers
func (r *Recipe) Validate() error {
	if len(r.Materials) == 0 {
		return fmt.Errorf("coating.Recipe: at least one material is required")
	}

	var errs []error
	for i, m := range r.Materials {
		if m.Kind != layer.KindMaterial {
			errs = append(errs, fmt.Errorf("coating.Recipe: material %d: %s given", i, m.Kind))
			continue
		}
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("coating.Recipe: material %d: %w", i, err))
		}
	}
	if r.Bond != nil {
		if err := r.Bond.Validate(); err != nil || r.Bond.Kind != layer.KindMaterial {
			errs = append(errs, fmt.Errorf("coating.Recipe: invalid bond: %w", errors.Join(err, kindError(*r.Bond, layer.KindMaterial))))
		}
	}
	if err := r.Substrate.Validate(); err != nil || r.Substrate.Kind != layer.KindMaterial {
		errs = append(errs, fmt.Errorf("coating.Recipe: invalid substrate: %w", errors.Join(err, kindError(r.Substrate, layer.KindMaterial))))
	}
	if r.Source != nil && r.Source.Kind != layer.KindSource {
		errs = append(errs, fmt.Errorf("coating.Recipe: invalid source: %w", kindError(*r.Source, layer.KindSource)))
	}
	if r.Terminator != nil && r.Terminator.Kind != layer.KindTerminator {
		errs = append(errs, fmt.Errorf("coating.Recipe: invalid terminator: %w", kindError(*r.Terminator, layer.KindTerminator)))
	}

	return errors.Join(errs...)
}

func kindError(l layer.Layer, want layer.Kind) error {
	if l.Kind == want {
		return nil
	}
	return fmt.Errorf("%w: %s expected, %s given", tmm.ErrInvalidStack, want, l.Kind)
}

// Build lays the recipe down with counts[i] sheets of Materials[i]
func (r *Recipe) Build(counts []int) (layer.Stack, error) {
	if len(counts) != len(r.Materials) {
		return nil, fmt.Errorf("building recipe: %d counts for %d materials", len(counts), len(r.Materials))
	}

	source := layer.Source(1, 0)
	if r.Source != nil {
		source = *r.Source
	}
	terminator := layer.Terminator(false)
	if r.Terminator != nil {
		terminator = *r.Terminator
	}

	stack := layer.Stack{source}
	for i, m := range r.Materials {
		if counts[i] < 0 {
			return nil, fmt.Errorf("building recipe: negative count for %s: %d", m.Description, counts[i])
		}
		for range counts[i] {
			stack = append(stack, m)
			if r.Bond != nil {
				stack = append(stack, *r.Bond)
			}
		}
	}
	stack = append(stack, r.Substrate, terminator)

	return stack, nil
}
