// Package matrix expands a template's declared dimensions into the ordered
// set of render contexts for a multi-file render.
package matrix

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/backwardspy/whiskers2/internal/merge"
	"github.com/backwardspy/whiskers2/internal/palette"
)

// FlavorKey is the dimension whose values are expanded into full flavors.
const FlavorKey = "flavor"

// AccentKey names the shorthand dimension listing every accent color.
const AccentKey = "accent"

var (
	// ErrFlavorNotInMatrix is returned when a single-flavor render requests a
	// flavor the matrix does not declare.
	ErrFlavorNotInMatrix = errors.New("flavor not in matrix")
	// ErrInvalidFlavorValue is returned when a flavor dimension value is not a
	// known flavor.
	ErrInvalidFlavorValue = errors.New("invalid flavor value")
	// ErrUnknownIterable is returned for a shorthand dimension name that has no
	// built-in value list.
	ErrUnknownIterable = errors.New("unknown iterable")
	// ErrInvalidDimension is returned for a malformed dimension declaration.
	ErrInvalidDimension = errors.New("invalid matrix dimension")
)

// Dimension is one named list of values.
type Dimension struct {
	Key    string
	Values []string
}

// Spec is an ordered list of dimensions.
type Spec []Dimension

// Pair is one key and the value it takes in a combination.
type Pair struct {
	Key   string
	Value string
}

// Combination holds one value per dimension, in declared order.
type Combination []Pair

// builtins are the value lists behind shorthand dimensions.
var builtins = map[string]func() []string{
	FlavorKey: palette.FlavorIdentifiers,
	AccentKey: palette.AccentIdentifiers,
}

// FromValues decodes raw dimension declarations. Each entry is either the
// name of a built-in iterable ("flavor", "accent") or a mapping with a single
// key whose value is a list of scalars.
func FromValues(raw []any) (Spec, error) {
	spec := make(Spec, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, entry := range raw {
		dim, err := decodeDimension(entry)
		if err != nil {
			return nil, fmt.Errorf("matrix[%d]: %w", i, err)
		}
		if seen[dim.Key] {
			return nil, fmt.Errorf("matrix[%d]: %w: duplicate key %q", i, ErrInvalidDimension, dim.Key)
		}
		seen[dim.Key] = true
		spec = append(spec, dim)
	}
	return spec, nil
}

func decodeDimension(entry any) (Dimension, error) {
	switch v := entry.(type) {
	case string:
		values, ok := builtins[v]
		if !ok {
			return Dimension{}, fmt.Errorf("%w %q (valid: %s, %s)", ErrUnknownIterable, v, FlavorKey, AccentKey)
		}
		return Dimension{Key: v, Values: values()}, nil

	case map[string]any:
		if len(v) != 1 {
			return Dimension{}, fmt.Errorf("%w: expected a single key, got %d", ErrInvalidDimension, len(v))
		}
		var dim Dimension
		for key, list := range v {
			dim.Key = key
			items, ok := list.([]any)
			if !ok {
				return Dimension{}, fmt.Errorf("%w: %s: expected a list of values, got %T", ErrInvalidDimension, key, list)
			}
			if len(items) == 0 {
				return Dimension{}, fmt.Errorf("%w: %s: no values", ErrInvalidDimension, key)
			}
			for j, item := range items {
				switch item.(type) {
				case string, int, int64, uint64, float64, bool:
					dim.Values = append(dim.Values, fmt.Sprint(item))
				default:
					return Dimension{}, fmt.Errorf("%w: %s[%d]: expected a scalar, got %T", ErrInvalidDimension, key, j, item)
				}
			}
		}
		return dim, nil

	default:
		return Dimension{}, fmt.Errorf("%w: expected a name or a single-key mapping, got %T", ErrInvalidDimension, entry)
	}
}

// Expand returns the spec to enumerate. When onlyFlavor is set, the flavor
// dimension is restricted to that flavor, which must be one of the declared
// values. A spec without a flavor dimension is returned unchanged.
func Expand(spec Spec, onlyFlavor string) (Spec, error) {
	out := make(Spec, len(spec))
	copy(out, spec)
	if onlyFlavor == "" {
		return out, nil
	}

	for i, dim := range out {
		if dim.Key != FlavorKey {
			continue
		}
		found := slices.ContainsFunc(dim.Values, func(v string) bool {
			id, err := palette.ParseFlavor(v)
			return err == nil && id == onlyFlavor
		})
		if !found {
			return nil, fmt.Errorf("%w: %q is not one of %v", ErrFlavorNotInMatrix, onlyFlavor, dim.Values)
		}
		out[i] = Dimension{Key: FlavorKey, Values: []string{onlyFlavor}}
	}
	return out, nil
}

// Count returns the number of combinations the spec enumerates.
func (s Spec) Count() int {
	n := 1
	for _, dim := range s {
		n *= len(dim.Values)
	}
	return n
}

// Combinations enumerates the cartesian product of the spec's dimensions.
// The last dimension varies fastest.
func (s Spec) Combinations() iter.Seq[Combination] {
	lists := make([][]string, len(s))
	for i, dim := range s {
		lists[i] = dim.Values
	}
	return func(yield func(Combination) bool) {
		for values := range Product(lists) {
			combo := make(Combination, len(values))
			for i, v := range values {
				combo[i] = Pair{Key: s[i].Key, Value: v}
			}
			if !yield(combo) {
				return
			}
		}
	}
}

// Product yields every tuple of the n-ary cartesian product of lists, with
// the last list varying fastest. Each yielded slice is freshly allocated.
// Any empty list makes the product empty.
func Product[T any](lists [][]T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for _, l := range lists {
			if len(l) == 0 {
				return
			}
		}
		idx := make([]int, len(lists))
		for {
			tuple := make([]T, len(lists))
			for i, l := range lists {
				tuple[i] = l[idx[i]]
			}
			if !yield(tuple) {
				return
			}

			// Advance like an odometer from the rightmost position.
			i := len(lists) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(lists[i]) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// Context builds the render context for one combination on a fresh copy of
// base. The flavor value is replaced with the full Flavor from p.
func Context(base map[string]any, combo Combination, p palette.Palette) (map[string]any, error) {
	ctx := merge.Clone(base).(map[string]any)
	for _, pair := range combo {
		if pair.Key != FlavorKey {
			ctx[pair.Key] = pair.Value
			continue
		}
		id, err := palette.ParseFlavor(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFlavorValue, err)
		}
		flavor, ok := p.Flavor(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q is missing from the palette", ErrInvalidFlavorValue, id)
		}
		ctx[FlavorKey] = flavor
	}
	return ctx, nil
}
