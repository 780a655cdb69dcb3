// Package palette builds the canonical four-flavor color palette.
package palette

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/backwardspy/whiskers2/internal/color"
)

var (
	// ErrUnknownColorIdentifier is returned when an override names a color
	// that the palette does not define.
	ErrUnknownColorIdentifier = errors.New("unknown color identifier")

	// ErrUnknownFlavor is returned when a string does not name a flavor.
	ErrUnknownFlavor = errors.New("unknown flavor")
)

// Palette is the ordered set of flavors. It is never modified after Build.
type Palette struct {
	Flavors Flavors
	order   []string
}

// Flavors indexes flavors by identifier. Ranging over the map in a template
// visits identifiers alphabetically; All keeps the canonical order.
type Flavors map[string]Flavor

// Flavor is one theme variant with its ordered colors.
type Flavor struct {
	Name       string
	Identifier string
	Dark       bool
	Light      bool
	Colors     Colors
	order      []string
	rank       int
}

// Colors indexes a flavor's colors by identifier. Ranging over the map in a
// template visits identifiers alphabetically; All keeps the canonical order.
type Colors map[string]color.Color

// Options are the per-invocation settings applied while building the palette.
type Options struct {
	CapitalizeHex  bool
	HexPrefix      string
	ColorOverrides *ColorOverrides
}

// ColorOverrides replaces canonical colors with caller-supplied hex strings.
// All applies to every flavor; Flavors is keyed by flavor identifier and wins
// over All for the same color.
type ColorOverrides struct {
	All     map[string]string
	Flavors map[string]map[string]string
}

// Build constructs the palette from the canonical definition.
func Build(opts Options) (Palette, error) {
	def, err := loadDefinition()
	if err != nil {
		return Palette{}, fmt.Errorf("loading palette definition: %w", err)
	}
	return build(def, opts)
}

func build(def *definition, opts Options) (Palette, error) {
	format := color.HexFormat{Upper: opts.CapitalizeHex, Prefix: opts.HexPrefix}

	if opts.ColorOverrides != nil {
		for id := range opts.ColorOverrides.Flavors {
			if !def.hasFlavor(id) {
				return Palette{}, fmt.Errorf("color overrides: %w %q", ErrUnknownFlavor, id)
			}
		}
	}

	p := Palette{
		Flavors: make(Flavors, len(def.Flavors)),
		order:   make([]string, 0, len(def.Flavors)),
	}

	for i, fd := range def.Flavors {
		f := Flavor{
			Name:       fd.Name,
			Identifier: fd.Identifier,
			Dark:       fd.Dark,
			Light:      !fd.Dark,
			Colors:     make(Colors, len(def.Colors)),
			order:      make([]string, 0, len(def.Colors)),
			rank:       i,
		}

		for _, cd := range def.Colors {
			rgb, opacity, err := color.ParseHex(fd.Colors[cd.Identifier])
			if err != nil {
				return Palette{}, fmt.Errorf("%s.%s: %w", fd.Identifier, cd.Identifier, err)
			}
			f.Colors[cd.Identifier] = color.New(cd.Name, cd.Identifier, cd.Accent, rgb, opacity, format)
			f.order = append(f.order, cd.Identifier)
		}

		if opts.ColorOverrides != nil {
			if err := f.applyOverrides(opts.ColorOverrides.All); err != nil {
				return Palette{}, fmt.Errorf("color overrides (all): %w", err)
			}
			if err := f.applyOverrides(opts.ColorOverrides.Flavors[fd.Identifier]); err != nil {
				return Palette{}, fmt.Errorf("color overrides (%s): %w", fd.Identifier, err)
			}
		}

		p.Flavors[f.Identifier] = f
		p.order = append(p.order, f.Identifier)
	}

	return p, nil
}

// applyOverrides replaces colors in place. It is only called while the
// flavor is still being built.
func (f *Flavor) applyOverrides(overrides map[string]string) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c, ok := f.Colors[id]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownColorIdentifier, id)
		}
		rgb, opacity, err := color.ParseHex(overrides[id])
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		f.Colors[id] = color.New(c.Name, c.Identifier, c.Accent, rgb, opacity, c.Format())
	}
	return nil
}

// All returns the flavors in canonical order.
func (p Palette) All() []Flavor {
	flavors := make([]Flavor, 0, len(p.order))
	for _, id := range p.order {
		flavors = append(flavors, p.Flavors[id])
	}
	return flavors
}

// All returns the flavors in canonical order.
func (fs Flavors) All() []Flavor {
	flavors := slices.Collect(maps.Values(fs))
	slices.SortFunc(flavors, func(a, b Flavor) int {
		return cmp.Compare(a.rank, b.rank)
	})
	return flavors
}

// All returns the colors in canonical order. Colors the canonical definition
// does not declare sort last, by identifier.
func (cs Colors) All() []color.Color {
	rank := colorRanks()
	position := func(c color.Color) int {
		if r, ok := rank[c.Identifier]; ok {
			return r
		}
		return len(rank)
	}

	colors := slices.Collect(maps.Values(cs))
	slices.SortFunc(colors, func(a, b color.Color) int {
		return cmp.Or(
			cmp.Compare(position(a), position(b)),
			cmp.Compare(a.Identifier, b.Identifier),
		)
	})
	return colors
}

var colorRanks = sync.OnceValue(func() map[string]int {
	ids := ColorIdentifiers()
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	return rank
})

// Identifiers returns the flavor identifiers in canonical order.
func (p Palette) Identifiers() []string {
	return append([]string(nil), p.order...)
}

// Flavor returns the flavor with the given identifier.
func (p Palette) Flavor(id string) (Flavor, bool) {
	f, ok := p.Flavors[id]
	return f, ok
}

// All returns the flavor's colors in canonical order.
func (f Flavor) All() []color.Color {
	colors := make([]color.Color, 0, len(f.order))
	for _, id := range f.order {
		colors = append(colors, f.Colors[id])
	}
	return colors
}

// Accents returns the accent colors in canonical order.
func (f Flavor) Accents() []color.Color {
	var colors []color.Color
	for _, c := range f.All() {
		if c.Accent {
			colors = append(colors, c)
		}
	}
	return colors
}

// Identifiers returns the color identifiers in canonical order.
func (f Flavor) Identifiers() []string {
	return append([]string(nil), f.order...)
}

// FlavorIdentifiers returns the canonical flavor identifiers in order.
func FlavorIdentifiers() []string {
	def, err := loadDefinition()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(def.Flavors))
	for _, f := range def.Flavors {
		ids = append(ids, f.Identifier)
	}
	return ids
}

// AccentIdentifiers returns the identifiers of accent colors in canonical order.
func AccentIdentifiers() []string {
	def, err := loadDefinition()
	if err != nil {
		return nil
	}
	var ids []string
	for _, c := range def.Colors {
		if c.Accent {
			ids = append(ids, c.Identifier)
		}
	}
	return ids
}

// ColorIdentifiers returns every color identifier in canonical order.
func ColorIdentifiers() []string {
	def, err := loadDefinition()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(def.Colors))
	for _, c := range def.Colors {
		ids = append(ids, c.Identifier)
	}
	return ids
}

// ParseFlavor resolves a flavor identifier case-insensitively. "frappé" is
// accepted for "frappe".
func ParseFlavor(s string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	id = strings.ReplaceAll(id, "é", "e")

	def, err := loadDefinition()
	if err != nil {
		return "", err
	}
	if !def.hasFlavor(id) {
		return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownFlavor, s, strings.Join(FlavorIdentifiers(), ", "))
	}
	return id, nil
}

func (d *definition) hasFlavor(id string) bool {
	for _, f := range d.Flavors {
		if f.Identifier == id {
			return true
		}
	}
	return false
}
