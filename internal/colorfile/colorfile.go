// Package colorfile loads color overrides from HCL files. Override values are
// expressions evaluated against the canonical palette, so a file can derive
// new colors from existing ones:
//
//	all {
//	  base = "#000000"
//	}
//
//	mocha {
//	  text = mix(palette.mocha.text, palette.mocha.base, 0.2)
//	  red  = add_lightness(palette.mocha.red, 10)
//	}
package colorfile

import (
	"cmp"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/backwardspy/whiskers2/internal/palette"
)

// Load reads an HCL override file and evaluates it against p.
func Load(path string, p palette.Palette) (*palette.ColorOverrides, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading color overrides: %w", err)
	}
	return Parse(src, path, p)
}

// Parse evaluates HCL override source against p. Each top-level block is
// either "all" or a flavor identifier; its attributes map color identifiers
// to hex strings.
func Parse(src []byte, filename string, p palette.Palette) (*palette.ColorOverrides, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("color overrides body is not an hclsyntax.Body")
	}
	top := make(hcl.Attributes, len(body.Attributes))
	for name, attr := range body.Attributes {
		top[name] = attr.AsHCLAttribute()
	}
	if attrs := inSourceOrder(top); len(attrs) > 0 {
		return nil, fmt.Errorf("%s: unexpected top-level attribute %q; wrap overrides in an \"all\" or flavor block", attrs[0].Range, attrs[0].Name)
	}

	ctx := BuildEvalContext(p)
	raw := make(map[string]map[string]string, len(body.Blocks))

	for _, block := range body.Blocks {
		if len(block.Labels) > 0 {
			return nil, fmt.Errorf("%s: block %q takes no labels", block.DefRange(), block.Type)
		}
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %s", block.Type, diags.Error())
		}

		colors := raw[block.Type]
		if colors == nil {
			colors = make(map[string]string, len(attrs))
			raw[block.Type] = colors
		}
		for _, attr := range inSourceOrder(attrs) {
			name := attr.Name
			val, diags := attr.Expr.Value(ctx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluating %s.%s: %s", block.Type, name, diags.Error())
			}
			if val.Type() != cty.String || val.IsNull() {
				return nil, fmt.Errorf("%s.%s: expected a hex color string, got %s", block.Type, name, val.Type().FriendlyName())
			}
			colors[name] = val.AsString()
		}
	}

	return palette.NewColorOverrides(raw)
}

// inSourceOrder lists attributes in the order they appear in the file, so
// the first error reported is the first one written.
func inSourceOrder(attrs hcl.Attributes) []*hcl.Attribute {
	list := slices.Collect(maps.Values(attrs))
	slices.SortFunc(list, func(a, b *hcl.Attribute) int {
		return cmp.Compare(a.Range.Start.Byte, b.Range.Start.Byte)
	})
	return list
}
