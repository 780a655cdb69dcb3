package palette

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

//go:embed catppuccin.hcl
var definitionSource []byte

// definition is the decoded canonical palette source.
type definition struct {
	Colors  []colorDecl  `hcl:"color,block"`
	Flavors []flavorDecl `hcl:"flavor,block"`
}

type colorDecl struct {
	Identifier string `hcl:"identifier,label"`
	Name       string `hcl:"name"`
	Accent     bool   `hcl:"accent"`
}

type flavorDecl struct {
	Identifier string            `hcl:"identifier,label"`
	Name       string            `hcl:"name"`
	Dark       bool              `hcl:"dark"`
	Colors     map[string]string `hcl:"colors"`
}

var loadDefinition = sync.OnceValues(func() (*definition, error) {
	return parseDefinition(definitionSource, "catppuccin.hcl")
})

// parseDefinition decodes an HCL palette definition and checks that every
// flavor defines exactly the declared colors.
func parseDefinition(src []byte, filename string) (*definition, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	var def definition
	if diags := gohcl.DecodeBody(file.Body, nil, &def); diags.HasErrors() {
		return nil, fmt.Errorf("decoding palette definition: %s", diags.Error())
	}

	if len(def.Colors) == 0 {
		return nil, fmt.Errorf("palette definition declares no colors")
	}
	if len(def.Flavors) == 0 {
		return nil, fmt.Errorf("palette definition declares no flavors")
	}

	declared := make(map[string]bool, len(def.Colors))
	for _, c := range def.Colors {
		if declared[c.Identifier] {
			return nil, fmt.Errorf("color %q declared twice", c.Identifier)
		}
		declared[c.Identifier] = true
	}

	seen := make(map[string]bool, len(def.Flavors))
	for _, f := range def.Flavors {
		if seen[f.Identifier] {
			return nil, fmt.Errorf("flavor %q declared twice", f.Identifier)
		}
		seen[f.Identifier] = true

		for _, c := range def.Colors {
			if _, ok := f.Colors[c.Identifier]; !ok {
				return nil, fmt.Errorf("flavor %q: missing color %q", f.Identifier, c.Identifier)
			}
		}
		for id := range f.Colors {
			if !declared[id] {
				return nil, fmt.Errorf("flavor %q: %w %q", f.Identifier, ErrUnknownColorIdentifier, id)
			}
		}
	}

	return &def, nil
}
