// Package format serializes a built palette and formats color override files.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/backwardspy/whiskers2/internal/color"
	"github.com/backwardspy/whiskers2/internal/palette"
)

// Kind names an output encoding.
type Kind string

const (
	JSON Kind = "json"
	YAML Kind = "yaml"
	HCL  Kind = "hcl"
)

// Kinds lists the supported encodings.
var Kinds = []Kind{JSON, YAML, HCL}

// ParseKind resolves an encoding name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case JSON, YAML, HCL:
		return k, nil
	}
	return "", fmt.Errorf("unknown format %q (valid: json, yaml, hcl)", s)
}

// Encode writes p to w. Flavors and colors keep their canonical order.
//
// The HCL encoding is a color override file with one block per flavor, so it
// can be edited and passed back as overrides.
func Encode(w io.Writer, p palette.Palette, kind Kind) error {
	switch kind {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case HCL:
		_, err := io.WriteString(w, encodeHCL(p))
		return err
	default:
		return fmt.Errorf("unknown format %q", kind)
	}
}

var overrideHex = color.HexFormat{Prefix: "#"}

func encodeHCL(p palette.Palette) string {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, flavor := range p.All() {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock(flavor.Identifier, nil)
		for _, c := range flavor.All() {
			block.Body().SetAttributeValue(c.Identifier, cty.StringVal(c.WithFormat(overrideHex).Hex))
		}
	}
	formatted, _ := Format(string(f.Bytes()))
	return formatted
}

var multipleBlankLines = regexp.MustCompile(`\n{3,}`)
var blankLineAfterOpenBrace = regexp.MustCompile(`\{\n\s*\n`)
var blankLineBeforeCloseBrace = regexp.MustCompile(`\n\s*\n(\s*\})`)

// Format takes HCL source content and returns it formatted according to
// HCL canonical style rules. It uses hclwrite.Format which handles
// indentation, spacing, and newline normalization.
//
// The formatter works even on partial/invalid HCL.
func Format(content string) (string, error) {
	formatted := hclwrite.Format([]byte(content))
	// Collapse multiple consecutive blank lines into a single blank line.
	collapsed := multipleBlankLines.ReplaceAllString(string(formatted), "\n\n")
	// Remove blank lines immediately after opening braces.
	collapsed = blankLineAfterOpenBrace.ReplaceAllString(collapsed, "{\n")
	// Remove blank lines immediately before closing braces.
	collapsed = blankLineBeforeCloseBrace.ReplaceAllString(collapsed, "\n${1}")
	return collapsed, nil
}
