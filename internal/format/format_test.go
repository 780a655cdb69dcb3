package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/backwardspy/whiskers2/internal/colorfile"
	"github.com/backwardspy/whiskers2/internal/palette"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "basic formatting",
			input:    `all{red="#ff0000"}`,
			expected: `all { red = "#ff0000" }`,
		},
		{
			name: "already formatted stays same",
			input: `mocha {
  base = "#000000"
}
`,
			expected: `mocha {
  base = "#000000"
}
`,
		},
		{
			name:     "extra whitespace normalized",
			input:    `latte   {   text   =   "#111111"   }`,
			expected: `latte { text = "#111111" }`,
		},
		{
			name:     "empty content",
			input:    "",
			expected: "",
		},
		{
			name:     "multiple blank lines collapsed to one",
			input:    "all { red = \"#ff0000\" }\n\n\n\nmocha { base = \"#000000\" }",
			expected: "all { red = \"#ff0000\" }\n\nmocha { base = \"#000000\" }",
		},
		{
			name:     "single blank line preserved",
			input:    "all { red = \"#ff0000\" }\n\nmocha { base = \"#000000\" }",
			expected: "all { red = \"#ff0000\" }\n\nmocha { base = \"#000000\" }",
		},
		{
			name:     "blank lines after and before braces removed",
			input:    "mocha {\n\n  base = \"#000000\"\n\n}",
			expected: "mocha {\n  base = \"#000000\"\n}",
		},
		{
			name: "attributes aligned",
			input: `mocha {
  base = palette.mocha.crust
  rosewater = mix(palette.mocha.red, palette.mocha.text, 0.5)
}
`,
			expected: `mocha {
  base      = palette.mocha.crust
  rosewater = mix(palette.mocha.red, palette.mocha.text, 0.5)
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.input)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Format() =\n%s\nwant:\n%s", got, tt.expected)
			}
		})
	}
}

func buildPalette(t *testing.T, opts palette.Options) palette.Palette {
	t.Helper()
	p, err := palette.Build(opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return p
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"json", "YAML", "Hcl"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) error: %v", s, err)
		}
	}
	if _, err := ParseKind("toml"); err == nil {
		t.Error("ParseKind(toml) succeeded")
	}
}

func TestEncodeJSON(t *testing.T) {
	p := buildPalette(t, palette.Options{HexPrefix: "#"})

	var buf bytes.Buffer
	if err := Encode(&buf, p, JSON); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var decoded map[string]struct {
		Name   string `json:"name"`
		Dark   bool   `json:"dark"`
		Colors map[string]struct {
			Hex string `json:"hex"`
		} `json:"colors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got := decoded["mocha"].Colors["mauve"].Hex; got != "#cba6f7" {
		t.Errorf("mocha.mauve = %q, want #cba6f7", got)
	}
	if decoded["latte"].Dark {
		t.Error("latte.dark = true, want false")
	}

	out := buf.String()
	if strings.Index(out, `"latte"`) > strings.Index(out, `"mocha"`) {
		t.Error("flavors are not in canonical order")
	}
	if !strings.Contains(out, "\n  \"latte\": {") {
		t.Error("JSON output is not indented")
	}
}

func TestEncodeYAML(t *testing.T) {
	p := buildPalette(t, palette.Options{CapitalizeHex: true})

	var buf bytes.Buffer
	if err := Encode(&buf, p, YAML); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var decoded map[string]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	colors := decoded["frappe"]["colors"].(map[string]any)
	mauve := colors["mauve"].(map[string]any)
	if mauve["hex"] != "CA9EE6" {
		t.Errorf("frappe.mauve.hex = %v, want CA9EE6", mauve["hex"])
	}
}

func TestEncodeHCLRoundTrip(t *testing.T) {
	p := buildPalette(t, palette.Options{})

	var buf bytes.Buffer
	if err := Encode(&buf, p, HCL); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "latte {\n  rosewater") {
		t.Errorf("HCL output starts with %q", out[:min(len(out), 40)])
	}

	overrides, err := colorfile.Parse(buf.Bytes(), "palette.hcl", p)
	if err != nil {
		t.Fatalf("exported HCL does not parse as overrides: %v", err)
	}
	if got := overrides.Flavors["mocha"]["base"]; got != "#1e1e2e" {
		t.Errorf("mocha.base = %q, want #1e1e2e", got)
	}

	rebuilt := buildPalette(t, palette.Options{ColorOverrides: overrides})
	for _, f := range p.All() {
		for _, c := range f.All() {
			if got := rebuilt.Flavors[f.Identifier].Colors[c.Identifier].Hex; got != c.Hex {
				t.Errorf("%s.%s = %q after round trip, want %q", f.Identifier, c.Identifier, got, c.Hex)
			}
		}
	}
}
