package colorfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backwardspy/whiskers2/internal/palette"
)

func canonical(t *testing.T) palette.Palette {
	t.Helper()
	p, err := palette.Build(palette.Options{})
	if err != nil {
		t.Fatalf("palette.Build() error: %v", err)
	}
	return p
}

func writeTempHCL(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.hcl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempHCL(t, `
all {
  base = "#000000"
}

mocha {
  text   = palette.latte.text
  crust  = mix(palette.mocha.base, "#ffffff", 1)
  mantle = mod_opacity("#112233", 0.5)
  red    = mod_lightness(palette.mocha.red, 100)
  blue   = add_hue("#ff0000", 120)
}
`)

	o, err := Load(path, canonical(t))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := o.All["base"]; got != "#000000" {
		t.Errorf("all.base = %q, want #000000", got)
	}

	tests := []struct {
		color string
		want  string
	}{
		{"text", "#4c4f69"},
		{"crust", "#ffffff"},
		{"mantle", "#11223380"},
		{"red", "#ffffff"},
		{"blue", "#00ff00"},
	}
	for _, tt := range tests {
		if got := o.Flavors["mocha"][tt.color]; got != tt.want {
			t.Errorf("mocha.%s = %q, want %q", tt.color, got, tt.want)
		}
	}
}

func TestLoadAppliesThroughBuild(t *testing.T) {
	path := writeTempHCL(t, `
frappe {
  base = sub_lightness(palette.frappe.base, 100)
}
`)
	o, err := Load(path, canonical(t))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	p, err := palette.Build(palette.Options{ColorOverrides: o, HexPrefix: "#"})
	if err != nil {
		t.Fatalf("palette.Build() error: %v", err)
	}
	if got := p.Flavors["frappe"].Colors["base"].Hex; got != "#000000" {
		t.Errorf("frappe.base = %q, want #000000", got)
	}
	if got := p.Flavors["mocha"].Colors["base"].Hex; got != "#1e1e2e" {
		t.Errorf("mocha.base = %q, want untouched #1e1e2e", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax", `all {`, "parsing HCL"},
		{"top-level attribute", `base = "#000000"`, "unexpected top-level attribute"},
		{"labels", "all \"x\" {\n  base = \"#000000\"\n}\n", "takes no labels"},
		{"unknown reference", "all {\n  base = palette.mocha.nope\n}\n", "evaluating all.base"},
		{"not a string", "all {\n  base = 42\n}\n", "expected a hex color string"},
		{"bad hex in function", "all {\n  base = add_hue(\"#12\", 10)\n}\n", "evaluating all.base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl", canonical(t))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseReportsFirstErrorInSourceOrder(t *testing.T) {
	src := "zeta = \"#000000\"\nalpha = \"#000000\"\nmid = \"#000000\"\n"
	for range 20 {
		_, err := Parse([]byte(src), "test.hcl", canonical(t))
		if err == nil || !strings.Contains(err.Error(), `"zeta"`) {
			t.Fatalf("error = %v, want it to name zeta", err)
		}
	}

	src = "mocha {\n  text = 1\n  base = 2\n  red = 3\n}\n"
	for range 20 {
		_, err := Parse([]byte(src), "test.hcl", canonical(t))
		if err == nil || !strings.Contains(err.Error(), "mocha.text") {
			t.Fatalf("error = %v, want it to name mocha.text", err)
		}
	}
}

func TestParseUnknownFlavor(t *testing.T) {
	_, err := Parse([]byte("espresso {\n  base = \"#000000\"\n}\n"), "test.hcl", canonical(t))
	if !errors.Is(err, palette.ErrUnknownFlavor) {
		t.Errorf("error = %v, want ErrUnknownFlavor", err)
	}
}

func TestBuildEvalContextFunctions(t *testing.T) {
	ctx := BuildEvalContext(canonical(t))
	for _, name := range []string{"mix", "mod_hue", "add_saturation", "sub_lightness", "add_opacity"} {
		if _, ok := ctx.Functions[name]; !ok {
			t.Errorf("missing function %q", name)
		}
	}
	mocha := ctx.Variables["palette"].GetAttr("mocha")
	if got := mocha.GetAttr("base").AsString(); got != "#1e1e2e" {
		t.Errorf("palette.mocha.base = %q, want #1e1e2e", got)
	}
}
