// Package engine renders templates against the palette, either once to a
// writer or once per matrix combination to files.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/backwardspy/whiskers2/internal/logger"
	"github.com/backwardspy/whiskers2/internal/matrix"
	"github.com/backwardspy/whiskers2/internal/merge"
	"github.com/backwardspy/whiskers2/internal/palette"
)

// ErrCheckMismatch is returned by Check when rendered output differs from
// the expected file.
var ErrCheckMismatch = errors.New("output does not match")

// Engine executes templates with the palette's colors and functions.
type Engine struct {
	Palette   palette.Palette
	OutputDir string // prefix for matrix filenames
	DryRun    bool   // report matrix artifacts instead of writing them
	Log       *logger.Logger
}

// Artifact describes one file produced (or, in a dry run, planned) by a
// matrix render.
type Artifact struct {
	Path  string
	Bytes int
}

// Parse parses a template body with the engine's functions. References to
// missing context keys are errors at execution time.
func (e *Engine) Parse(name, body string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(FuncMap(e.Palette)).
		Option("missingkey=error").
		Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return tmpl, nil
}

// SingleContext builds the render context for a single-file render. flavors
// maps identifiers to every flavor; with a flavor selected, flavor holds it
// and each of its colors is also available by identifier.
func (e *Engine) SingleContext(base map[string]any, flavor string) (map[string]any, error) {
	ctx := merge.Clone(base).(map[string]any)
	ctx["flavors"] = e.Palette.Flavors
	if flavor == "" {
		return ctx, nil
	}

	f, ok := e.Palette.Flavor(flavor)
	if !ok {
		return nil, fmt.Errorf("%w %q", palette.ErrUnknownFlavor, flavor)
	}
	ctx["flavor"] = f
	for _, c := range f.All() {
		ctx[c.Identifier] = c
	}
	return ctx, nil
}

// RenderSingle executes tmpl once and writes the result to w.
func (e *Engine) RenderSingle(w io.Writer, tmpl *template.Template, base map[string]any, flavor string) error {
	ctx, err := e.SingleContext(base, flavor)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, ctx); err != nil {
		return fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
	}
	return nil
}

// RenderMatrix executes tmpl and the filename template once per combination
// of spec, in enumeration order. Each combination gets a fresh copy of base.
// The first error stops the batch; files already written are left in place.
func (e *Engine) RenderMatrix(tmpl *template.Template, filename string, spec matrix.Spec, base map[string]any) ([]Artifact, error) {
	nameTmpl, err := e.Parse(tmpl.Name()+":filename", filename)
	if err != nil {
		return nil, err
	}

	var artifacts []Artifact
	for combo := range spec.Combinations() {
		ctx, err := matrix.Context(base, combo, e.Palette)
		if err != nil {
			return artifacts, err
		}
		e.Log.WithFields(comboFields(combo)).Debug("rendering combination")

		var content bytes.Buffer
		if err := tmpl.Execute(&content, ctx); err != nil {
			return artifacts, fmt.Errorf("executing template %s: %w", tmpl.Name(), err)
		}
		var name strings.Builder
		if err := nameTmpl.Execute(&name, ctx); err != nil {
			return artifacts, fmt.Errorf("executing filename template: %w", err)
		}

		a, err := e.write(name.String(), content.Bytes())
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

func (e *Engine) write(name string, content []byte) (Artifact, error) {
	if strings.TrimSpace(name) == "" {
		return Artifact{}, fmt.Errorf("filename template rendered an empty name")
	}
	a := Artifact{Path: filepath.Join(e.OutputDir, name), Bytes: len(content)}

	if e.DryRun {
		e.Log.Info(fmt.Sprintf("would write %d bytes into %s", a.Bytes, a.Path))
		return a, nil
	}

	if dir := filepath.Dir(a.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Artifact{}, fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(a.Path, content, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("writing %s: %w", a.Path, err)
	}
	e.Log.WithFields(map[string]any{"bytes": a.Bytes}).Info("wrote " + a.Path)
	return a, nil
}

// Check compares rendered output with the contents of path.
func Check(path string, rendered []byte) error {
	expected, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if bytes.Equal(expected, rendered) {
		return nil
	}
	return fmt.Errorf("%w %s: %s", ErrCheckMismatch, path, firstDifference(expected, rendered))
}

// firstDifference describes the first line at which want and got diverge.
func firstDifference(want, got []byte) string {
	wantLines := strings.Split(string(want), "\n")
	gotLines := strings.Split(string(got), "\n")
	for i := 0; i < max(len(wantLines), len(gotLines)); i++ {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g || i >= len(wantLines) || i >= len(gotLines) {
			return fmt.Sprintf("line %d: want %q, got %q", i+1, w, g)
		}
	}
	return "contents differ"
}

func comboFields(combo matrix.Combination) map[string]any {
	fields := make(map[string]any, len(combo))
	for _, p := range combo {
		fields[p.Key] = p.Value
	}
	return fields
}
