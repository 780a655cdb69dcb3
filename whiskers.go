// Package whiskers2 loads theme templates: a YAML frontmatter header with
// generation options followed by a text/template body rendered against the
// color palette.
package whiskers2

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/backwardspy/whiskers2/internal/config"
	"github.com/backwardspy/whiskers2/internal/frontmatter"
	"github.com/backwardspy/whiskers2/internal/matrix"
	"github.com/backwardspy/whiskers2/internal/merge"
)

// Version is checked against the version requirement templates declare.
const Version = "2.0.0"

// StdinPath is the template path that reads from standard input.
const StdinPath = "-"

// Template is a parsed template file.
type Template struct {
	Name        string
	Body        string
	BodyLine    int // line of the original file where Body starts
	Frontmatter map[string]any
	Options     config.Options
	Matrix      matrix.Spec // nil when no matrix is declared
}

// Load reads and parses the template at path. StdinPath reads os.Stdin.
func Load(path string) (*Template, error) {
	var (
		src []byte
		err error
	)
	if path == StdinPath {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	name := "template"
	if path != StdinPath {
		name = filepath.Base(path)
	}
	return Parse(name, src)
}

// Parse splits src into frontmatter and body and decodes the template
// options, including the matrix declaration.
func Parse(name string, src []byte) (*Template, error) {
	doc, err := frontmatter.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	opts, err := config.FromNode(doc.Node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	t := &Template{
		Name:        name,
		Body:        doc.Body,
		BodyLine:    doc.BodyLine,
		Frontmatter: doc.Frontmatter,
		Options:     opts,
	}
	if opts.HasMatrix() {
		spec, err := matrix.FromValues(opts.Matrix)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.Matrix = spec
	}
	return t, nil
}

// CheckVersion verifies the template accepts this version of whiskers.
func (t *Template) CheckVersion() error {
	return t.Options.CheckVersion(Version)
}

// HasVersion reports whether the template declares a version requirement.
func (t *Template) HasVersion() bool {
	return t.Options.Version != ""
}

// Context returns the base render context: every frontmatter key except the
// options section, with overrides merged in.
func (t *Template) Context(overrides map[string]any) map[string]any {
	return merge.Apply(config.BaseContext(t.Frontmatter), overrides)
}

// IsMatrix reports whether the template renders one file per matrix
// combination.
func (t *Template) IsMatrix() bool {
	return t.Matrix != nil
}

// Expand returns the matrix to enumerate, restricted to onlyFlavor when set.
func (t *Template) Expand(onlyFlavor string) (matrix.Spec, error) {
	return matrix.Expand(t.Matrix, onlyFlavor)
}
