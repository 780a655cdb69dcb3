// Package config decodes and validates the template options section of a
// template's frontmatter.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Section is the frontmatter key holding template options.
const Section = "whiskers"

var (
	// ErrMatrixFilenameMissing is returned when a matrix is declared without a
	// filename template.
	ErrMatrixFilenameMissing = errors.New("filename template is required for multi-file render")
	// ErrIncompatibleVersion is returned when the running version does not
	// satisfy the template's version requirement.
	ErrIncompatibleVersion = errors.New("incompatible whiskers version")
	// ErrInvalidOptions is returned for malformed options.
	ErrInvalidOptions = errors.New("invalid template options")
)

// Options are the settings a template declares under the whiskers section.
type Options struct {
	// Version is a semantic version requirement such as "2.0.0" or ">=2.1, <3".
	Version string `yaml:"version" validate:"omitempty,version_req"`
	// Matrix holds the raw dimension declarations; see the matrix package.
	Matrix Matrix `yaml:"matrix"`
	// Filename is the template used to name each matrix artifact.
	Filename string `yaml:"filename" validate:"required_with=Matrix"`
}

// Matrix is a list of dimension declarations. Scalars are kept as the text
// written in the template, so 1.10 stays "1.10" and 010 stays "010".
type Matrix []any

func (m *Matrix) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: matrix must be a list", n.Line)
	}
	out := make(Matrix, 0, len(n.Content))
	for _, item := range n.Content {
		v, err := verbatim(item)
		if err != nil {
			return err
		}
		out = append(out, v)
	}
	*m = out
	return nil
}

// verbatim converts a node to plain values with every scalar as a string.
// Null scalars become nil.
func verbatim(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return verbatim(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := verbatim(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := verbatim(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[n.Content[i].Value] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("line %d: unsupported matrix value", n.Line)
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		err := v.RegisterValidation("version_req", func(fl validator.FieldLevel) bool {
			_, err := ParseRequirement(fl.Field().String())
			return err == nil
		})
		if err != nil {
			panic(fmt.Sprintf("registering version_req validation: %v", err))
		}
		validateInst = v
	})
	return validateInst
}

// FromNode extracts Options from a parsed frontmatter header. A nil or
// empty header, or one without the section, yields zero Options.
func FromNode(header *yaml.Node) (Options, error) {
	var opts Options
	if header == nil || header.Kind == 0 {
		return opts, nil
	}
	root := header
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return opts, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return opts, fmt.Errorf("%w: frontmatter must be a mapping", ErrInvalidOptions)
	}

	section := sectionNode(root)
	if section == nil || section.ShortTag() == "!!null" {
		return opts, nil
	}
	if section.Kind != yaml.MappingNode {
		return opts, fmt.Errorf("%w: %s must be a mapping", ErrInvalidOptions, Section)
	}
	if err := section.Decode(&opts); err != nil {
		return opts, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func sectionNode(root *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != Section {
			continue
		}
		n := root.Content[i+1]
		if n.Kind == yaml.AliasNode {
			n = n.Alias
		}
		return n
	}
	return nil
}

// Validate checks the option fields against their constraints.
func (o Options) Validate() error {
	return convertValidationError(validatorInstance().Struct(o))
}

// HasMatrix reports whether the template declares a matrix.
func (o Options) HasMatrix() bool {
	return o.Matrix != nil
}

// CheckVersion verifies that current satisfies the version requirement.
// Templates without a requirement always pass.
func (o Options) CheckVersion(current string) error {
	if o.Version == "" {
		return nil
	}
	req, err := ParseRequirement(o.Version)
	if err != nil {
		return fmt.Errorf("%w: version: %v", ErrInvalidOptions, err)
	}
	v, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("parsing running version %q: %w", current, err)
	}
	if !req.Check(v) {
		return fmt.Errorf("%w: template requires %s, running %s", ErrIncompatibleVersion, o.Version, current)
	}
	return nil
}

// ParseRequirement parses a version requirement. A bare version such as
// "2.1.0" is treated as "^2.1.0": any compatible version at or above it.
func ParseRequirement(s string) (*semver.Constraints, error) {
	var groups []string
	for _, group := range strings.Split(s, "||") {
		var parts []string
		for _, part := range strings.Split(group, ",") {
			part = strings.TrimSpace(part)
			if part != "" && isBareVersion(part) {
				part = "^" + part
			}
			parts = append(parts, part)
		}
		groups = append(groups, strings.Join(parts, ", "))
	}
	return semver.NewConstraint(strings.Join(groups, " || "))
}

func isBareVersion(s string) bool {
	c := s[0]
	if c == 'v' && len(s) > 1 {
		c = s[1]
	}
	return c >= '0' && c <= '9'
}

// MissingVersionHint explains how to declare a version requirement.
func MissingVersionHint(current string) string {
	return fmt.Sprintf("no whiskers version requirement specified in template; "+
		"this template may not be compatible with this version of whiskers. "+
		"Add the minimum supported version to the frontmatter:\n\n---\n%s:\n  version: %q\n---",
		Section, current)
}

// BaseContext returns the frontmatter without the options section. The
// result is a new map; nested values are shared with frontmatter.
func BaseContext(frontmatter map[string]any) map[string]any {
	ctx := make(map[string]any, len(frontmatter))
	for k, v := range frontmatter {
		if k == Section {
			continue
		}
		ctx[k] = v
	}
	return ctx
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fe := ves[0]
		if fe.StructField() == "Filename" && fe.Tag() == "required_with" {
			return ErrMatrixFilenameMissing
		}
		return fmt.Errorf("%w: %s failed validation for tag '%s'", ErrInvalidOptions, strings.ToLower(fe.StructField()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
}
