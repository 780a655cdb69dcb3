// Package merge reconciles frontmatter values with caller-supplied overrides.
//
// Values are the generic shapes produced by decoding JSON or YAML: nil, bool,
// numbers, strings, []any and map[string]any.
package merge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrOverrideDecode is returned when override data is not a mapping of
// string keys to plain values.
var ErrOverrideDecode = errors.New("invalid overrides")

// Merge combines base and override. Two mappings are merged key by key,
// recursing where both sides hold a mapping; every other combination yields
// override. Lists are replaced, never concatenated. Neither input is modified.
func Merge(base, override any) any {
	b, ok := base.(map[string]any)
	if !ok {
		return override
	}
	o, ok := override.(map[string]any)
	if !ok {
		return override
	}

	result := make(map[string]any, len(b)+len(o))
	for k, v := range b {
		result[k] = v
	}
	for k, v := range o {
		if existing, ok := result[k]; ok {
			result[k] = Merge(existing, v)
		} else {
			result[k] = v
		}
	}
	return result
}

// Apply merges every override key into a copy of base: keys missing from base
// are added, keys present in both are merged with Merge.
func Apply(base, overrides map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(overrides))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range overrides {
		if existing, ok := result[k]; ok {
			result[k] = Merge(existing, v)
		} else {
			result[k] = v
		}
	}
	return result
}

// Clone deep-copies mappings and lists so the copy can be changed without
// affecting v.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = Clone(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = Clone(e)
		}
		return s
	default:
		return v
	}
}

// Decode parses JSON or YAML override data. The document must be a mapping;
// nested mappings must have string keys.
func Decode(data []byte) (map[string]any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOverrideDecode, err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a mapping at the top level, got %T", ErrOverrideDecode, raw)
	}
	if err := validate("", m); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeFile reads and decodes an override file.
func DecodeFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func validate(path string, v any) error {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if err := validate(join(path, k), e); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			if err := validate(fmt.Sprintf("%s[%d]", path, i), e); err != nil {
				return err
			}
		}
	case map[any]any:
		return fmt.Errorf("%w: %s: mapping keys must be strings", ErrOverrideDecode, path)
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
