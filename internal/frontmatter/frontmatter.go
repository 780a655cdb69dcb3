// Package frontmatter splits a template into its YAML header and body.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrInvalid is returned when the frontmatter is not a YAML mapping.
var ErrInvalid = errors.New("invalid frontmatter")

// Document is a template split into frontmatter and body.
type Document struct {
	// Frontmatter is the decoded header; empty when the template has none.
	Frontmatter map[string]any
	// Raw is the header text between the delimiters.
	Raw string
	// Body is everything after the closing delimiter.
	Body string
	// BodyLine is the 1-based line in the original text where Body starts.
	BodyLine int
	// Node is the parsed header, keeping scalars as written. Nil when the
	// template has no frontmatter or an empty one.
	Node *yaml.Node
}

// Split locates the frontmatter without decoding it. ok is false when the
// text does not open with a delimiter line or the closing delimiter is missing.
func Split(text string) (raw, body string, bodyLine int, ok bool) {
	first, rest, found := cutLine(text)
	if !found || strings.TrimRight(first, " \t\r") != delimiter {
		return "", text, 1, false
	}

	var header strings.Builder
	line := 2
	for {
		l, next, more := cutLine(rest)
		if strings.TrimRight(l, " \t\r") == delimiter {
			return header.String(), next, line + 1, true
		}
		if !more {
			return "", text, 1, false
		}
		header.WriteString(l)
		header.WriteByte('\n')
		rest = next
		line++
	}
}

// Parse splits text and decodes the frontmatter.
func Parse(text string) (*Document, error) {
	raw, body, bodyLine, ok := Split(text)
	doc := &Document{
		Frontmatter: map[string]any{},
		Raw:         raw,
		Body:        body,
		BodyLine:    bodyLine,
	}
	if !ok {
		return doc, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if node.Kind == 0 {
		return doc, nil
	}
	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch v := decoded.(type) {
	case nil:
	case map[string]any:
		doc.Frontmatter = v
		doc.Node = &node
	default:
		return nil, fmt.Errorf("%w: expected a mapping, got %T", ErrInvalid, decoded)
	}
	return doc, nil
}

// cutLine returns the first line of s without its newline and the remainder.
// found reports whether a newline terminated the line.
func cutLine(s string) (line, rest string, found bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
