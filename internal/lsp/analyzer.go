package lsp

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"text/template"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"gopkg.in/yaml.v3"

	"github.com/backwardspy/whiskers2"
	"github.com/backwardspy/whiskers2/internal/color"
	"github.com/backwardspy/whiskers2/internal/config"
	"github.com/backwardspy/whiskers2/internal/engine"
	"github.com/backwardspy/whiskers2/internal/frontmatter"
	"github.com/backwardspy/whiskers2/internal/matrix"
	"github.com/backwardspy/whiskers2/internal/palette"
)

const diagSource = "whiskers2"

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
)

var missingVersionMessage = fmt.Sprintf("no version requirement; add it to the frontmatter:\n%s:\n  version: %q", config.Section, whiskers2.Version)

// canonicalPalette is the palette used for previews: lowercase hex with a
// "#" prefix.
var canonicalPalette = sync.OnceValues(func() (palette.Palette, error) {
	return palette.Build(palette.Options{HexPrefix: "#"})
})

// AnalysisResult holds all information produced by analyzing a template.
type AnalysisResult struct {
	Diagnostics []protocol.Diagnostic
	Colors      []ColorLocation // hex literals
	Refs        []ColorRef      // color identifiers used in the body
	Keys        []string        // frontmatter keys available to the body
	BodyLine    int             // 0-based line where the body starts
	HasBody     bool            // false when the frontmatter is unterminated
}

// ColorLocation records a hex literal at a specific source position.
type ColorLocation struct {
	Range protocol.Range
	Color color.Color
}

// ColorRef records a palette color identifier used in the template body.
type ColorRef struct {
	Range      protocol.Range
	Identifier string
}

var (
	hexLiteral    = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6})\b`)
	fieldRef      = regexp.MustCompile(`\.([a-z][a-z0-9]*)\b`)
	yamlErrLine   = regexp.MustCompile(`line (\d+)`)
	templateErrAt = regexp.MustCompile(`template: [^:\s]+:(\d+)(?::(\d+))?:`)
)

// Analyze parses a template from memory and produces diagnostics, color
// literals and color references. It reports every problem it can find
// rather than stopping at the first.
func Analyze(content string) *AnalysisResult {
	result := &AnalysisResult{HasBody: true}

	p, err := canonicalPalette()
	if err != nil {
		result.addError(protocol.Range{}, fmt.Sprintf("loading palette: %v", err))
		return result
	}

	result.findColors(content)

	raw, body, bodyLine, hasFrontmatter := frontmatter.Split(content)
	if !hasFrontmatter && strings.TrimRight(firstLine(content), " \t\r") == "---" {
		result.HasBody = false
		result.addError(lineRange(content, 0), "frontmatter is missing its closing --- line")
		return result
	}
	result.BodyLine = bodyLine - 1

	fm := map[string]any{}
	var opts config.Options
	var spec matrix.Spec
	optionsOK := true
	if hasFrontmatter {
		var header *yaml.Node
		var keys map[string]*yaml.Node
		fm, header, keys, optionsOK = result.analyzeFrontmatter(content, raw)
		if optionsOK {
			opts, spec, optionsOK = result.analyzeOptions(content, fm, header, keys)
		}
	} else {
		result.addWarning(lineRange(content, 0), missingVersionMessage)
	}
	for k := range config.BaseContext(fm) {
		result.Keys = append(result.Keys, k)
	}
	slices.Sort(result.Keys)

	result.findRefs(body, result.BodyLine)

	e := &engine.Engine{Palette: p}
	tmpl, err := e.Parse("body", body)
	if err != nil {
		result.addTemplateError(content, err, DiagError)
		return result
	}
	if !optionsOK {
		return result
	}
	if opts.HasMatrix() {
		if _, err := e.Parse("filename", opts.Filename); err != nil {
			result.addError(lineRange(content, 0), err.Error())
			return result
		}
	}
	result.trialRender(content, e, tmpl, fm, spec)
	return result
}

// analyzeFrontmatter decodes the YAML header. keys maps option names to
// their key nodes; positions are relative to the header.
func (r *AnalysisResult) analyzeFrontmatter(content, raw string) (map[string]any, *yaml.Node, map[string]*yaml.Node, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		r.addError(r.yamlErrorRange(content, err), fmt.Sprintf("invalid frontmatter: %v", err))
		return map[string]any{}, nil, nil, false
	}

	var decoded any
	if doc.Kind == 0 {
		return map[string]any{}, nil, nil, true
	}
	if err := doc.Decode(&decoded); err != nil {
		r.addError(r.yamlErrorRange(content, err), fmt.Sprintf("invalid frontmatter: %v", err))
		return map[string]any{}, nil, nil, false
	}
	fm, ok := decoded.(map[string]any)
	if decoded != nil && !ok {
		r.addError(lineRange(content, 1), "frontmatter must be a mapping")
		return map[string]any{}, nil, nil, false
	}
	if fm == nil {
		fm = map[string]any{}
	}

	keys := map[string]*yaml.Node{}
	if len(doc.Content) == 1 {
		if section := mappingValue(doc.Content[0], config.Section, keys); section != nil {
			for _, name := range []string{"version", "matrix", "filename"} {
				mappingValue(section, name, keys)
			}
		}
	}
	return fm, &doc, keys, true
}

// analyzeOptions validates the whiskers section. ok is false when the
// options are unusable for a trial render.
func (r *AnalysisResult) analyzeOptions(content string, fm map[string]any, header *yaml.Node, keys map[string]*yaml.Node) (config.Options, matrix.Spec, bool) {
	at := func(name string) protocol.Range {
		if n, ok := keys[name]; ok {
			return nodeRange(n)
		}
		if n, ok := keys[config.Section]; ok {
			return nodeRange(n)
		}
		return lineRange(content, 1)
	}

	if _, ok := fm[config.Section]; !ok {
		r.addWarning(lineRange(content, 0), missingVersionMessage)
	}

	opts, err := config.FromNode(header)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrMatrixFilenameMissing):
			r.addError(at("matrix"), err.Error())
		case strings.Contains(err.Error(), "version"):
			r.addError(at("version"), err.Error())
		default:
			r.addError(at(config.Section), err.Error())
		}
		return opts, nil, false
	}

	if opts.Version == "" {
		if _, ok := fm[config.Section]; ok {
			r.addWarning(at(config.Section), missingVersionMessage)
		}
	} else if err := opts.CheckVersion(whiskers2.Version); err != nil {
		r.addError(at("version"), err.Error())
	}

	if !opts.HasMatrix() {
		return opts, nil, true
	}
	spec, err := matrix.FromValues(opts.Matrix)
	if err != nil {
		r.addError(at("matrix"), err.Error())
		return opts, nil, false
	}
	for _, dim := range spec {
		if dim.Key != matrix.FlavorKey {
			continue
		}
		for _, v := range dim.Values {
			if _, err := palette.ParseFlavor(v); err != nil {
				r.addError(at("matrix"), fmt.Sprintf("%v: %v", matrix.ErrInvalidFlavorValue, err))
				return opts, nil, false
			}
		}
	}
	return opts, spec, true
}

// trialRender executes the body once against the canonical palette to catch
// references to missing keys. Failures are warnings since real renders may
// supply overrides.
func (r *AnalysisResult) trialRender(content string, e *engine.Engine, tmpl *template.Template, fm map[string]any, spec matrix.Spec) {
	base := config.BaseContext(fm)

	var ctx map[string]any
	var err error
	if spec != nil {
		for combo := range spec.Combinations() {
			ctx, err = matrix.Context(base, combo, e.Palette)
			break
		}
		if ctx == nil && err == nil {
			return
		}
	} else {
		ctx, err = e.SingleContext(base, "mocha")
	}
	if err != nil {
		return
	}

	if err := tmpl.Execute(io.Discard, ctx); err != nil {
		r.addTemplateError(content, err, DiagWarning)
	}
}

// addTemplateError anchors a text/template error at the line it reports.
func (r *AnalysisResult) addTemplateError(content string, err error, severity protocol.DiagnosticSeverity) {
	rng := lineRange(content, r.BodyLine)
	if m := templateErrAt.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		rng = lineRange(content, r.BodyLine+line-1)
		if m[2] != "" {
			col, _ := strconv.Atoi(m[2])
			rng.Start.Character = uint32(col)
		}
	}
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   strPtr(diagSource),
		Message:  err.Error(),
	})
}

// yamlErrorRange anchors a YAML error at the header line it reports. Header
// line 1 is document line 1 (0-based), right after the opening ---.
func (r *AnalysisResult) yamlErrorRange(content string, err error) protocol.Range {
	if m := yamlErrLine.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return lineRange(content, line)
	}
	return lineRange(content, 0)
}

func (r *AnalysisResult) findColors(content string) {
	for i, line := range splitLines(content) {
		for _, m := range hexLiteral.FindAllStringIndex(line, -1) {
			rgb, opacity, err := color.ParseHex(line[m[0]:m[1]])
			if err != nil {
				continue
			}
			r.Colors = append(r.Colors, ColorLocation{
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(i), Character: uint32(m[0])},
					End:   protocol.Position{Line: uint32(i), Character: uint32(m[1])},
				},
				Color: color.New("", "", false, rgb, opacity, color.HexFormat{Prefix: "#"}),
			})
		}
	}
}

func (r *AnalysisResult) findRefs(body string, offset int) {
	ids := palette.ColorIdentifiers()
	for i, line := range splitLines(body) {
		for _, m := range fieldRef.FindAllStringSubmatchIndex(line, -1) {
			id := line[m[2]:m[3]]
			if !slices.Contains(ids, id) {
				continue
			}
			r.Refs = append(r.Refs, ColorRef{
				Range: protocol.Range{
					Start: protocol.Position{Line: uint32(offset + i), Character: uint32(m[2])},
					End:   protocol.Position{Line: uint32(offset + i), Character: uint32(m[3])},
				},
				Identifier: id,
			})
		}
	}
}

// addError adds an error-level diagnostic at the given range.
func (r *AnalysisResult) addError(rng protocol.Range, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: &DiagError,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

// addWarning adds a warning-level diagnostic at the given range.
func (r *AnalysisResult) addWarning(rng protocol.Range, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: &DiagWarning,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

// mappingValue returns the value node for key in a mapping node and records
// the key node in keys.
func mappingValue(n *yaml.Node, key string, keys map[string]*yaml.Node) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			keys[key] = n.Content[i]
			return n.Content[i+1]
		}
	}
	return nil
}

// nodeRange converts a header node position to a document range covering
// the node's key text.
func nodeRange(n *yaml.Node) protocol.Range {
	line := uint32(n.Line) // header line 1 is document line 1 (0-based)
	start := uint32(n.Column - 1)
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: start},
		End:   protocol.Position{Line: line, Character: start + uint32(len(n.Value))},
	}
}

// lineRange covers a whole line, clamped to the document.
func lineRange(content string, line int) protocol.Range {
	lines := splitLines(content)
	line = max(0, min(line, len(lines)-1))
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(len(strings.TrimRight(lines[line], "\r")))},
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// splitLines splits content into lines, preserving empty trailing lines.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

func strPtr(s string) *string {
	return &s
}
