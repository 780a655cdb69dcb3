package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// posInRange returns true if pos is within the range [r.Start, r.End).
// The end position is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// extractText extracts the source text at a given LSP range from document content.
func extractText(content string, r protocol.Range) string {
	lines := strings.Split(content, "\n")

	startLine := int(r.Start.Line)
	endLine := int(r.End.Line)

	if startLine >= len(lines) {
		return ""
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	if startLine == endLine {
		line := lines[startLine]
		startChar := int(r.Start.Character)
		endChar := int(r.End.Character)
		if startChar > len(line) {
			startChar = len(line)
		}
		if endChar > len(line) {
			endChar = len(line)
		}
		return line[startChar:endChar]
	}

	// Multi-line range
	var parts []string
	for i := startLine; i <= endLine; i++ {
		line := lines[i]
		if i == startLine {
			startChar := int(r.Start.Character)
			if startChar > len(line) {
				startChar = len(line)
			}
			parts = append(parts, line[startChar:])
		} else if i == endLine {
			endChar := int(r.End.Character)
			if endChar > len(line) {
				endChar = len(line)
			}
			parts = append(parts, line[:endChar])
		} else {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// hover produces a Hover response for the given cursor position. Hex
// literals show their RGB and HSL notations; palette color references show
// the color in every flavor. Returns nil if nothing is under the cursor.
func hover(result *AnalysisResult, pos protocol.Position) *protocol.Hover {
	if result == nil {
		return nil
	}

	for _, cl := range result.Colors {
		if posInRange(pos, cl.Range) {
			md := fmt.Sprintf("`%s` \u00b7 `%s` \u00b7 `%s`", cl.Color.Hex, cl.Color.CSSRGBA(), cl.Color.CSSHSLA())
			return markdownHover(md, cl.Range)
		}
	}

	for _, ref := range result.Refs {
		if posInRange(pos, ref.Range) {
			md := colorTable(ref.Identifier)
			if md == "" {
				return nil
			}
			return markdownHover(md, ref.Range)
		}
	}

	return nil
}

// colorTable renders a markdown table of one color across all flavors.
func colorTable(id string) string {
	p, err := canonicalPalette()
	if err != nil {
		return ""
	}

	var b strings.Builder
	for i, f := range p.All() {
		c, ok := f.Colors[id]
		if !ok {
			return ""
		}
		if i == 0 {
			fmt.Fprintf(&b, "**%s** `%s`\n\n| flavor | hex | rgb |\n|---|---|---|\n", c.Name, id)
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` |\n", f.Name, c.Hex, c.CSSRGB())
	}
	return b.String()
}

func markdownHover(md string, rng protocol.Range) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: md,
		},
		Range: &rng,
	}
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return hover(s.getResult(string(params.TextDocument.URI)), params.Position), nil
}
