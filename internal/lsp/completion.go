package lsp

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/backwardspy/whiskers2/internal/engine"
	"github.com/backwardspy/whiskers2/internal/matrix"
	"github.com/backwardspy/whiskers2/internal/palette"
)

var (
	// fieldPath matches a trailing field chain like ".flavor.Colors.re".
	fieldPath = regexp.MustCompile(`((?:\.[A-Za-z_][A-Za-z0-9_]*)*)\.([A-Za-z0-9_]*)$`)
	// channelArg matches the first argument position of add, sub and mod.
	channelArg = regexp.MustCompile(`\b(?:add|sub|mod)\s+"?[a-z]*$`)
	// matrixList matches an open inline list after a builtin matrix key.
	matrixList = regexp.MustCompile(`\b(` + matrix.FlavorKey + `|` + matrix.AccentKey + `):\s*\[[^\]]*$`)
)

var (
	flavorFields = []string{"Name", "Identifier", "Dark", "Light", "Colors", "All", "Accents", "Identifiers"}
	colorFields  = []string{"Name", "Identifier", "Accent", "Hex", "RGB", "HSL", "Opacity"}
)

// complete produces completion items given an analysis result, document
// content and cursor position.
func complete(result *AnalysisResult, content string, pos protocol.Position) []protocol.CompletionItem {
	lines := splitLines(content)
	if int(pos.Line) >= len(lines) {
		return nil
	}

	line := lines[pos.Line]
	textBeforeCursor := line[:min(int(pos.Character), len(line))]

	if inFrontmatter(result, int(pos.Line)) {
		return frontmatterCompletions(textBeforeCursor)
	}

	action, ok := openAction(textBeforeCursor)
	if !ok {
		return nil
	}

	if channelArg.MatchString(action) {
		return channelCompletions(strings.HasSuffix(strings.TrimRight(action, "abcdefghijklmnopqrstuvwxyz"), `"`))
	}

	if m := fieldPath.FindStringSubmatch(action); m != nil {
		var segments []string
		if m[1] != "" {
			segments = strings.Split(m[1][1:], ".")
		}
		return fieldCompletions(result, segments)
	}

	return functionCompletions()
}

func inFrontmatter(result *AnalysisResult, line int) bool {
	if result == nil {
		return false
	}
	if !result.HasBody {
		return line > 0
	}
	return line > 0 && line < result.BodyLine-1
}

// openAction returns the text of the template action the cursor is in.
func openAction(textBeforeCursor string) (string, bool) {
	start := strings.LastIndex(textBeforeCursor, "{{")
	if start == -1 {
		return "", false
	}
	action := textBeforeCursor[start+2:]
	if strings.Contains(action, "}}") {
		return "", false
	}
	return action, true
}

func frontmatterCompletions(textBeforeCursor string) []protocol.CompletionItem {
	m := matrixList.FindStringSubmatch(textBeforeCursor)
	if m == nil {
		return nil
	}
	ids := palette.FlavorIdentifiers()
	if m[1] == matrix.AccentKey {
		ids = palette.AccentIdentifiers()
	}
	return constantItems(ids, protocol.CompletionItemKindEnumMember)
}

func fieldCompletions(result *AnalysisResult, segments []string) []protocol.CompletionItem {
	ids := palette.ColorIdentifiers()
	switch {
	case len(segments) == 0:
		return contextKeyCompletions(result)
	case len(segments) == 1 && segments[0] == matrix.FlavorKey:
		return constantItems(flavorFields, protocol.CompletionItemKindField)
	case segments[len(segments)-1] == "Colors":
		return colorCompletions()
	case len(segments) == 1 && slices.Contains(ids, segments[0]),
		len(segments) == 3 && segments[1] == "Colors" && slices.Contains(ids, segments[2]):
		return constantItems(colorFields, protocol.CompletionItemKindField)
	}
	return nil
}

// contextKeyCompletions lists the top-level keys a render context carries.
func contextKeyCompletions(result *AnalysisResult) []protocol.CompletionItem {
	items := []protocol.CompletionItem{
		{Label: matrix.FlavorKey, Kind: completionKindPtr(protocol.CompletionItemKindVariable), Detail: strPtr("current flavor")},
		{Label: "flavors", Kind: completionKindPtr(protocol.CompletionItemKindVariable), Detail: strPtr("all flavors by identifier")},
	}
	items = append(items, colorCompletions()...)
	if result != nil {
		for _, key := range result.Keys {
			items = append(items, protocol.CompletionItem{
				Label:  key,
				Kind:   completionKindPtr(protocol.CompletionItemKindVariable),
				Detail: strPtr("frontmatter"),
			})
		}
	}
	return items
}

// colorCompletions lists color identifiers with their mocha hex as detail.
func colorCompletions() []protocol.CompletionItem {
	var preview palette.Flavor
	if p, err := canonicalPalette(); err == nil {
		preview, _ = p.Flavor("mocha")
	}

	ids := palette.ColorIdentifiers()
	items := make([]protocol.CompletionItem, 0, len(ids))
	for _, id := range ids {
		item := protocol.CompletionItem{
			Label: id,
			Kind:  completionKindPtr(protocol.CompletionItemKindColor),
		}
		if c, ok := preview.Colors[id]; ok {
			item.Detail = strPtr(c.Hex)
		}
		items = append(items, item)
	}
	return items
}

func channelCompletions(quoted bool) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(engine.Channels))
	for _, ch := range engine.Channels {
		insert := ch
		if !quoted {
			insert = `"` + ch + `"`
		}
		items = append(items, protocol.CompletionItem{
			Label:      ch,
			Kind:       completionKindPtr(protocol.CompletionItemKindEnumMember),
			InsertText: &insert,
		})
	}
	return items
}

func functionCompletions() []protocol.CompletionItem {
	p, err := canonicalPalette()
	if err != nil {
		return nil
	}
	names := slices.Sorted(maps.Keys(engine.FuncMap(p)))
	return constantItems(names, protocol.CompletionItemKindFunction)
}

func constantItems(labels []string, kind protocol.CompletionItemKind) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(labels))
	for _, label := range labels {
		items = append(items, protocol.CompletionItem{
			Label: label,
			Kind:  completionKindPtr(kind),
		})
	}
	return items
}

// completionKindPtr returns a pointer to a CompletionItemKind.
func completionKindPtr(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}

// textDocumentCompletion is the LSP handler for textDocument/completion requests.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := string(params.TextDocument.URI)

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return complete(s.getResult(uri), content, params.Position), nil
}
