package lsp

import (
	"math"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/backwardspy/whiskers2/internal/color"
)

// colorToLSP converts a color.Color (uint8 channels) to a protocol.Color (float32 0.0-1.0).
func colorToLSP(c color.Color) protocol.Color {
	return protocol.Color{
		Red:   float32(c.RGB.R) / 255.0,
		Green: float32(c.RGB.G) / 255.0,
		Blue:  float32(c.RGB.B) / 255.0,
		Alpha: float32(c.Opacity) / 255.0,
	}
}

func channelByte(v float32) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, float64(v))) * 255))
}

// documentColors converts the analysis result's hex literals into LSP ColorInformation items.
func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	if result == nil {
		return []protocol.ColorInformation{}
	}

	infos := make([]protocol.ColorInformation, 0, len(result.Colors))
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{
			Range: cl.Range,
			Color: colorToLSP(cl.Color),
		})
	}
	return infos
}

// colorPresentation rewrites a hex literal picked in the editor. The "#"
// prefix and the case of the original literal are kept; translucent colors
// get an alpha pair.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	text := extractText(content, params.Range)
	if !strings.HasPrefix(text, "#") {
		return []protocol.ColorPresentation{}
	}

	rgb := color.RGB{
		R: channelByte(params.Color.Red),
		G: channelByte(params.Color.Green),
		B: channelByte(params.Color.Blue),
	}
	format := color.HexFormat{
		Prefix: "#",
		Upper:  text != strings.ToLower(text),
	}
	hex := color.EncodeHex(rgb, channelByte(params.Color.Alpha), format)

	return []protocol.ColorPresentation{
		{
			Label: hex,
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: hex,
			},
		},
	}
}

// textDocumentDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return documentColors(s.getResult(string(params.TextDocument.URI))), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(content, params), nil
}
