package pipeline

import (
	"bytes"
	"context"
	"fmt"

	depio "github.com/matzehuels/depmerge/pkg/io"
	"github.com/matzehuels/depmerge/pkg/render/nodelink"
	"github.com/matzehuels/depmerge/pkg/resolved"
)

// Render produces one output artifact for g. text is g in the text format,
// reused for FormatText.
func Render(ctx context.Context, g *resolved.Graph, text []byte, format string, detailed bool) ([]byte, error) {
	opts := nodelink.Options{Detailed: detailed}

	switch format {
	case FormatText:
		if text != nil {
			return text, nil
		}
		var buf bytes.Buffer
		if err := resolved.EncodeGraph(&buf, g); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		var buf bytes.Buffer
		if err := depio.WriteJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, opts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, opts))
	case FormatPDF:
		return nodelink.RenderPDF(ctx, nodelink.ToDOT(g, opts))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(g, opts), 2.0)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
