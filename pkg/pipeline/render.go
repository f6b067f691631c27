package pipeline

import (
	"context"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/render"
	"github.com/matzehuels/netdiag/pkg/render/d2"
	"github.com/matzehuels/netdiag/pkg/render/nodelink"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// Render produces one output format for t. DOT and D2 are returned as
// source text; image formats are drawn by opts.Renderer.
func Render(ctx context.Context, t *topology.Topology, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})), nil
	case render.FormatD2:
		return []byte(d2.ToD2(t)), nil
	}

	if opts.Renderer == render.RendererD2 {
		return d2.Render(ctx, d2.ToD2(t), format)
	}

	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Detailed})
	switch format {
	case render.FormatPNG:
		if opts.scaled() {
			return nodelink.RenderScaledPNG(ctx, dot, opts.Engine, opts.Scale)
		}
		return nodelink.RenderPNG(ctx, dot, opts.Engine)
	case render.FormatSVG:
		return nodelink.RenderSVG(ctx, dot, opts.Engine)
	case render.FormatPDF:
		return nodelink.RenderPDF(ctx, dot, opts.Engine)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}
