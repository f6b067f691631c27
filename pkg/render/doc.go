// Package render converts rendered diagrams between output formats.
//
// # Overview
//
// The diagram renderers live in subpackages:
//
//   - [nodelink]: Graphviz node-link diagrams rendered in-process
//   - [d2]: D2 source with network containers, rendered by the d2 tool
//
// This package holds what they share: the list of output formats, SVG to
// PDF/PNG conversion and lookup of external tools.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG using the external rsvg-convert tool (from
// librsvg):
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// The Graphviz renderer uses [ToPNG] when a PNG is requested with a scale
// other than 1.
//
// # External Tools
//
// [LookTool] resolves a binary on PATH. A missing binary is reported as an
// [errors.ErrCodeToolNotFound] error naming the tool and how to install it,
// so callers can tell an environment problem from bad input.
//
// [d2]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/render/d2
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/netdiag/pkg/render/nodelink
package render
