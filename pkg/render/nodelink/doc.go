// Package nodelink renders network topologies as Graphviz node-link diagrams.
//
// # Overview
//
// Every device becomes a node shaped by its role, and every pair of distinct
// devices sharing a network is joined by an undirected edge labelled with the
// network name:
//
//   - host: box
//   - router: ellipse
//   - switch: box3d
//
// # Usage
//
// Convert a topology to DOT, then render it:
//
//	dot := nodelink.ToDOT(topo, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.DefaultEngine)
//
// # Layout Engines
//
// The default engine is neato with overlap=false and splines=true, which
// spreads small lab networks evenly. Any engine in [Engines] may be chosen
// instead; dot produces layered output for larger networks.
//
// # Dependencies
//
// SVG and PNG are rendered in-process with [github.com/goccy/go-graphviz].
// PDF conversion requires librsvg (rsvg-convert).
package nodelink
