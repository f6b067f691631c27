package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/render"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// DefaultEngine is the Graphviz layout engine used when none is given.
const DefaultEngine = "neato"

// Engines maps engine names to Graphviz layouts.
var Engines = map[string]graphviz.Layout{
	"neato":     graphviz.NEATO,
	"dot":       graphviz.DOT,
	"fdp":       graphviz.FDP,
	"sfdp":      graphviz.SFDP,
	"circo":     graphviz.CIRCO,
	"twopi":     graphviz.TWOPI,
	"osage":     graphviz.OSAGE,
	"patchwork": graphviz.PATCHWORK,
}

// Options configures node-link diagram generation.
type Options struct {
	// Detailed adds interface addresses to node labels and VLANs to edge
	// labels. When false, nodes show the device name only.
	Detailed bool
}

var shapes = map[topology.Role]string{
	topology.RoleHost:   "box",
	topology.RoleRouter: "ellipse",
	topology.RoleSwitch: "box3d",
}

// ToDOT converts a topology to Graphviz DOT source.
func ToDOT(t *topology.Topology, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, d := range t.Devices() {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%s];\n", d.Name, nodeLabel(d, opts.Detailed), shapes[d.Role])
	}

	buf.WriteString("\n")
	for _, l := range t.Links() {
		label := l.Network
		if opts.Detailed {
			if n, ok := t.Network(l.Network); ok && n.VLAN() != "" {
				label += "\nVLAN " + n.VLAN()
			}
		}
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", l.From.Device, l.To.Device, label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(d *topology.Device, detailed bool) string {
	if !detailed {
		return d.Name
	}
	lines := []string{d.Name}
	for _, i := range d.Interfaces() {
		if i.IPAddress != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", i.Name, i.IPAddress))
		}
	}
	return strings.Join(lines, "\n")
}

// Render lays out dot with engine and renders it in the given Graphviz
// format. An unknown engine is an INVALID_FORMAT error.
func Render(ctx context.Context, dot, engine string, format graphviz.Format) ([]byte, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	layout, ok := Engines[engine]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown layout engine %q", engine)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(layout)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot, engine string) ([]byte, error) {
	svg, err := Render(ctx, dot, engine, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot, engine string) ([]byte, error) {
	return Render(ctx, dot, engine, graphviz.PNG)
}

// RenderScaledPNG renders DOT source to SVG and rasterizes it at scale
// with rsvg-convert.
func RenderScaledPNG(ctx context.Context, dot, engine string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// RenderPDF renders DOT source as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot, engine string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.\-]+)\s+([0-9.\-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg tag with one whose
// width and height match the viewBox, so browsers scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
