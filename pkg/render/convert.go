package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/netdiag/pkg/errors"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatDOT = "dot"
	FormatD2  = "d2"
)

// Renderer names.
const (
	RendererGraphviz = "graphviz"
	RendererD2       = "d2"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatPDF: true,
	FormatDOT: true,
	FormatD2:  true,
}

// ValidRenderers is the set of supported diagram renderers.
var ValidRenderers = map[string]bool{
	RendererGraphviz: true,
	RendererD2:       true,
}

const rsvgHint = "brew install librsvg (macOS), apt install librsvg2-bin (Linux)"

// LookTool resolves name on PATH. hint tells the user how to install it.
func LookTool(name, hint string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeToolNotFound, err, "%s not found on PATH; install with: %s", name, hint)
	}
	return path, nil
}

// ToPDF converts SVG to PDF using rsvg-convert.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "-f", "pdf")
}

// ToPNG converts SVG to PNG using rsvg-convert. scale multiplies the SVG's
// intrinsic size; values <= 0 mean 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return rsvgConvert(ctx, svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func rsvgConvert(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	bin, err := LookTool("rsvg-convert", rsvgHint)
	if err != nil {
		return nil, err
	}
	return Exec(ctx, bin, svg, args...)
}

// Exec runs bin with args, feeding stdin and returning stdout. A failing
// command's stderr is included in the error.
func Exec(ctx context.Context, bin string, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", bin, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", bin, err)
	}
	return stdout.Bytes(), nil
}
