// Package pipeline runs the complete table → topology → outputs chain for
// netdiag.
//
// The CLI and the HTTP server both drive this package, so defaults and
// validation live here once.
//
// # Stages
//
//  1. Load: read the input table (a file, or bytes uploaded to the API)
//  2. Parse: read rows and build the [topology.Topology]
//  3. Render: produce each requested format (PNG, SVG, PDF, DOT, D2)
//  4. Write: store the diagram and topology.yaml in the output directory
//
// Parsed topologies and rendered artifacts are cached by the SHA-256 of the
// input bytes and the options that affect them.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     "data/input/table.csv",
//	    OutputDir: "data/output",
//	})
//	if err != nil {
//	    return err
//	}
//	for _, f := range result.Files {
//	    fmt.Println(f)
//	}
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netdiag/pkg/cache"
	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/render"
	"github.com/matzehuels/netdiag/pkg/render/d2"
	"github.com/matzehuels/netdiag/pkg/render/nodelink"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultInput is the table read when no input is given.
	DefaultInput = "data/input/table.csv"

	// DefaultOutputDir is where outputs are written when no directory is given.
	DefaultOutputDir = "data/output"

	// DefaultEngine is the Graphviz layout engine.
	DefaultEngine = nodelink.DefaultEngine

	// DefaultRenderer draws diagrams in-process.
	DefaultRenderer = render.RendererGraphviz

	// DefaultName names documents built from uploaded tables.
	DefaultName = "topology"

	// DiagramBase is the diagram file name without extension.
	DiagramBase = "diagram"

	// TopologyFile is the topology document written next to the diagram.
	TopologyFile = "topology.yaml"

	// MaxScale bounds Options.Scale.
	MaxScale = 8.0
)

// DefaultFormats are rendered when no format is requested.
var DefaultFormats = []string{render.FormatPNG}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Input is the table path. When Data is set, Input only labels the
	// table in logs and metrics.
	Input string `json:"input,omitempty"`

	// Data holds the table bytes for inputs that are not files.
	Data []byte `json:"-"`

	// Delimiter is the single field separator; empty means comma.
	Delimiter string `json:"delimiter,omitempty"`

	// OutputDir receives the diagram and topology document. Empty skips
	// writing files.
	OutputDir string `json:"output_dir,omitempty"`

	Formats  []string `json:"formats,omitempty"`
	Renderer string   `json:"renderer,omitempty"`
	Engine   string   `json:"engine,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Scale enlarges Graphviz PNG output by rasterizing the SVG with
	// rsvg-convert. 0 and 1 keep Graphviz's native PNG.
	Scale float64 `json:"scale,omitempty"`

	// Name is the document meta id/name. Defaults to the output directory's
	// base name, or DefaultName when there is none.
	Name string `json:"name,omitempty"`

	// NoCache bypasses cache reads and writes.
	NoCache bool `json:"no_cache,omitempty"`

	Logger *log.Logger `json:"-"`

	delim     rune
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the parsed network.
	Topology *topology.Topology

	// InputHash is the SHA-256 of the input bytes.
	InputHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Files lists written paths, diagrams first, the topology document last.
	Files []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Devices    int
	Interfaces int
	Networks   int
	Links      int
	ParseTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	ParseHit  bool
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is known and that renderer can
// produce it. DOT and D2 source are available with either renderer.
func ValidateFormat(format, renderer string) error {
	if !render.ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, joinKeys(render.ValidFormats))
	}
	if renderer == render.RendererD2 && !d2.Formats[format] && format != render.FormatDOT && format != render.FormatD2 {
		return errors.New(errors.ErrCodeInvalidFormat, "renderer d2 cannot produce %q", format)
	}
	return nil
}

// ValidateRenderer checks that a renderer name is known.
func ValidateRenderer(renderer string) error {
	if !render.ValidRenderers[renderer] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid renderer %q (must be one of: %s)", renderer, joinKeys(render.ValidRenderers))
	}
	return nil
}

// ValidateEngine checks that a Graphviz layout engine is known.
func ValidateEngine(engine string) error {
	if _, ok := nodelink.Engines[engine]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid engine %q (must be one of: %s)", engine, joinKeys(nodelink.Engines))
	}
	return nil
}

func joinKeys[V any](m map[string]V) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every option and fills in defaults.
// Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Input == "" && o.Data == nil {
		o.Input = DefaultInput
	}
	delim, err := errors.ValidateDelimiter(o.Delimiter)
	if err != nil {
		return err
	}
	o.delim = delim

	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if err := ValidateRenderer(o.Renderer); err != nil {
		return err
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidFormat, "scale %g out of range (0-%g)", o.Scale, MaxScale)
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f, o.Renderer); err != nil {
			return err
		}
	}

	if o.Name == "" {
		o.Name = defaultName(o.OutputDir)
	}
	if err := errors.ValidateDocumentName(o.Name); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func defaultName(outputDir string) string {
	if outputDir == "" {
		return DefaultName
	}
	base := filepath.Base(filepath.Clean(outputDir))
	if base == "." || base == string(filepath.Separator) {
		return DefaultName
	}
	return base
}

// Delim returns the validated delimiter rune.
func (o *Options) Delim() rune {
	if o.delim == 0 {
		return ','
	}
	return o.delim
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Delimiter: o.Delim(),
		Format:    format,
		Renderer:  o.Renderer,
		Detailed:  o.Detailed,
	}
	if o.Renderer == render.RendererGraphviz {
		opts.Engine = o.Engine
		if format == render.FormatPNG && o.scaled() {
			opts.Scale = o.Scale
		}
	}
	return opts
}

// scaled reports whether PNG output goes through rsvg-convert.
func (o *Options) scaled() bool {
	return o.Scale > 0 && o.Scale != 1
}

// FileName returns the output file name for a rendered format.
func FileName(format string) string {
	return fmt.Sprintf("%s.%s", DiagramBase, format)
}
