package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/netdiag/pkg/cache"
	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/observability"
	"github.com/matzehuels/netdiag/pkg/render"
	"github.com/matzehuels/netdiag/pkg/topology"
)

const lab = `Name,Role,Interface,Network,VLAN,Network IP,Mask,Device IP,Default Gateway
PC1,Host,eth0,A,10,10.0.12.0,255.255.255.0,10.0.12.1,
PC2,Host,eth0,A,,,,10.0.12.2,
R1,Router,ge0/0,A,,,,10.0.12.254,
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format   string
		renderer string
		wantErr  bool
	}{
		{"png", "graphviz", false},
		{"svg", "graphviz", false},
		{"pdf", "graphviz", false},
		{"dot", "graphviz", false},
		{"d2", "graphviz", false},
		{"png", "d2", false},
		{"dot", "d2", false},
		{"json", "graphviz", true},
		{"PNG", "graphviz", true}, // case-sensitive
		{"", "graphviz", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format, tt.renderer)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q, %q) error = %v, wantErr %v", tt.format, tt.renderer, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateRendererAndEngine(t *testing.T) {
	if err := ValidateRenderer("graphviz"); err != nil {
		t.Errorf("graphviz: %v", err)
	}
	if err := ValidateRenderer("mermaid"); err == nil {
		t.Error("mermaid should be rejected")
	}
	if err := ValidateEngine("neato"); err != nil {
		t.Errorf("neato: %v", err)
	}
	if err := ValidateEngine("bogus"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bogus engine error = %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"png", []string{"png"}},
		{"png, SVG ,png", []string{"png", "svg"}},
		{"", nil},
		{" , ", nil},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{OutputDir: "labs/lab-02/"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.Input != DefaultInput {
		t.Errorf("Input = %q, want %q", opts.Input, DefaultInput)
	}
	if opts.Renderer != DefaultRenderer || opts.Engine != DefaultEngine {
		t.Errorf("Renderer/Engine = %q/%q", opts.Renderer, opts.Engine)
	}
	if !slices.Equal(opts.Formats, []string{"png"}) {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Name != "lab-02" {
		t.Errorf("Name = %q, want lab-02", opts.Name)
	}
	if opts.Delim() != ',' {
		t.Errorf("Delim() = %q, want ','", opts.Delim())
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error: %v", err)
	}
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"delimiter", Options{Delimiter: ";;"}},
		{"renderer", Options{Renderer: "ascii"}},
		{"engine", Options{Engine: "spring"}},
		{"format", Options{Formats: []string{"gif"}}},
		{"d2 renderer jpg", Options{Renderer: "d2", Formats: []string{"jpg"}}},
		{"negative scale", Options{Scale: -1}},
		{"scale too large", Options{Scale: MaxScale + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestDefaultName(t *testing.T) {
	tests := []struct{ dir, want string }{
		{"", DefaultName},
		{".", DefaultName},
		{"data/output", "output"},
		{"/tmp/lab-03/", "lab-03"},
	}
	for _, tt := range tests {
		if got := defaultName(tt.dir); got != tt.want {
			t.Errorf("defaultName(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "table.csv")
	if err := os.WriteFile(input, []byte(lab), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Input:     input,
		OutputDir: out,
		Formats:   []string{"dot", "svg"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if result.Stats.Devices != 3 || result.Stats.Networks != 1 || result.Stats.Links != 3 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if !strings.Contains(string(result.Artifacts["dot"]), `"PC1" -- "PC2"`) {
		t.Errorf("dot artifact = %s", result.Artifacts["dot"])
	}
	if !strings.Contains(string(result.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact is not SVG")
	}

	want := []string{
		filepath.Join(out, "diagram.dot"),
		filepath.Join(out, "diagram.svg"),
		filepath.Join(out, "topology.yaml"),
	}
	if !slices.Equal(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	doc, err := os.ReadFile(filepath.Join(out, "topology.yaml"))
	if err != nil {
		t.Fatalf("read topology.yaml: %v", err)
	}
	if !strings.Contains(string(doc), "name: out") {
		t.Errorf("topology.yaml should be named after the output dir:\n%s", doc)
	}
}

func TestExecute_Data(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Input:     "request",
		Data:      []byte(strings.ReplaceAll(lab, ",", ";")),
		Delimiter: ";",
		Formats:   []string{"d2"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want none without OutputDir", result.Files)
	}
	if !strings.Contains(string(result.Artifacts["d2"]), "label: VLAN 10") {
		t.Errorf("d2 artifact = %s", result.Artifacts["d2"])
	}
}

func TestExecute_Errors(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := runner.Execute(ctx, Options{Input: filepath.Join(t.TempDir(), "missing.csv"), Formats: []string{"dot"}})
	if !errors.Is(err, errors.ErrCodeInput) {
		t.Errorf("missing input error = %v, want INPUT", err)
	}

	bad := "Name,Role,Interface\nPC1,,eth0\n"
	_, err = runner.Execute(ctx, Options{Data: []byte(bad), Formats: []string{"dot"}})
	if !errors.Is(err, errors.ErrCodeSchema) {
		t.Errorf("missing role error = %v, want SCHEMA", err)
	}
	if errors.RowOf(err) != 1 {
		t.Errorf("RowOf() = %d, want 1", errors.RowOf(err))
	}
}

func TestExecute_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Data: []byte(lab), Formats: []string{"dot"}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.ParseHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.ParseHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if string(second.Artifacts["dot"]) != string(first.Artifacts["dot"]) {
		t.Error("cached artifact differs")
	}
	if second.Stats.Devices != 3 || second.Stats.Links != 3 {
		t.Errorf("cached topology Stats = %+v", second.Stats)
	}

	opts.Detailed = true
	third, _ := runner.Execute(ctx, opts)
	if third.CacheInfo.RenderHit {
		t.Error("changing Detailed should miss the artifact cache")
	}

	noCache := Options{Data: []byte(lab), Formats: []string{"dot"}, NoCache: true}
	fourth, _ := runner.Execute(ctx, noCache)
	if fourth.CacheInfo.ParseHit || fourth.CacheInfo.RenderHit {
		t.Error("NoCache should bypass the cache")
	}
}

func TestArtifactKeyOpts_Scale(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		format string
		want   float64
	}{
		{"png scaled", Options{Scale: 2}, "png", 2},
		{"png native", Options{Scale: 1}, "png", 0},
		{"svg ignores scale", Options{Scale: 2}, "svg", 0},
		{"d2 renderer ignores scale", Options{Scale: 2, Renderer: "d2"}, "png", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			if got := tt.opts.ArtifactKeyOpts(tt.format).Scale; got != tt.want {
				t.Errorf("Scale = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestRender_ScaledPNGNeedsRsvg(t *testing.T) {
	if _, err := render.LookTool("rsvg-convert", ""); err == nil {
		t.Skip("rsvg-convert installed")
	}
	topo, err := Parse([]byte(lab), ',')
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", "")

	opts := Options{Scale: 2}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	_, err = Render(context.Background(), topo, "png", opts)
	if !errors.Is(err, errors.ErrCodeToolNotFound) {
		t.Errorf("scaled PNG error = %v, want TOOL_NOT_FOUND", err)
	}

	opts = Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if _, err := Render(context.Background(), topo, "png", opts); err != nil {
		t.Errorf("native PNG should not need rsvg-convert: %v", err)
	}
}

func TestParse_CacheKeepsDottedMembers(t *testing.T) {
	const in = `Name,Role,Interface,Network
a,Host,b.c,N
a.b,Host,c,N
`
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Data: []byte(in), Formats: []string{"dot"}}

	want := []topology.Member{{Device: "a", Interface: "b.c"}, {Device: "a.b", Interface: "c"}}
	for run := 1; run <= 2; run++ {
		topo, hit, err := runner.ParseWithCacheInfo(ctx, opts.Data, opts)
		if err != nil {
			t.Fatalf("run %d: ParseWithCacheInfo() error: %v", run, err)
		}
		if hit {
			t.Errorf("run %d: ambiguous cached topology should not be a hit", run)
		}
		n, _ := topo.Network("N")
		if !slices.Equal(n.Members, want) {
			t.Errorf("run %d: Members = %#v, want %#v", run, n.Members, want)
		}
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	parsed  []int
	formats []string
}

func (h *recordingHooks) OnParseComplete(_ context.Context, _ string, devices, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parsed = append(h.parsed, devices)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _, format string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formats = append(h.formats, format)
}

func TestExecute_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	runner := NewRunner(nil, nil, nil)
	if _, err := runner.Execute(context.Background(), Options{Data: []byte(lab), Formats: []string{"dot", "d2"}}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !slices.Equal(hooks.parsed, []int{3}) {
		t.Errorf("parsed = %v, want [3]", hooks.parsed)
	}
	if !slices.Equal(hooks.formats, []string{"dot", "d2"}) {
		t.Errorf("formats = %v", hooks.formats)
	}
}

func TestSampleTable(t *testing.T) {
	data, err := Load(Options{Input: filepath.Join("..", "..", DefaultInput)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	topo, err := Parse(data, ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if topo.DeviceCount() != 7 || topo.NetworkCount() != 6 {
		t.Errorf("devices = %d, networks = %d, want 7 and 6", topo.DeviceCount(), topo.NetworkCount())
	}
	srv, ok := topo.Device("SRV1")
	if !ok {
		t.Fatal("SRV1 missing")
	}
	if eth1, _ := srv.Interface("eth1"); eth1.Gateway != "" {
		t.Errorf("gateway 0.0.0.0 should read as unset, got %q", eth1.Gateway)
	}
}
