package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netdiag/pkg/cache"
	netio "github.com/matzehuels/netdiag/pkg/io"
	"github.com/matzehuels/netdiag/pkg/observability"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so the HTTP server shares one Runner
// across concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → parse → render → write.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	data, err := Load(opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		InputHash: cache.Hash(data),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	t, parseHit, err := r.ParseWithCacheInfo(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Topology = t
	result.Stats = Stats{
		Devices:    t.DeviceCount(),
		Interfaces: t.InterfaceCount(),
		Networks:   t.NetworkCount(),
		Links:      len(t.Links()),
		ParseTime:  time.Since(parseStart),
	}
	result.CacheInfo.ParseHit = parseHit

	r.Logger.Info("parsed topology",
		"devices", result.Stats.Devices,
		"networks", result.Stats.Networks,
		"cached", parseHit,
		"duration", result.Stats.ParseTime)

	// Stage 2: Render
	renderStart := time.Now()
	allHit := true
	for _, format := range opts.Formats {
		out, hit, err := r.RenderWithCacheInfo(ctx, t, result.InputHash, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = out
		allHit = allHit && hit
	}
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = allHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", allHit,
		"duration", result.Stats.RenderTime)

	// Stage 3: Write
	if opts.OutputDir != "" {
		files, err := r.Write(result, opts)
		if err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
		result.Files = files
	}

	return result, nil
}

// ParseWithCacheInfo builds the topology for data and reports whether it
// came from the cache. Topologies are cached as their YAML document.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, data []byte, opts Options) (*topology.Topology, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.TopologyKey(cache.Hash(data), opts.Delim())

	if !opts.NoCache {
		if doc, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if t, _, err := netio.ReadYAML(bytes.NewReader(doc)); err == nil {
				observability.Cache().OnCacheHit(ctx, "topology")
				return t, true, nil
			}
			r.Logger.Debug("discarding unreadable cached topology", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "topology")
	}

	observability.Pipeline().OnParseStart(ctx, opts.Input)
	start := time.Now()
	t, err := Parse(data, opts.Delim())
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, opts.Input, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnParseComplete(ctx, opts.Input, t.DeviceCount(), t.NetworkCount(), time.Since(start), nil)

	if !opts.NoCache {
		var buf bytes.Buffer
		if err := netio.WriteYAML(t, opts.Name, &buf); err == nil {
			r.store(ctx, "topology", key, buf.Bytes())
		}
	}
	return t, false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, data []byte, opts Options) (*topology.Topology, error) {
	t, _, err := r.ParseWithCacheInfo(ctx, data, opts)
	return t, err
}

// RenderWithCacheInfo renders one format of t and reports whether it came
// from the cache. inputHash identifies the table t was built from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *topology.Topology, inputHash, format string, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))

	if !opts.NoCache {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Renderer, format)
	start := time.Now()
	data, err := Render(ctx, t, format, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Renderer, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered", "format", format, "bytes", len(data), "duration", time.Since(start))

	if !opts.NoCache {
		r.store(ctx, "artifact", key, data)
	}
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *topology.Topology, inputHash, format string, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, t, inputHash, format, opts)
	return data, err
}

// Write stores the rendered artifacts and the topology document in
// opts.OutputDir, creating it if needed.
func (r *Runner) Write(result *Result, opts Options) ([]string, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.OutputDir, err)
	}

	var files []string
	for _, format := range opts.Formats {
		path := filepath.Join(opts.OutputDir, FileName(format))
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return files, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}

	path := filepath.Join(opts.OutputDir, TopologyFile)
	if err := netio.ExportYAML(result.Topology, opts.Name, path); err != nil {
		return files, err
	}
	files = append(files, path)

	r.Logger.Debug("wrote outputs", "dir", opts.OutputDir, "files", len(files))
	return files, nil
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
