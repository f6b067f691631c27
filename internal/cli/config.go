package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netdiag/internal/server"
	"github.com/matzehuels/netdiag/pkg/pipeline"
)

// defaultConfigFile is read from the working directory when --config is not given.
const defaultConfigFile = "netdiag.toml"

// Environment variables that override the config file.
const (
	envRedisURL = "NETDIAG_REDIS_URL"
	envAddr     = "NETDIAG_ADDR"
)

// Config holds defaults for command flags. Values are resolved in the order
// flag > environment > config file > built-in default.
type Config struct {
	Input     string   `toml:"input"`
	Output    string   `toml:"output"`
	Delimiter string   `toml:"delimiter"`
	Formats   []string `toml:"formats"`
	Engine    string   `toml:"engine"`
	Renderer  string   `toml:"renderer"`
	Detailed  bool     `toml:"detailed"`
	Scale     float64  `toml:"scale"`
	Name      string   `toml:"name"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	// Backend is file (default), redis or none.
	Backend  string `toml:"backend"`
	RedisURL string `toml:"redis_url"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Input:     pipeline.DefaultInput,
		Output:    pipeline.DefaultOutputDir,
		Delimiter: ",",
		Engine:    pipeline.DefaultEngine,
		Renderer:  pipeline.DefaultRenderer,
		Cache:     CacheConfig{Backend: cacheBackendFile},
		Server: ServerConfig{
			Addr:         server.DefaultAddr,
			MaxBodyBytes: server.DefaultMaxBodyBytes,
		},
	}
}

// LoadConfig loads .env into the environment, reads the TOML file at path
// and applies environment overrides. An empty path reads ./netdiag.toml
// when it exists.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv(envAddr); v != "" {
		cfg.Server.Addr = v
	}
	return cfg, nil
}

// applyString sets *dst from the config value unless the flag was given.
func applyString(cmd *cobra.Command, flag string, dst *string, value string) {
	if value != "" && !cmd.Flags().Changed(flag) {
		*dst = value
	}
}

// parseOptions fills the options that affect parsing only: input,
// delimiter and name.
func (cfg *Config) parseOptions(cmd *cobra.Command, opts *pipeline.Options) {
	applyString(cmd, "input", &opts.Input, cfg.Input)
	applyString(cmd, "delimiter", &opts.Delimiter, cfg.Delimiter)
	applyString(cmd, "name", &opts.Name, cfg.Name)
}

// pipelineOptions fills unset pipeline options from the config.
func (cfg *Config) pipelineOptions(cmd *cobra.Command, opts *pipeline.Options) {
	cfg.parseOptions(cmd, opts)
	applyString(cmd, "output", &opts.OutputDir, cfg.Output)
	applyString(cmd, "engine", &opts.Engine, cfg.Engine)
	applyString(cmd, "renderer", &opts.Renderer, cfg.Renderer)
	if len(cfg.Formats) > 0 && !cmd.Flags().Changed("format") {
		opts.Formats = cfg.Formats
	}
	if cfg.Detailed && !cmd.Flags().Changed("detailed") {
		opts.Detailed = true
	}
	if cfg.Scale != 0 && !cmd.Flags().Changed("scale") {
		opts.Scale = cfg.Scale
	}
}
