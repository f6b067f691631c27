// Package cache stores rendered diagram artifacts between runs.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server
//   - [NullCache]: stores nothing, used with --no-cache
//
// # Keys
//
// A [Keyer] derives keys from the SHA-256 of the input table plus every
// option that changes the output, so editing the table or switching the
// layout engine never returns a stale diagram. [ScopedKeyer] prefixes keys,
// which keeps artifacts from different netdiag versions apart in a shared
// Redis.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// TopologyKey identifies the topology parsed from an input table.
	TopologyKey(inputHash string, delimiter rune) string

	// ArtifactKey identifies one rendered output of an input table.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Delimiter rune    `json:"delimiter"`
	Format    string  `json:"format"`
	Renderer  string  `json:"renderer"`
	Engine    string  `json:"engine"`
	Detailed  bool    `json:"detailed"`
	Scale     float64 `json:"scale,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TopologyKey returns "topology:<hash>".
func (DefaultKeyer) TopologyKey(inputHash string, delimiter rune) string {
	return hashKey("topology", inputHash, string(delimiter))
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}
