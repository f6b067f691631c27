package pipeline

import (
	"bytes"
	"os"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/table"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// Load returns the table bytes for opts: Data when set, otherwise the
// contents of the Input file.
func Load(opts Options) ([]byte, error) {
	if opts.Data != nil {
		return opts.Data, nil
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInput, err, "read %s", opts.Input)
	}
	return data, nil
}

// Parse reads a delimited table and builds its topology.
func Parse(data []byte, delim rune) (*topology.Topology, error) {
	records, err := table.ReadAll(bytes.NewReader(data), delim)
	if err != nil {
		return nil, err
	}
	return topology.Build(records)
}
