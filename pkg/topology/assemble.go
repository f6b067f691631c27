package topology

import (
	"fmt"

	"github.com/matzehuels/netdiag/pkg/table"
)

// Assemble composes devices and networks into a topology. Duplicate device
// or network names are INTEGRITY errors.
func Assemble(devices []*Device, networks []*Network) (*Topology, error) {
	t := New()
	for _, d := range devices {
		if err := t.AddDevice(d); err != nil {
			return nil, err
		}
	}
	for _, n := range networks {
		if err := t.AddNetwork(n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Build converts raw table records into a topology. Record keys are
// canonicalized first, so records straight from [table.ReadFile] work.
// No partial topology is returned on error.
func Build(records []table.Record) (*Topology, error) {
	records = table.CanonicalizeAll(records)

	devices, err := ResolveDevices(records)
	if err != nil {
		return nil, fmt.Errorf("resolve devices: %w", err)
	}
	if err := AttachInterfaces(devices, records); err != nil {
		return nil, fmt.Errorf("attach interfaces: %w", err)
	}
	networks := AggregateNetworks(devices, records)

	return Assemble(devices, networks)
}
