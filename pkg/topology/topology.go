package topology

import (
	"github.com/matzehuels/netdiag/pkg/errors"
)

// Topology is the root aggregate: every device and network of one input
// table, in input order.
//
// A Topology is built once by [Assemble] and only read afterwards.
type Topology struct {
	devices      map[string]*Device
	deviceOrder  []string
	networks     map[string]*Network
	networkOrder []string
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{
		devices:  make(map[string]*Device),
		networks: make(map[string]*Network),
	}
}

// AddDevice inserts d. It returns an INTEGRITY error if a device with the
// same name already exists.
func (t *Topology) AddDevice(d *Device) error {
	if d.Name == "" {
		return errors.New(errors.ErrCodeIntegrity, "device name cannot be empty")
	}
	if _, ok := t.devices[d.Name]; ok {
		return errors.New(errors.ErrCodeIntegrity, "device %q already exists in topology", d.Name)
	}
	t.devices[d.Name] = d
	t.deviceOrder = append(t.deviceOrder, d.Name)
	return nil
}

// AddNetwork inserts n. It returns an INTEGRITY error if a network with the
// same name already exists.
func (t *Topology) AddNetwork(n *Network) error {
	if n.Name == "" {
		return errors.New(errors.ErrCodeIntegrity, "network name cannot be empty")
	}
	if _, ok := t.networks[n.Name]; ok {
		return errors.New(errors.ErrCodeIntegrity, "network %q already exists in topology", n.Name)
	}
	t.networks[n.Name] = n
	t.networkOrder = append(t.networkOrder, n.Name)
	return nil
}

// Devices returns all devices in input order.
func (t *Topology) Devices() []*Device {
	out := make([]*Device, len(t.deviceOrder))
	for i, name := range t.deviceOrder {
		out[i] = t.devices[name]
	}
	return out
}

// Device returns the named device.
func (t *Topology) Device(name string) (*Device, bool) {
	d, ok := t.devices[name]
	return d, ok
}

// Networks returns all networks in the order they were first referenced.
func (t *Topology) Networks() []*Network {
	out := make([]*Network, len(t.networkOrder))
	for i, name := range t.networkOrder {
		out[i] = t.networks[name]
	}
	return out
}

// Network returns the named network.
func (t *Topology) Network(name string) (*Network, bool) {
	n, ok := t.networks[name]
	return n, ok
}

// DeviceCount returns the number of devices.
func (t *Topology) DeviceCount() int { return len(t.deviceOrder) }

// NetworkCount returns the number of networks.
func (t *Topology) NetworkCount() int { return len(t.networkOrder) }

// InterfaceCount returns the number of interfaces across all devices.
func (t *Topology) InterfaceCount() int {
	n := 0
	for _, d := range t.devices {
		n += d.InterfaceCount()
	}
	return n
}

// Lookup resolves a member reference to its interface.
func (t *Topology) Lookup(m Member) (Interface, bool) {
	d, ok := t.devices[m.Device]
	if !ok {
		return Interface{}, false
	}
	return d.Interface(m.Interface)
}

// Link connects two distinct devices that share a network. From and To are
// the first interface of each device on that network.
type Link struct {
	Network string
	From    Member
	To      Member
}

// Links returns one link per pair of distinct devices on each network,
// networks in order, pairs in member order.
func (t *Topology) Links() []Link {
	var links []Link
	for _, n := range t.Networks() {
		var firsts []Member
		seen := make(map[string]bool)
		for _, m := range n.Members {
			if seen[m.Device] {
				continue
			}
			seen[m.Device] = true
			firsts = append(firsts, m)
		}
		for i := 0; i < len(firsts); i++ {
			for j := i + 1; j < len(firsts); j++ {
				links = append(links, Link{Network: n.Name, From: firsts[i], To: firsts[j]})
			}
		}
	}
	return links
}
