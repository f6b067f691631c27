package topology

import (
	"strconv"

	"github.com/matzehuels/netdiag/pkg/table"
)

// AggregateNetworks folds the records into one network per distinct network
// name, in order of first reference, then fills in each network's members.
//
// VLAN id, raw VLAN text, subnet IP and mask each keep the first non-empty
// value among the records naming the network; later values are ignored even
// when they conflict. The VLAN id is only set from all-digit text.
//
// Members are the interfaces whose network is the aggregated one. The
// interface state used is the one left by [AttachInterfaces], so a
// redeclared interface counts once, under its final network. Members are
// ordered by the first row that places the interface on the network; rows
// naming another network do not count.
func AggregateNetworks(devices []*Device, records []table.Record) []*Network {
	var networks []*Network
	byName := make(map[string]*Network)

	for _, rec := range records {
		name := rec.Get(table.FieldNetworkName)
		if name == "" {
			continue
		}

		n, ok := byName[name]
		if !ok {
			n = NewNetwork(name)
			byName[name] = n
			networks = append(networks, n)
		}

		vlan := rec.Get(table.FieldVLAN)
		if n.VLANID == nil {
			if id, ok := parseVLANID(vlan); ok {
				n.VLANID = &id
			}
		}
		if n.VLANRaw == "" {
			n.VLANRaw = vlan
		}
		if n.SubnetIP == "" {
			n.SubnetIP = rec.Get(table.FieldNetworkIP)
		}
		if n.SubnetMask == "" {
			n.SubnetMask = rec.Get(table.FieldMask)
		}
	}

	devs := make(map[string]*Device, len(devices))
	for _, d := range devices {
		devs[d.Name] = d
	}

	for _, rec := range records {
		ifaceName := rec.Get(table.FieldInterfaceName)
		d, ok := devs[rec.Get(table.FieldDeviceName)]
		if ifaceName == "" || !ok {
			continue
		}
		iface, ok := d.Interface(ifaceName)
		if !ok || iface.Network == "" || iface.Network != rec.Get(table.FieldNetworkName) {
			continue
		}
		n, ok := byName[iface.Network]
		if !ok {
			continue
		}
		if m := iface.Ref(); !n.HasMember(m) {
			n.Members = append(n.Members, m)
		}
	}

	return networks
}

// parseVLANID parses s as a VLAN id when it consists of ASCII digits only.
func parseVLANID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}
