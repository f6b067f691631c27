package topology

import (
	"strings"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/table"
)

// unsetGateway is the placeholder some lab tables use for "no gateway".
const unsetGateway = "0.0.0.0"

// ResolveDevices creates one device per distinct device name, in the order
// names first appear. Records must carry canonical keys.
//
// A record naming a device must also carry a recognized role, and a record
// carrying a role must name a device; violations are SCHEMA errors pointing
// at the record. Later records for an existing device never change its role.
func ResolveDevices(records []table.Record) ([]*Device, error) {
	var devices []*Device
	seen := make(map[string]bool)

	for _, rec := range records {
		name := rec.Get(table.FieldDeviceName)
		roleText := rec.Get(table.FieldRole)

		switch {
		case name == "" && roleText == "":
			continue
		case name == "":
			return nil, errors.AtRow(errors.ErrCodeSchema, rec.Index, table.FieldDeviceName, name,
				"role %q given without a device name", roleText)
		case roleText == "":
			return nil, errors.AtRow(errors.ErrCodeSchema, rec.Index, table.FieldRole, roleText,
				"device %q has no role", name)
		}

		role, ok := ParseRole(roleText)
		if !ok {
			return nil, errors.AtRow(errors.ErrCodeSchema, rec.Index, table.FieldRole, roleText,
				"unrecognized role for device %q (want Host, Router or Switch)", name)
		}

		if seen[name] {
			continue
		}
		seen[name] = true

		d := NewDevice(name, role)
		d.Row = rec.Index
		devices = append(devices, d)
	}

	return devices, nil
}

// AttachInterfaces attaches an interface to its device for every record that
// names one. The device must have been created by [ResolveDevices]; an
// unknown or missing device name is a SCHEMA error.
//
// Attaching an interface name twice to the same device keeps the later row.
func AttachInterfaces(devices []*Device, records []table.Record) error {
	byName := make(map[string]*Device, len(devices))
	for _, d := range devices {
		byName[d.Name] = d
	}

	for _, rec := range records {
		ifaceName := rec.Get(table.FieldInterfaceName)
		if ifaceName == "" {
			continue
		}

		deviceName := rec.Get(table.FieldDeviceName)
		d, ok := byName[deviceName]
		if !ok {
			return errors.AtRow(errors.ErrCodeSchema, rec.Index, table.FieldDeviceName, deviceName,
				"interface %q references an unknown device", ifaceName)
		}

		networkName := rec.Get(table.FieldNetworkName)
		d.AddInterface(Interface{
			Name:      ifaceName,
			IPAddress: rec.Get(table.FieldDeviceIP),
			Network:   networkName,
			Gateway:   gatewayOrEmpty(rec.Get(table.FieldDefaultGateway)),
			Mode:      InferMode(networkName, rec.Get(table.FieldVLAN)),
		})
	}

	return nil
}

// InferMode derives the interface mode from table text: trunk when the VLAN
// cell reads "trunk" or the network is named "tr" or "trunk" (any case),
// access otherwise.
func InferMode(networkName, vlan string) Mode {
	if strings.EqualFold(vlan, "trunk") {
		return ModeTrunk
	}
	if strings.EqualFold(networkName, "tr") || strings.EqualFold(networkName, "trunk") {
		return ModeTrunk
	}
	return ModeAccess
}

func gatewayOrEmpty(gw string) string {
	if gw == unsetGateway {
		return ""
	}
	return gw
}
