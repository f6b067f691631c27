package topology

import (
	"fmt"
	"strconv"
)

// Role is the kind of a device.
type Role string

// Device roles.
const (
	RoleHost   Role = "host"
	RoleRouter Role = "router"
	RoleSwitch Role = "switch"
)

// roleNames maps the spreadsheet spelling of a role to its Role.
var roleNames = map[string]Role{
	"Host":   RoleHost,
	"Router": RoleRouter,
	"Switch": RoleSwitch,
}

// ParseRole maps the exact, case-sensitive spreadsheet role names "Host",
// "Router" and "Switch" to a Role.
func ParseRole(s string) (Role, bool) {
	r, ok := roleNames[s]
	return r, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleRouter, RoleSwitch:
		return true
	}
	return false
}

// Mode is the addressing mode of an interface.
type Mode string

// Interface modes.
const (
	ModeAccess Mode = "access"
	ModeTrunk  Mode = "trunk"
)

// Interface is a network interface owned by exactly one device.
type Interface struct {
	Name      string
	Device    string // owning device name
	IPAddress string
	Network   string // network name, "" when unassigned
	Gateway   string
	Mode      Mode
}

// Ref returns the (device, interface) pair identifying i.
func (i Interface) Ref() Member {
	return Member{Device: i.Device, Interface: i.Name}
}

// Device is a host, router or switch and its interfaces in declaration order.
type Device struct {
	Name string
	Role Role
	Row  int // input row that declared the device

	interfaces []Interface
	index      map[string]int
}

// NewDevice returns a device without interfaces.
func NewDevice(name string, role Role) *Device {
	return &Device{Name: name, Role: role, index: make(map[string]int)}
}

// Interfaces returns a copy of the device's interfaces in declaration order.
func (d *Device) Interfaces() []Interface {
	return append([]Interface(nil), d.interfaces...)
}

// Interface returns the named interface.
func (d *Device) Interface(name string) (Interface, bool) {
	i, ok := d.index[name]
	if !ok {
		return Interface{}, false
	}
	return d.interfaces[i], true
}

// InterfaceCount returns the number of interfaces.
func (d *Device) InterfaceCount() int {
	return len(d.interfaces)
}

// AddInterface attaches iface to d and sets its owner. An interface with the
// same name replaces the existing one in place.
func (d *Device) AddInterface(iface Interface) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	iface.Device = d.Name
	if i, ok := d.index[iface.Name]; ok {
		d.interfaces[i] = iface
		return
	}
	d.index[iface.Name] = len(d.interfaces)
	d.interfaces = append(d.interfaces, iface)
}

// Member identifies an interface by device and interface name.
type Member struct {
	Device    string
	Interface string
}

// String formats the member as "device.interface".
func (m Member) String() string {
	return m.Device + "." + m.Interface
}

// Network is a named segment aggregated across every row that mentions it.
type Network struct {
	Name       string
	VLANID     *int   // set when the VLAN cell is all digits
	VLANRaw    string // VLAN cell as written, e.g. "10" or "trunk"
	SubnetIP   string
	SubnetMask string
	Members    []Member
}

// NewNetwork returns a network with no metadata and no members.
func NewNetwork(name string) *Network {
	return &Network{Name: name}
}

// VLAN returns the VLAN as it should be displayed: the numeric id when set,
// otherwise the raw marker, otherwise "".
func (n *Network) VLAN() string {
	if n.VLANID != nil {
		return strconv.Itoa(*n.VLANID)
	}
	return n.VLANRaw
}

// Subnet returns "ip/mask", "ip" or "" depending on which fields are set.
func (n *Network) Subnet() string {
	if n.SubnetIP != "" && n.SubnetMask != "" {
		return fmt.Sprintf("%s/%s", n.SubnetIP, n.SubnetMask)
	}
	return n.SubnetIP
}

// HasMember reports whether m is already a member of n.
func (n *Network) HasMember(m Member) bool {
	for _, x := range n.Members {
		if x == m {
			return true
		}
	}
	return false
}

// Devices returns the distinct device names among the members, in member
// order.
func (n *Network) Devices() []string {
	seen := make(map[string]bool, len(n.Members))
	var out []string
	for _, m := range n.Members {
		if !seen[m.Device] {
			seen[m.Device] = true
			out = append(out, m.Device)
		}
	}
	return out
}
