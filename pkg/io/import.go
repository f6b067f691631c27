package io

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// ReadYAML decodes a topology document from r.
//
// It returns an INPUT error if the YAML is malformed, a node has an unknown
// role, or a network lists an interface that no node declares or that more
// than one node declares under the same joined name. The returned
// topology is independent of r; ReadYAML does not close r.
func ReadYAML(r io.Reader) (*topology.Topology, Meta, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, Meta{}, errors.Wrap(errors.ErrCodeInput, err, "decode topology document")
	}

	t, err := doc.Topology()
	if err != nil {
		return nil, Meta{}, err
	}
	return t, doc.Meta, nil
}

// ImportYAML reads the YAML document at path.
func ImportYAML(path string) (*topology.Topology, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, errors.Wrap(errors.ErrCodeInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadYAML(f)
}

// Topology rebuilds the topology described by the document.
func (doc Document) Topology() (*topology.Topology, error) {
	t := topology.New()

	for _, n := range doc.Nodes {
		role := topology.Role(n.Role)
		if !role.Valid() {
			return nil, errors.New(errors.ErrCodeInput, "node %q: unknown role %q", n.Name, n.Role)
		}
		d := topology.NewDevice(n.Name, role)
		for _, i := range n.Interfaces {
			mode := topology.Mode(i.Mode)
			if mode == "" {
				mode = topology.ModeAccess
			}
			d.AddInterface(topology.Interface{
				Name:      i.Name,
				IPAddress: deref(i.IP),
				Network:   deref(i.Network),
				Gateway:   deref(i.Gateway),
				Mode:      mode,
			})
		}
		if err := t.AddDevice(d); err != nil {
			return nil, err
		}
	}

	for _, n := range doc.Networks {
		out := topology.NewNetwork(n.Name)
		out.SubnetIP = n.IP
		out.SubnetMask = n.Mask
		if err := setVLAN(out, n.VLAN); err != nil {
			return nil, fmt.Errorf("network %s: %w", n.Name, err)
		}
		for _, ref := range n.Interfaces {
			matches := splitMember(t, ref)
			switch len(matches) {
			case 0:
				return nil, errors.New(errors.ErrCodeInput, "network %q: unknown interface %q", n.Name, ref)
			case 1:
				out.Members = append(out.Members, matches[0])
			default:
				return nil, errors.New(errors.ErrCodeInput, "network %q: interface %q matches %d interfaces", n.Name, ref, len(matches))
			}
		}
		if err := t.AddNetwork(out); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func setVLAN(n *topology.Network, v any) error {
	switch v := v.(type) {
	case nil:
	case int:
		n.VLANID = &v
		n.VLANRaw = strconv.Itoa(v)
	case float64:
		id := int(v)
		if float64(id) != v {
			return errors.New(errors.ErrCodeInput, "vlan %v is not an integer", v)
		}
		n.VLANID = &id
		n.VLANRaw = strconv.Itoa(id)
	case string:
		n.VLANRaw = v
	default:
		return errors.New(errors.ErrCodeInput, "unsupported vlan value %v", v)
	}
	return nil
}

// splitMember resolves "device.interface". Both names may contain dots, so
// every split point is tried against the declared interfaces and all
// matches are returned.
func splitMember(t *topology.Topology, ref string) []topology.Member {
	var matches []topology.Member
	for i := strings.Index(ref, "."); i >= 0; {
		m := topology.Member{Device: ref[:i], Interface: ref[i+1:]}
		if _, ok := t.Lookup(m); ok {
			matches = append(matches, m)
		}
		next := strings.Index(ref[i+1:], ".")
		if next < 0 {
			break
		}
		i += next + 1
	}
	return matches
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
