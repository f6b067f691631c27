package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/netdiag/pkg/topology"
)

// Document is the serialized form of a topology.
type Document struct {
	Meta     Meta      `yaml:"meta" json:"meta"`
	Networks []network `yaml:"networks" json:"networks"`
	Links    []link    `yaml:"links" json:"links"`
	Nodes    []node    `yaml:"nodes" json:"nodes"`
}

// Meta identifies the lab the document describes.
type Meta struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type network struct {
	Name       string   `yaml:"name" json:"name"`
	VLAN       any      `yaml:"vlan,omitempty" json:"vlan,omitempty"`
	IP         string   `yaml:"ip,omitempty" json:"ip,omitempty"`
	Mask       string   `yaml:"mask,omitempty" json:"mask,omitempty"`
	Interfaces []string `yaml:"interfaces,flow" json:"interfaces"`
}

type link struct {
	Endpoints  []string `yaml:"endpoints,flow" json:"endpoints"`
	Interfaces []string `yaml:"interfaces,flow" json:"interfaces"`
	Network    string   `yaml:"network" json:"network"`
}

type node struct {
	Role       string  `yaml:"role" json:"role"`
	Name       string  `yaml:"name" json:"name"`
	Interfaces []iface `yaml:"interfaces" json:"interfaces"`
}

type iface struct {
	Name    string  `yaml:"name" json:"name"`
	Mode    string  `yaml:"mode" json:"mode"`
	IP      *string `yaml:"ip" json:"ip"`
	Network *string `yaml:"network" json:"network"`
	Gateway *string `yaml:"gateway" json:"gateway"`
}

// NewDocument converts t into its serialized form. name is used for both
// meta.id and meta.name.
func NewDocument(t *topology.Topology, name string) Document {
	doc := Document{
		Meta:     Meta{ID: name, Name: name},
		Networks: []network{},
		Links:    []link{},
		Nodes:    []node{},
	}

	for _, n := range t.Networks() {
		out := network{
			Name:       n.Name,
			IP:         n.SubnetIP,
			Mask:       n.SubnetMask,
			Interfaces: make([]string, len(n.Members)),
		}
		switch {
		case n.VLANID != nil:
			out.VLAN = *n.VLANID
		case n.VLANRaw != "":
			out.VLAN = n.VLANRaw
		}
		for i, m := range n.Members {
			out.Interfaces[i] = m.String()
		}
		doc.Networks = append(doc.Networks, out)
	}

	for _, l := range t.Links() {
		doc.Links = append(doc.Links, link{
			Endpoints:  []string{l.From.Device, l.To.Device},
			Interfaces: []string{l.From.String(), l.To.String()},
			Network:    l.Network,
		})
	}

	for _, d := range t.Devices() {
		out := node{Role: string(d.Role), Name: d.Name, Interfaces: []iface{}}
		for _, i := range d.Interfaces() {
			out.Interfaces = append(out.Interfaces, iface{
				Name:    i.Name,
				Mode:    string(i.Mode),
				IP:      optional(i.IPAddress),
				Network: optional(i.Network),
				Gateway: optional(i.Gateway),
			})
		}
		doc.Nodes = append(doc.Nodes, out)
	}

	return doc
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteYAML encodes t as a YAML document and writes it to w.
func WriteYAML(t *topology.Topology, name string, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(t, name)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes t as an indented JSON document and writes it to w.
func WriteJSON(t *topology.Topology, name string, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(t, name)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportYAML writes t as YAML to the file at path, creating parent
// directories as needed.
func ExportYAML(t *topology.Topology, name, path string) error {
	return export(path, func(w io.Writer) error { return WriteYAML(t, name, w) })
}

// ExportJSON writes t as JSON to the file at path, creating parent
// directories as needed.
func ExportJSON(t *topology.Topology, name, path string) error {
	return export(path, func(w io.Writer) error { return WriteJSON(t, name, w) })
}

func export(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
