package d2

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/netdiag/pkg/errors"
	"github.com/matzehuels/netdiag/pkg/render"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// Theme is the D2 theme number passed to the d2 tool.
// See https://d2lang.com/tour/themes/.
const Theme = 200

const installHint = "curl -fsSL https://d2lang.com/install.sh | sh -s --"

var shapes = map[topology.Role]string{
	topology.RoleHost:   "rectangle",
	topology.RoleRouter: "oval",
	topology.RoleSwitch: "hexagon",
}

// ToD2 converts a topology to D2 source.
func ToD2(t *topology.Topology) string {
	home := placeHosts(t)
	nets := containerKeys(t)

	var b strings.Builder
	for _, d := range t.Devices() {
		if _, ok := home[d.Name]; !ok {
			writeDevice(&b, d, "")
		}
	}

	for _, n := range t.Networks() {
		fmt.Fprintf(&b, "\n%s: {\n", key(nets[n.Name]))
		fmt.Fprintf(&b, "  label: %s\n", containerLabel(n))
		for _, name := range n.Devices() {
			if home[name] == n.Name {
				d, _ := t.Device(name)
				writeDevice(&b, d, "  ")
			}
		}
		b.WriteString("}\n")
	}

	for _, l := range t.Links() {
		if home[l.From.Device] == l.Network && home[l.To.Device] == l.Network {
			continue
		}
		fmt.Fprintf(&b, "\n%s -- %s: {\n", path(home, nets, l.From.Device), path(home, nets, l.To.Device))
		fmt.Fprintf(&b, "  source-arrowhead.label: %s\n", l.From.Interface)
		fmt.Fprintf(&b, "  target-arrowhead.label: %s\n", l.To.Interface)
		b.WriteString("}\n")
	}

	return b.String()
}

// placeHosts maps each host to the network of its first attached interface.
func placeHosts(t *topology.Topology) map[string]string {
	home := make(map[string]string)
	for _, d := range t.Devices() {
		if d.Role != topology.RoleHost {
			continue
		}
		for _, i := range d.Interfaces() {
			if i.Network != "" {
				home[d.Name] = i.Network
				break
			}
		}
	}
	return home
}

// containerKeys gives each network a D2 key that no device or other network
// uses. D2 keys are case-insensitive, so a clash is resolved by prefixing
// "net " until the key is free.
func containerKeys(t *topology.Topology) map[string]string {
	taken := make(map[string]bool)
	for _, d := range t.Devices() {
		taken[strings.ToLower(d.Name)] = true
	}
	keys := make(map[string]string)
	for _, n := range t.Networks() {
		k := n.Name
		for taken[strings.ToLower(k)] {
			k = "net " + k
		}
		taken[strings.ToLower(k)] = true
		keys[n.Name] = k
	}
	return keys
}

func writeDevice(b *strings.Builder, d *topology.Device, indent string) {
	k := key(d.Name)
	fmt.Fprintf(b, "%s%s: |md\n", indent, k)
	fmt.Fprintf(b, "%s  # %s\n", indent, d.Name)
	for _, i := range d.Interfaces() {
		if i.IPAddress != "" {
			fmt.Fprintf(b, "%s  %s %s\n", indent, i.Name, i.IPAddress)
		}
	}
	fmt.Fprintf(b, "%s|\n", indent)
	fmt.Fprintf(b, "%s%s.shape: %s\n", indent, k, shapes[d.Role])
}

func containerLabel(n *topology.Network) string {
	if n.VLANID != nil {
		return fmt.Sprintf("VLAN %d", *n.VLANID)
	}
	return n.Name
}

func path(home, nets map[string]string, device string) string {
	if net, ok := home[device]; ok {
		return key(nets[net]) + "." + key(device)
	}
	return key(device)
}

// key quotes a D2 identifier unless it is plain enough to stand alone.
func key(s string) string {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Sprintf("%q", s)
		}
	}
	return s
}

// Formats lists the output formats the d2 tool can produce.
var Formats = map[string]bool{
	render.FormatPNG: true,
	render.FormatSVG: true,
	render.FormatPDF: true,
}

// Render validates src and renders it with the d2 binary in the given format.
func Render(ctx context.Context, src, format string) ([]byte, error) {
	if !Formats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "d2 cannot render %q", format)
	}
	bin, err := render.LookTool("d2", installHint)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "netdiag-d2-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "diagram.d2")
	out := filepath.Join(dir, "diagram."+format)
	if err := os.WriteFile(in, []byte(src), 0644); err != nil {
		return nil, fmt.Errorf("write d2 source: %w", err)
	}

	if _, err := render.Exec(ctx, bin, nil, "validate", in); err != nil {
		return nil, fmt.Errorf("d2 validate: %w", err)
	}
	if _, err := render.Exec(ctx, bin, nil, fmt.Sprintf("--theme=%d", Theme), in, out); err != nil {
		return nil, fmt.Errorf("d2 render: %w", err)
	}
	return os.ReadFile(out)
}
