package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	netio "github.com/matzehuels/netdiag/pkg/io"
	"github.com/matzehuels/netdiag/pkg/pipeline"
	"github.com/matzehuels/netdiag/pkg/topology"
)

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// inspectCommand creates the inspect command, which parses without rendering.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool
	opts := pipeline.Options{Input: pipeline.DefaultInput}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the devices and networks described by a table",
		Long: `Parse a table and print its devices, interfaces and networks.

With --json the topology document is printed as JSON instead, in the same
shape as topology.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Config.parseOptions(cmd, &opts)
			opts.Logger = c.Logger
			t, err := c.loadTopology(cmd.Context(), &opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return netio.WriteJSON(t, opts.Name, out)
			}
			writeInspect(out, t)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", opts.Input, "input table")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", ",", "field delimiter of the table")
	cmd.Flags().StringVar(&opts.Name, "name", "", "document name for --json")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the topology document as JSON")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable caching")

	return cmd
}

// loadTopology validates opts, reads the input and parses it.
func (c *CLI) loadTopology(ctx context.Context, opts *pipeline.Options) (*topology.Topology, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	data, err := pipeline.Load(*opts)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, opts.NoCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	return runner.Parse(ctx, data, *opts)
}

// writeInspect prints the device and network tables.
func writeInspect(w io.Writer, t *topology.Topology) {
	fmt.Fprintln(w, StyleTitle.Render("Devices"))
	fmt.Fprintln(w, deviceTable(t).Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Networks"))
	fmt.Fprintln(w, networkTable(t).Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%s devices · %s interfaces · %s networks · %s links",
		StyleNumber.Render(fmt.Sprint(t.DeviceCount())),
		StyleNumber.Render(fmt.Sprint(t.InterfaceCount())),
		StyleNumber.Render(fmt.Sprint(t.NetworkCount())),
		StyleNumber.Render(fmt.Sprint(len(t.Links()))))))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// deviceTable has one row per interface; devices without interfaces get a
// single row.
func deviceTable(t *topology.Topology) *table.Table {
	tbl := newTable("Device", "Role", "Interface", "Mode", "IP", "Network", "Gateway")
	for _, d := range t.Devices() {
		ifaces := d.Interfaces()
		if len(ifaces) == 0 {
			tbl.Row(d.Name, string(d.Role), dash(""), dash(""), dash(""), dash(""), dash(""))
			continue
		}
		for i, iface := range ifaces {
			name, role := d.Name, string(d.Role)
			if i > 0 {
				name, role = "", ""
			}
			tbl.Row(name, role, iface.Name, string(iface.Mode), dash(iface.IPAddress), dash(iface.Network), dash(iface.Gateway))
		}
	}
	return tbl
}

func networkTable(t *topology.Topology) *table.Table {
	tbl := newTable("Network", "VLAN", "Subnet", "Members")
	for _, n := range t.Networks() {
		members := make([]string, len(n.Members))
		for i, m := range n.Members {
			members[i] = m.String()
		}
		tbl.Row(n.Name, dash(n.VLAN()), dash(n.Subnet()), dash(strings.Join(members, ", ")))
	}
	return tbl
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
