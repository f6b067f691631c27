package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netdiag/pkg/pipeline"
	"github.com/matzehuels/netdiag/pkg/topology"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive device browser.
func (c *CLI) browseCommand() *cobra.Command {
	opts := pipeline.Options{Input: pipeline.DefaultInput}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse devices and their interfaces interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Config.pipelineOptions(cmd, &opts)
			opts.Logger = c.Logger
			t, err := c.loadTopology(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			if t.DeviceCount() == 0 {
				printWarning("No devices in %s", opts.Input)
				return nil
			}

			p := tea.NewProgram(NewDeviceListModel(t), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", opts.Input, "input table")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", ",", "field delimiter of the table")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// DeviceListModel - Interactive device browser
// =============================================================================

// DeviceListModel is the bubbletea model for browsing devices. The selected
// device's interfaces are shown below the list.
type DeviceListModel struct {
	Topology *topology.Topology
	Devices  []*topology.Device
	Cursor   int
	Height   int
	Offset   int
}

// NewDeviceListModel creates a browser over t's devices.
func NewDeviceListModel(t *topology.Topology) DeviceListModel {
	return DeviceListModel{
		Topology: t,
		Devices:  t.Devices(),
		Height:   10,
	}
}

func (m DeviceListModel) Init() tea.Cmd {
	return nil
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Devices)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(len(m.Devices)-1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the interface panel.
		m.Height = max(msg.Height/2-4, 3)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

// Selected returns the device under the cursor, or nil.
func (m DeviceListModel) Selected() *topology.Device {
	if m.Cursor < 0 || m.Cursor >= len(m.Devices) {
		return nil
	}
	return m.Devices[m.Cursor]
}

func (m DeviceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Devices"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Devices))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Devices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, string(d.Role), fmt.Sprint(d.InterfaceCount()), dash(strings.Join(deviceNetworks(d), ", "))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Device", "Role", "Ifaces", "Networks").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 4 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Devices))))
	b.WriteString("\n\n")

	if d := m.Selected(); d != nil {
		b.WriteString(m.interfaceView(d))
	}
	return b.String()
}

// interfaceView lists d's interfaces with their addressing.
func (m DeviceListModel) interfaceView(d *topology.Device) string {
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(d.Name))
	b.WriteString(listDimStyle.Render(" · " + string(d.Role)))
	b.WriteString("\n")

	ifaces := d.Interfaces()
	if len(ifaces) == 0 {
		b.WriteString(listDimStyle.Render("  no interfaces"))
		b.WriteString("\n")
		return b.String()
	}
	for _, iface := range ifaces {
		line := fmt.Sprintf("  %-10s %-7s %-16s", iface.Name, iface.Mode, dash(iface.IPAddress))
		b.WriteString(listNormalStyle.Render(line))
		if iface.Network != "" {
			b.WriteString(listDimStyle.Render(" on ") + StyleValue.Render(iface.Network))
			if n, ok := m.Topology.Network(iface.Network); ok && n.VLAN() != "" {
				b.WriteString(listDimStyle.Render(" (VLAN " + n.VLAN() + ")"))
			}
		}
		if iface.Gateway != "" {
			b.WriteString(listDimStyle.Render(" via " + iface.Gateway))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// deviceNetworks returns the distinct networks d is attached to, in
// interface order.
func deviceNetworks(d *topology.Device) []string {
	var out []string
	seen := make(map[string]bool)
	for _, iface := range d.Interfaces() {
		if iface.Network != "" && !seen[iface.Network] {
			seen[iface.Network] = true
			out = append(out, iface.Network)
		}
	}
	return out
}
