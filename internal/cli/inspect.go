package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rtlgraph/rtlgraph/pkg/graph"
	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// newInspectCmd creates the inspect command: an interactive browser over the
// modules of an imported design.
func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Browse a design's modules interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			design, err := importDesign(cmd.Context(), args[0], importOptions(cmd.Context(), false, false))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newInspectModel(design)).Run()
			return err
		},
	}
}

// =============================================================================
// inspectModel - Module list with drill-down detail view
// =============================================================================

// inspectModel is the bubbletea model for design browsing. It shows the
// module list and, after selection, a scrollable per-module detail view.
type inspectModel struct {
	modules []*netlist.Module
	sums    []graph.ModuleSummary

	// List view state.
	cursor int
	offset int
	height int

	// Detail view state. detail is nil while the list is shown.
	detail       *netlist.Module
	detailLines  []string
	detailOffset int
}

func newInspectModel(d *netlist.Design) inspectModel {
	return inspectModel{
		modules: d.Modules(),
		sums:    graph.Summarize(d),
		height:  15,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m inspectModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(m.modules)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "enter":
		if len(m.modules) > 0 {
			m.detail = m.modules[m.cursor]
			m.detailLines = moduleLines(m.detail)
			m.detailOffset = 0
		}
	}
	return m, nil
}

func (m inspectModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.detail = nil
	case "up", "k":
		if m.detailOffset > 0 {
			m.detailOffset--
		}
	case "down", "j":
		if m.detailOffset < len(m.detailLines)-m.height {
			m.detailOffset++
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	if m.detail != nil {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m inspectModel) viewList() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Modules"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.sums) {
		end = len(m.sums)
	}
	for i := m.offset; i < end; i++ {
		s := m.sums[i]
		line := fmt.Sprintf("%-24s %3d ports  %4d wires  %4d cells", s.Name, s.Ports, s.Wires, s.Cells)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m inspectModel) viewDetail() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(netlist.UnescapeID(m.detail.Name)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ scroll  esc back  q quit"))
	b.WriteString("\n\n")

	end := m.detailOffset + m.height
	if end > len(m.detailLines) {
		end = len(m.detailLines)
	}
	for i := m.detailOffset; i < end; i++ {
		b.WriteString(m.detailLines[i])
		b.WriteString("\n")
	}
	return b.String()
}

// moduleLines renders the scrollable body of the detail view: ports with
// direction and width, then named wires, then cells with port bindings.
func moduleLines(mod *netlist.Module) []string {
	var lines []string

	ports := mod.Ports()
	lines = append(lines, styleSection.Render(fmt.Sprintf("Ports (%d)", len(ports))))
	for _, w := range ports {
		lines = append(lines, listNormalStyle.Render(
			fmt.Sprintf("  %-20s %-6s width %d", netlist.UnescapeID(w.Name), portDirection(w), w.Width)))
	}

	var named []*netlist.Wire
	for _, w := range mod.Wires() {
		if !w.IsPort() && netlist.IsPublicID(w.Name) {
			named = append(named, w)
		}
	}
	lines = append(lines, "", styleSection.Render(fmt.Sprintf("Wires (%d)", len(named))))
	for _, w := range named {
		lines = append(lines, listNormalStyle.Render(
			fmt.Sprintf("  %-20s width %d", netlist.UnescapeID(w.Name), w.Width)))
	}

	cells := mod.Cells()
	lines = append(lines, "", styleSection.Render(fmt.Sprintf("Cells (%d)", len(cells))))
	for _, c := range cells {
		lines = append(lines, listNormalStyle.Render(
			fmt.Sprintf("  %-20s %s", netlist.UnescapeID(c.Name), netlist.UnescapeID(c.Type))))
		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			lines = append(lines, listDimStyle.Render(
				fmt.Sprintf("      .%s(%s)", netlist.UnescapeID(port), sigString(sig))))
		}
	}
	return lines
}

func portDirection(w *netlist.Wire) string {
	switch {
	case w.PortInput && w.PortOutput:
		return "inout"
	case w.PortOutput:
		return "output"
	default:
		return "input"
	}
}

func sigString(sig netlist.SigSpec) string {
	parts := make([]string, len(sig))
	for i, b := range sig {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}
