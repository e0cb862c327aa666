// Package render draws netlist modules as node-link diagrams: cells as
// boxes, named wires as ellipses, and port bindings as labeled edges.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// Options configures module rendering.
type Options struct {
	// ShowAnonymous includes anonymous ($-prefixed) wires in the diagram.
	// When false, only named wires appear and cell ports bound to
	// anonymous wires are drawn without a wire node.
	ShowAnonymous bool
}

// ToDOT converts a module to Graphviz DOT format.
// Cells are rendered as boxes labeled with instance name and type, wires
// as ellipses (module ports with a bold outline). Each cell port binding
// produces one edge per referenced wire, labeled with the port name.
// Constant bits do not produce nodes.
func ToDOT(m *netlist.Module, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", netlist.UnescapeID(m.Name))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [fontsize=12];\n")
	buf.WriteString("\n")

	for _, w := range m.Wires() {
		if !opts.ShowAnonymous && !netlist.IsPublicID(w.Name) {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", w.Name, strings.Join(wireAttrs(w), ", "))
	}

	buf.WriteString("\n")
	for _, c := range m.Cells() {
		label := fmt.Sprintf("%s\\n%s", netlist.UnescapeID(c.Name), netlist.UnescapeID(c.Type))
		fmt.Fprintf(&buf, "  %q [shape=box, label=\"%s\"];\n", c.Name, label)

		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			for _, w := range wiresOf(sig, opts) {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", w.Name, c.Name, netlist.UnescapeID(port))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func wireAttrs(w *netlist.Wire) []string {
	label := netlist.UnescapeID(w.Name)
	if w.Width != 1 {
		label = fmt.Sprintf("%s[%d]", label, w.Width)
	}
	attrs := []string{fmt.Sprintf("label=%q", label), "shape=ellipse"}
	if w.IsPort() {
		attrs = append(attrs, "style=bold")
	}
	return attrs
}

// wiresOf returns the distinct wires referenced by sig, in signal order.
func wiresOf(sig netlist.SigSpec, opts Options) []*netlist.Wire {
	var out []*netlist.Wire
	seen := make(map[*netlist.Wire]bool)
	for _, b := range sig {
		if b.IsConst() || seen[b.Wire] {
			continue
		}
		if !opts.ShowAnonymous && !netlist.IsPublicID(b.Wire.Name) {
			continue
		}
		seen[b.Wire] = true
		out = append(out, b.Wire)
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
