package graph

import (
	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// =============================================================================
// Document - Netlist Serialization Format
// =============================================================================

// Document is the canonical serialization format for netlist designs.
// It mirrors the import schema, so an exported document can be fed straight
// back into the frontend: import → export → re-import is stable.
//
// Bit entries are either an integer signal id or one of the constant
// strings "0", "1", "x", "z".
type Document struct {
	Creator string             `json:"creator,omitempty" bson:"creator,omitempty"`
	Modules map[string]*Module `json:"modules" bson:"modules"`
}

// Module is the serialized form of one netlist module.
type Module struct {
	Ports    map[string]*Port `json:"ports,omitempty" bson:"ports,omitempty"`
	Netnames map[string]*Net  `json:"netnames,omitempty" bson:"netnames,omitempty"`
	Cells    map[string]*Cell `json:"cells,omitempty" bson:"cells,omitempty"`
}

// Port is a serialized module port: a direction and its bits.
type Port struct {
	Direction string `json:"direction" bson:"direction"`
	Bits      []any  `json:"bits" bson:"bits"`
}

// Net is a serialized named net.
type Net struct {
	Bits []any `json:"bits" bson:"bits"`
}

// Cell is a serialized cell instance.
type Cell struct {
	Type        string           `json:"type" bson:"type"`
	Connections map[string][]any `json:"connections" bson:"connections"`
}

// =============================================================================
// Summary - Lightweight Design Statistics
// =============================================================================

// ModuleSummary holds headline counts for one module. It is the payload of
// the CLI stats output and the HTTP API module listing.
type ModuleSummary struct {
	Name        string `json:"name" bson:"name"`
	Ports       int    `json:"ports" bson:"ports"`
	Wires       int    `json:"wires" bson:"wires"`
	Cells       int    `json:"cells" bson:"cells"`
	Connections int    `json:"connections" bson:"connections"`
}

// Summarize computes per-module statistics in document order.
func Summarize(d *netlist.Design) []ModuleSummary {
	out := make([]ModuleSummary, 0, d.ModuleCount())
	for _, m := range d.Modules() {
		out = append(out, ModuleSummary{
			Name:        netlist.UnescapeID(m.Name),
			Ports:       len(m.Ports()),
			Wires:       m.WireCount(),
			Cells:       m.CellCount(),
			Connections: m.ConnectionCount(),
		})
	}
	return out
}
