// Package graph serializes netlist designs back into the JSON document
// format understood by the frontend, plus a compact BSON encoding for
// storage and transport.
//
// Exported documents use canonical signal ids: every electrically
// identical group of bits (as recorded by module connections) shares one
// id, so re-importing an exported document reproduces the same aliasing.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// Creator is recorded in exported documents.
const Creator = "rtlgraph"

// =============================================================================
// Design Serialization API
// =============================================================================

// Marshal converts a design to indented JSON bytes.
// Object keys are emitted in sorted order for deterministic output.
func Marshal(d *netlist.Design) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes a design as JSON to an io.Writer.
func Write(d *netlist.Design, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDesign(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a design to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(d *netlist.Design, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(d, f)
}

// EncodeBSON converts a design to its BSON document encoding.
func EncodeBSON(d *netlist.Design) ([]byte, error) {
	data, err := bson.Marshal(FromDesign(d))
	if err != nil {
		return nil, fmt.Errorf("encode bson: %w", err)
	}
	return data, nil
}

// DecodeBSON decodes a BSON-encoded document.
func DecodeBSON(data []byte) (Document, error) {
	var doc Document
	if err := bson.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode bson: %w", err)
	}
	return doc, nil
}

// =============================================================================
// Design → Document Conversion
// =============================================================================

// FromDesign converts a design to its serialization format.
// Document names are unescaped; anonymous ($-prefixed) wires do not appear
// under netnames but their bits keep stable ids through cell connections.
func FromDesign(d *netlist.Design) Document {
	doc := Document{
		Creator: Creator,
		Modules: make(map[string]*Module, d.ModuleCount()),
	}
	for _, m := range d.Modules() {
		doc.Modules[netlist.UnescapeID(m.Name)] = fromModule(m)
	}
	return doc
}

func fromModule(m *netlist.Module) *Module {
	ids := newBitIDs(m)
	out := &Module{
		Ports:    make(map[string]*Port),
		Netnames: make(map[string]*Net),
		Cells:    make(map[string]*Cell),
	}

	for _, w := range m.Ports() {
		out.Ports[netlist.UnescapeID(w.Name)] = &Port{
			Direction: direction(w),
			Bits:      ids.wireBits(w),
		}
	}

	for _, w := range m.Wires() {
		if !netlist.IsPublicID(w.Name) {
			continue
		}
		out.Netnames[netlist.UnescapeID(w.Name)] = &Net{Bits: ids.wireBits(w)}
	}

	for _, c := range m.Cells() {
		cell := &Cell{
			Type:        netlist.UnescapeID(c.Type),
			Connections: make(map[string][]any),
		}
		for _, port := range c.PortNames() {
			sig, _ := c.Port(port)
			bits := make([]any, len(sig))
			for i, b := range sig {
				bits[i] = ids.bit(b)
			}
			cell.Connections[netlist.UnescapeID(port)] = bits
		}
		out.Cells[netlist.UnescapeID(c.Name)] = cell
	}

	if len(out.Ports) == 0 {
		out.Ports = nil
	}
	if len(out.Netnames) == 0 {
		out.Netnames = nil
	}
	if len(out.Cells) == 0 {
		out.Cells = nil
	}
	return out
}

func direction(w *netlist.Wire) string {
	switch {
	case w.PortInput && w.PortOutput:
		return "inout"
	case w.PortOutput:
		return "output"
	default:
		return "input"
	}
}

// =============================================================================
// Canonical Bit Ids
// =============================================================================

// bitIDs assigns one integer id per electrically distinct bit of a module.
// Connections recorded during import collapse aliased bits onto a single
// canonical bit, which then owns the id.
type bitIDs struct {
	canon map[netlist.SigBit]netlist.SigBit // dst -> src per connection
	ids   map[netlist.SigBit]int
	next  int
}

func newBitIDs(m *netlist.Module) *bitIDs {
	b := &bitIDs{
		canon: make(map[netlist.SigBit]netlist.SigBit),
		ids:   make(map[netlist.SigBit]int),
	}
	for _, c := range m.Connections() {
		b.canon[c.Dst] = c.Src
	}
	return b
}

// resolve follows connection sources to the canonical bit. The visited set
// guards against malformed cyclic aliasing.
func (b *bitIDs) resolve(bit netlist.SigBit) netlist.SigBit {
	visited := map[netlist.SigBit]bool{bit: true}
	for {
		src, ok := b.canon[bit]
		if !ok || src.IsConst() {
			if ok {
				return src
			}
			return bit
		}
		if visited[src] {
			return bit
		}
		visited[src] = true
		bit = src
	}
}

// bit returns the document entry for one bit: a constant spelling or the
// canonical bit's id, allocating a fresh id on first sight.
func (b *bitIDs) bit(bit netlist.SigBit) any {
	if bit.IsConst() {
		return bit.State.String()
	}
	c := b.resolve(bit)
	if c.IsConst() {
		return c.State.String()
	}
	id, ok := b.ids[c]
	if !ok {
		id = b.next
		b.next++
		b.ids[c] = id
	}
	return id
}

func (b *bitIDs) wireBits(w *netlist.Wire) []any {
	bits := make([]any, w.Width)
	for i := 0; i < w.Width; i++ {
		bits[i] = b.bit(netlist.Bit(w, i))
	}
	return bits
}
