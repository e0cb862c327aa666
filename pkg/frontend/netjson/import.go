// Package netjson imports JSON netlist documents into a [netlist.Design].
//
// A document describes modules in three independently-authored sections:
// ports, netnames, and cells. All three reference shared module-scoped
// integer signal ids. The importer walks the sections in that order,
// resolving each id to a canonical wire bit as it goes:
//
//   - the first occurrence of an id becomes its representative bit;
//   - a later occurrence on an output port is driven by the representative;
//   - a later occurrence on an input-side port drives the representative,
//     and the representative moves to the new bit;
//   - a later occurrence in netnames is driven by the representative
//     (never reassigns);
//   - an id first seen in a cell connection allocates a fresh anonymous
//     1-bit wire.
//
// The walk is a single streaming pass per module with no backtracking.
// Any schema violation aborts the whole import; whatever was already
// committed to the design stays committed.
package netjson

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
	"github.com/rtlgraph/rtlgraph/pkg/jsonval"
	"github.com/rtlgraph/rtlgraph/pkg/netlist"
)

// Port direction strings recognized in the ports section.
const (
	DirInput  = "input"
	DirOutput = "output"
	DirInout  = "inout"
)

// Options configures an import run.
type Options struct {
	// StrictSeparators and RejectDuplicateKeys are forwarded to the
	// parser; see [jsonval.Options].
	StrictSeparators    bool
	RejectDuplicateKeys bool

	// Logger receives progress messages. Nil disables logging.
	Logger func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger(format, args...)
	}
}

// Read parses one JSON netlist document from r and imports its modules
// into design. The design is mutated in place; on error it keeps whatever
// was committed before the failing step.
func Read(r io.Reader, design *netlist.Design, opts Options) error {
	root, err := jsonval.ParseWith(r, jsonval.Options{
		StrictSeparators:    opts.StrictSeparators,
		RejectDuplicateKeys: opts.RejectDuplicateKeys,
	})
	if err != nil {
		return err
	}
	return Import(root, design, opts)
}

// ImportFile reads and imports the JSON netlist document at path.
func ImportFile(path string, design *netlist.Design, opts Options) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := Read(f, design, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Import walks an already-parsed value tree and imports its modules into
// design. The root must be an object; a missing "modules" key is a no-op.
func Import(root *jsonval.Value, design *netlist.Design, opts Options) error {
	if root.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "root is not an object (got %s)", root.Kind())
	}

	mods, ok := root.Get("modules")
	if !ok {
		return nil
	}
	if mods.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "modules is not an object (got %s)", mods.Kind())
	}

	for _, name := range mods.Keys() {
		node, _ := mods.Get(name)
		if err := importModule(design, name, node, opts); err != nil {
			return err
		}
	}
	return nil
}

// moduleImporter carries the per-module state of one import: the target
// module and the signal-id resolution table. The table is discarded at the
// module boundary so ids never leak across modules.
type moduleImporter struct {
	mod  *netlist.Module
	bits map[int]netlist.SigBit
}

func importModule(design *netlist.Design, name string, node *jsonval.Value, opts Options) error {
	opts.logf("importing module %s", name)

	if node.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "module %q is not an object (got %s)", name, node.Kind())
	}

	mod, err := design.AddModule(netlist.EscapeID(name))
	if err != nil {
		if stderrors.Is(err, netlist.ErrDuplicateModule) {
			return errors.New(errors.ErrCodeNameConflict, "re-definition of module %q", name)
		}
		return errors.Wrap(errors.ErrCodeSchema, err, "module %q", name)
	}

	// Module attributes and parameters are intentionally not imported.

	imp := &moduleImporter{mod: mod, bits: make(map[int]netlist.SigBit)}

	if ports, ok := node.Get("ports"); ok {
		if err := imp.importPorts(ports); err != nil {
			return err
		}
	}
	if nets, ok := node.Get("netnames"); ok {
		if err := imp.importNetnames(nets); err != nil {
			return err
		}
	}
	if cells, ok := node.Get("cells"); ok {
		if err := imp.importCells(cells); err != nil {
			return err
		}
	}
	return nil
}

// constBit classifies a string bit entry as one of the four constants.
func constBit(s string) (netlist.SigBit, bool) {
	st, ok := netlist.StateFromString(s)
	if !ok {
		return netlist.SigBit{}, false
	}
	return netlist.ConstBit(st), true
}

func (imp *moduleImporter) importPorts(ports *jsonval.Value) error {
	mod := imp.mod
	if ports.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "module %q: ports is not an object", mod.Name)
	}

	for _, portName := range ports.Keys() {
		port, _ := ports.Get(portName)
		if port.Kind() != jsonval.KindObject {
			return errors.New(errors.ErrCodeSchema, "port %q is not an object", portName)
		}

		dir, ok := port.Get("direction")
		if !ok {
			return errors.New(errors.ErrCodeSchema, "port %q has no direction attribute", portName)
		}
		bits, ok := port.Get("bits")
		if !ok {
			return errors.New(errors.ErrCodeSchema, "port %q has no bits attribute", portName)
		}
		if dir.Kind() != jsonval.KindString {
			return errors.New(errors.ErrCodeSchema, "port %q has a non-string direction attribute", portName)
		}
		if bits.Kind() != jsonval.KindArray {
			return errors.New(errors.ErrCodeSchema, "port %q has a non-array bits attribute", portName)
		}

		name := netlist.EscapeID(portName)
		wire := mod.Wire(name)
		if wire == nil {
			w, err := mod.AddWire(name, bits.Len())
			if err != nil {
				return errors.Wrap(errors.ErrCodeSchema, err, "port %q", portName)
			}
			wire = w
		}

		switch dir.Str() {
		case DirInput:
			wire.PortInput = true
		case DirOutput:
			wire.PortOutput = true
		case DirInout:
			wire.PortInput = true
			wire.PortOutput = true
		default:
			return errors.New(errors.ErrCodeSchema, "port %q has invalid direction %q", portName, dir.Str())
		}

		for i := 0; i < bits.Len(); i++ {
			entry := bits.At(i)
			if i >= wire.Width {
				return errors.New(errors.ErrCodeSchema, "port %q bit %d out of range for wire of width %d", portName, i, wire.Width)
			}
			bit := netlist.Bit(wire, i)

			switch entry.Kind() {
			case jsonval.KindString:
				c, ok := constBit(entry.Str())
				if !ok {
					return errors.New(errors.ErrCodeSchema, "port %q has invalid constant %q on bit %d", portName, entry.Str(), i)
				}
				if err := mod.Connect(bit, c); err != nil {
					return errors.Wrap(errors.ErrCodeSchema, err, "port %q bit %d", portName, i)
				}

			case jsonval.KindInt:
				id := entry.Int()
				rep, seen := imp.bits[id]
				if !seen {
					// First occurrence becomes the representative;
					// no connection is emitted.
					imp.bits[id] = bit
					continue
				}
				if wire.PortOutput {
					// Existing representative drives the new output bit.
					if err := mod.Connect(bit, rep); err != nil {
						return errors.Wrap(errors.ErrCodeSchema, err, "port %q bit %d", portName, i)
					}
				} else {
					// The new input-side bit drives the old representative
					// and takes over as representative.
					if err := mod.Connect(rep, bit); err != nil {
						return errors.Wrap(errors.ErrCodeSchema, err, "port %q bit %d", portName, i)
					}
					imp.bits[id] = bit
				}

			default:
				return errors.New(errors.ErrCodeSchema, "port %q has invalid bit value on bit %d (got %s)", portName, i, entry.Kind())
			}
		}
	}

	mod.FixupPorts()
	return nil
}

func (imp *moduleImporter) importNetnames(nets *jsonval.Value) error {
	mod := imp.mod
	if nets.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "module %q: netnames is not an object", mod.Name)
	}

	for _, netName := range nets.Keys() {
		net, _ := nets.Get(netName)
		if net.Kind() != jsonval.KindObject {
			return errors.New(errors.ErrCodeSchema, "netname %q is not an object", netName)
		}

		bits, ok := net.Get("bits")
		if !ok {
			return errors.New(errors.ErrCodeSchema, "netname %q has no bits attribute", netName)
		}
		if bits.Kind() != jsonval.KindArray {
			return errors.New(errors.ErrCodeSchema, "netname %q has a non-array bits attribute", netName)
		}

		name := netlist.EscapeID(netName)
		wire := mod.Wire(name)
		if wire == nil {
			w, err := mod.AddWire(name, bits.Len())
			if err != nil {
				return errors.Wrap(errors.ErrCodeSchema, err, "netname %q", netName)
			}
			wire = w
		}

		for i := 0; i < bits.Len(); i++ {
			entry := bits.At(i)
			if i >= wire.Width {
				return errors.New(errors.ErrCodeSchema, "netname %q bit %d out of range for wire of width %d", netName, i, wire.Width)
			}
			bit := netlist.Bit(wire, i)

			switch entry.Kind() {
			case jsonval.KindString:
				c, ok := constBit(entry.Str())
				if !ok {
					return errors.New(errors.ErrCodeSchema, "netname %q has invalid constant %q on bit %d", netName, entry.Str(), i)
				}
				if err := mod.Connect(bit, c); err != nil {
					return errors.Wrap(errors.ErrCodeSchema, err, "netname %q bit %d", netName, i)
				}

			case jsonval.KindInt:
				id := entry.Int()
				rep, seen := imp.bits[id]
				if !seen {
					imp.bits[id] = bit
					continue
				}
				// Unlike ports, netnames never reassign the
				// representative; identical bits need no connection.
				if bit != rep {
					if err := mod.Connect(bit, rep); err != nil {
						return errors.Wrap(errors.ErrCodeSchema, err, "netname %q bit %d", netName, i)
					}
				}

			default:
				return errors.New(errors.ErrCodeSchema, "netname %q has invalid bit value on bit %d (got %s)", netName, i, entry.Kind())
			}
		}

		// Wire attributes are intentionally not imported.
	}
	return nil
}

func (imp *moduleImporter) importCells(cells *jsonval.Value) error {
	mod := imp.mod
	if cells.Kind() != jsonval.KindObject {
		return errors.New(errors.ErrCodeSchema, "module %q: cells is not an object", mod.Name)
	}

	for _, cellName := range cells.Keys() {
		node, _ := cells.Get(cellName)
		if node.Kind() != jsonval.KindObject {
			return errors.New(errors.ErrCodeSchema, "cell %q is not an object", cellName)
		}

		typ, ok := node.Get("type")
		if !ok {
			return errors.New(errors.ErrCodeSchema, "cell %q has no type attribute", cellName)
		}
		if typ.Kind() != jsonval.KindString {
			return errors.New(errors.ErrCodeSchema, "cell %q has a non-string type", cellName)
		}

		conns, ok := node.Get("connections")
		if !ok {
			return errors.New(errors.ErrCodeSchema, "cell %q has no connections attribute", cellName)
		}
		if conns.Kind() != jsonval.KindObject {
			return errors.New(errors.ErrCodeSchema, "cell %q has a non-object connections attribute", cellName)
		}

		cell, err := mod.AddCell(netlist.EscapeID(cellName), netlist.EscapeID(typ.Str()))
		if err != nil {
			return errors.Wrap(errors.ErrCodeNameConflict, err, "cell %q", cellName)
		}

		for _, connName := range conns.Keys() {
			arr, _ := conns.Get(connName)
			if arr.Kind() != jsonval.KindArray {
				return errors.New(errors.ErrCodeSchema, "cell %q connection %q is not an array", cellName, connName)
			}

			sig := make(netlist.SigSpec, 0, arr.Len())
			for i := 0; i < arr.Len(); i++ {
				entry := arr.At(i)

				switch entry.Kind() {
				case jsonval.KindString:
					c, ok := constBit(entry.Str())
					if !ok {
						return errors.New(errors.ErrCodeSchema, "cell %q connection %q has invalid constant %q on bit %d", cellName, connName, entry.Str(), i)
					}
					sig = append(sig, c)

				case jsonval.KindInt:
					id := entry.Int()
					if _, seen := imp.bits[id]; !seen {
						// An id first seen here gets a fresh anonymous
						// 1-bit wire; re-occurrences reuse it.
						imp.bits[id] = netlist.Bit(mod.AddAnonWire(1), 0)
					}
					sig = append(sig, imp.bits[id])

				default:
					return errors.New(errors.ErrCodeSchema, "cell %q connection %q has invalid bit value on bit %d (got %s)", cellName, connName, i, entry.Kind())
				}
			}

			cell.SetPort(netlist.EscapeID(connName), sig)
		}

		// Cell attributes and parameters are intentionally not imported.
	}
	return nil
}
