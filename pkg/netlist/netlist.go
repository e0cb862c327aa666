// Package netlist provides the in-memory netlist graph: designs made of
// modules, modules made of named fixed-width wires, cell instances, and
// point-to-point bit connections.
//
// The container is purely structural. It records what the frontends emit
// and imposes only local invariants (unique names, fixed wire widths, bit
// indices in range). Semantic rules such as signal aliasing live in the
// importers that drive it.
//
// The container is not safe for concurrent use without external
// synchronization; an import call assumes it is the single writer.
package netlist

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidName is returned when a module, wire, or cell name is empty.
	ErrInvalidName = errors.New("name must not be empty")

	// ErrDuplicateModule is returned by [Design.AddModule] when a module
	// with the same name already exists in the design.
	ErrDuplicateModule = errors.New("duplicate module name")

	// ErrDuplicateWire is returned by [Module.AddWire] when a wire with
	// the same name already exists in the module.
	ErrDuplicateWire = errors.New("duplicate wire name")

	// ErrDuplicateCell is returned by [Module.AddCell] when a cell with
	// the same name already exists in the module.
	ErrDuplicateCell = errors.New("duplicate cell name")

	// ErrInvalidWidth is returned by [Module.AddWire] for negative widths.
	// Wire widths are fixed at creation and never resized.
	ErrInvalidWidth = errors.New("wire width must not be negative")

	// ErrNotWireBit is returned by [Module.Connect] when the destination
	// of a connection is a constant. Only wire bits can be driven.
	ErrNotWireBit = errors.New("connection destination is not a wire bit")

	// ErrBitOutOfRange is returned by [Module.Connect] when a bit offset
	// lies outside its wire's width.
	ErrBitOutOfRange = errors.New("bit offset out of range")
)

// State is one of the four constant logic values.
type State byte

const (
	// S0 is logic zero.
	S0 State = iota
	// S1 is logic one.
	S1
	// Sx is the undefined value.
	Sx
	// Sz is the high-impedance value.
	Sz
)

// String returns the single-character document spelling of the state.
func (s State) String() string {
	switch s {
	case S0:
		return "0"
	case S1:
		return "1"
	case Sx:
		return "x"
	case Sz:
		return "z"
	default:
		return "?"
	}
}

// StateFromString maps the document spelling of a constant to its State.
func StateFromString(s string) (State, bool) {
	switch s {
	case "0":
		return S0, true
	case "1":
		return S1, true
	case "x":
		return Sx, true
	case "z":
		return Sz, true
	default:
		return 0, false
	}
}

// Wire is a named, fixed-width ordered sequence of signal bit positions
// within a module. Width is set at creation and never changes.
type Wire struct {
	Name       string
	Width      int
	PortInput  bool // externally driven
	PortOutput bool // externally drivable (also set for inout)
	PortID     int  // 1-based port position after FixupPorts, 0 if not a port
}

// IsPort reports whether the wire is exposed as a module port.
func (w *Wire) IsPort() bool { return w.PortInput || w.PortOutput }

// SigBit addresses one single-bit position of a wire, or holds a constant.
// A nil Wire means the bit is the constant State.
type SigBit struct {
	Wire   *Wire
	Offset int
	State  State
}

// Bit returns a SigBit addressing bit off of w.
func Bit(w *Wire, off int) SigBit { return SigBit{Wire: w, Offset: off} }

// ConstBit returns a SigBit holding the constant s.
func ConstBit(s State) SigBit { return SigBit{State: s} }

// IsConst reports whether the bit is a constant rather than a wire bit.
func (b SigBit) IsConst() bool { return b.Wire == nil }

// String formats the bit as "name[offset]" or the constant spelling.
func (b SigBit) String() string {
	if b.IsConst() {
		return b.State.String()
	}
	return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Offset)
}

// SigSpec is an ordered sequence of bits, least significant first.
type SigSpec []SigBit

// Connection is a directed statement that Dst's value is determined by Src.
type Connection struct {
	Dst SigBit
	Src SigBit
}

// Cell is an instance of a primitive or black-box operation with named
// ports bound to signals.
type Cell struct {
	Name string
	Type string

	connections map[string]SigSpec
	portOrder   []string
}

// SetPort binds the named cell port to sig, replacing any previous binding.
func (c *Cell) SetPort(name string, sig SigSpec) {
	if _, ok := c.connections[name]; !ok {
		c.portOrder = append(c.portOrder, name)
	}
	c.connections[name] = sig
}

// Port returns the signal bound to the named port and whether it is bound.
func (c *Cell) Port(name string) (SigSpec, bool) {
	sig, ok := c.connections[name]
	return sig, ok
}

// PortNames returns the bound port names in binding order.
func (c *Cell) PortNames() []string { return c.portOrder }

// Module is a collection of wires, cells, and connections.
type Module struct {
	Name string

	wires     map[string]*Wire
	wireOrder []string
	cells     map[string]*Cell
	cellOrder []string
	conns     []Connection
	autoIdx   int
}

func newModule(name string) *Module {
	return &Module{
		Name:  name,
		wires: make(map[string]*Wire),
		cells: make(map[string]*Cell),
	}
}

// Wire returns the wire with the given name, or nil if it does not exist.
func (m *Module) Wire(name string) *Wire { return m.wires[name] }

// AddWire creates a wire with the given name and width.
// Returns ErrInvalidName, ErrInvalidWidth, or ErrDuplicateWire on misuse.
func (m *Module) AddWire(name string, width int) (*Wire, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if width < 0 {
		return nil, ErrInvalidWidth
	}
	if _, exists := m.wires[name]; exists {
		return nil, fmt.Errorf("wire %s: %w", name, ErrDuplicateWire)
	}
	w := &Wire{Name: name, Width: width}
	m.wires[name] = w
	m.wireOrder = append(m.wireOrder, name)
	return w, nil
}

// AddAnonWire creates a fresh internal wire with an auto-generated name.
// Generated names use the reserved "$auto$" prefix and never collide with
// escaped public names.
func (m *Module) AddAnonWire(width int) *Wire {
	for {
		m.autoIdx++
		name := fmt.Sprintf("$auto$%d", m.autoIdx)
		if _, exists := m.wires[name]; exists {
			continue
		}
		w, _ := m.AddWire(name, width)
		return w
	}
}

// Wires returns all wires in creation order.
func (m *Module) Wires() []*Wire {
	out := make([]*Wire, len(m.wireOrder))
	for i, name := range m.wireOrder {
		out[i] = m.wires[name]
	}
	return out
}

// Cell returns the cell with the given name, or nil if it does not exist.
func (m *Module) Cell(name string) *Cell { return m.cells[name] }

// AddCell creates a cell instance with the given name and type.
// Returns ErrInvalidName or ErrDuplicateCell on misuse.
func (m *Module) AddCell(name, cellType string) (*Cell, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, exists := m.cells[name]; exists {
		return nil, fmt.Errorf("cell %s: %w", name, ErrDuplicateCell)
	}
	c := &Cell{Name: name, Type: cellType, connections: make(map[string]SigSpec)}
	m.cells[name] = c
	m.cellOrder = append(m.cellOrder, name)
	return c, nil
}

// Cells returns all cells in creation order.
func (m *Module) Cells() []*Cell {
	out := make([]*Cell, len(m.cellOrder))
	for i, name := range m.cellOrder {
		out[i] = m.cells[name]
	}
	return out
}

// Connect records that dst is driven by src. The destination must be a
// wire bit; the source may be a wire bit or a constant. Offsets are
// validated against the owning wire's width.
func (m *Module) Connect(dst, src SigBit) error {
	if dst.IsConst() {
		return ErrNotWireBit
	}
	if dst.Offset < 0 || dst.Offset >= dst.Wire.Width {
		return fmt.Errorf("%s[%d]: %w", dst.Wire.Name, dst.Offset, ErrBitOutOfRange)
	}
	if !src.IsConst() && (src.Offset < 0 || src.Offset >= src.Wire.Width) {
		return fmt.Errorf("%s[%d]: %w", src.Wire.Name, src.Offset, ErrBitOutOfRange)
	}
	m.conns = append(m.conns, Connection{Dst: dst, Src: src})
	return nil
}

// Connections returns a copy of all recorded connections in emission order.
func (m *Module) Connections() []Connection { return slices.Clone(m.conns) }

// FixupPorts assigns stable 1-based port positions to all wires flagged as
// input or output, ordered by wire name. Non-port wires get PortID 0.
// Call it once after the last port flag change; later calls recompute the
// assignment from scratch.
func (m *Module) FixupPorts() {
	var ports []*Wire
	for _, name := range m.wireOrder {
		w := m.wires[name]
		w.PortID = 0
		if w.IsPort() {
			ports = append(ports, w)
		}
	}
	slices.SortFunc(ports, func(a, b *Wire) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	for i, w := range ports {
		w.PortID = i + 1
	}
}

// Ports returns the module's port wires ordered by PortID.
// It returns nil before FixupPorts has been called.
func (m *Module) Ports() []*Wire {
	var ports []*Wire
	for _, name := range m.wireOrder {
		if w := m.wires[name]; w.PortID > 0 {
			ports = append(ports, w)
		}
	}
	slices.SortFunc(ports, func(a, b *Wire) int { return a.PortID - b.PortID })
	return ports
}

// WireCount returns the number of wires in the module.
func (m *Module) WireCount() int { return len(m.wires) }

// CellCount returns the number of cells in the module.
func (m *Module) CellCount() int { return len(m.cells) }

// ConnectionCount returns the number of recorded connections.
func (m *Module) ConnectionCount() int { return len(m.conns) }

// Design is an ordered collection of modules. Module names are unique.
type Design struct {
	modules map[string]*Module
	order   []string
}

// NewDesign creates an empty design.
func NewDesign() *Design {
	return &Design{modules: make(map[string]*Module)}
}

// Module returns the module with the given name, or nil if it does not exist.
func (d *Design) Module(name string) *Module { return d.modules[name] }

// AddModule creates a module with the given name.
// Returns ErrInvalidName or ErrDuplicateModule on misuse.
func (d *Design) AddModule(name string) (*Module, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, exists := d.modules[name]; exists {
		return nil, fmt.Errorf("module %s: %w", name, ErrDuplicateModule)
	}
	m := newModule(name)
	d.modules[name] = m
	d.order = append(d.order, name)
	return m, nil
}

// Modules returns all modules in creation order.
func (d *Design) Modules() []*Module {
	out := make([]*Module, len(d.order))
	for i, name := range d.order {
		out[i] = d.modules[name]
	}
	return out
}

// ModuleCount returns the number of modules in the design.
func (d *Design) ModuleCount() int { return len(d.modules) }
