package netlist

import (
	"errors"
	"testing"
)

func TestAddModule(t *testing.T) {
	d := NewDesign()

	m, err := d.AddModule("\\top")
	if err != nil {
		t.Fatalf("AddModule error: %v", err)
	}
	if m.Name != "\\top" {
		t.Errorf("Name = %q, want \\top", m.Name)
	}
	if d.Module("\\top") != m {
		t.Error("Module lookup did not return the created module")
	}

	if _, err := d.AddModule("\\top"); !errors.Is(err, ErrDuplicateModule) {
		t.Errorf("duplicate AddModule error = %v, want ErrDuplicateModule", err)
	}
	if _, err := d.AddModule(""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("empty AddModule error = %v, want ErrInvalidName", err)
	}
	if d.ModuleCount() != 1 {
		t.Errorf("ModuleCount = %d, want 1", d.ModuleCount())
	}
}

func TestModulesOrder(t *testing.T) {
	d := NewDesign()
	for _, name := range []string{"\\c", "\\a", "\\b"} {
		if _, err := d.AddModule(name); err != nil {
			t.Fatalf("AddModule(%s): %v", name, err)
		}
	}

	mods := d.Modules()
	want := []string{"\\c", "\\a", "\\b"}
	for i, m := range mods {
		if m.Name != want[i] {
			t.Errorf("Modules()[%d] = %q, want %q (creation order)", i, m.Name, want[i])
		}
	}
}

func TestAddWire(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")

	w, err := m.AddWire("\\data", 8)
	if err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	if w.Width != 8 {
		t.Errorf("Width = %d, want 8", w.Width)
	}
	if m.Wire("\\data") != w {
		t.Error("Wire lookup did not return the created wire")
	}
	if m.Wire("\\missing") != nil {
		t.Error("Wire lookup for missing name should return nil")
	}

	if _, err := m.AddWire("\\data", 4); !errors.Is(err, ErrDuplicateWire) {
		t.Errorf("duplicate AddWire error = %v, want ErrDuplicateWire", err)
	}
	if _, err := m.AddWire("\\neg", -1); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("negative width error = %v, want ErrInvalidWidth", err)
	}
}

func TestAddAnonWire(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")

	w1 := m.AddAnonWire(1)
	w2 := m.AddAnonWire(1)
	if w1.Name == w2.Name {
		t.Errorf("anonymous wires share name %q", w1.Name)
	}
	if w1.Name[0] != '$' || w2.Name[0] != '$' {
		t.Errorf("anonymous names %q, %q should use the $ namespace", w1.Name, w2.Name)
	}
	if w1.Width != 1 {
		t.Errorf("Width = %d, want 1", w1.Width)
	}
}

func TestAddCell(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")

	c, err := m.AddCell("\\u1", "\\BUF")
	if err != nil {
		t.Fatalf("AddCell error: %v", err)
	}
	if c.Type != "\\BUF" {
		t.Errorf("Type = %q, want \\BUF", c.Type)
	}

	if _, err := m.AddCell("\\u1", "\\AND"); !errors.Is(err, ErrDuplicateCell) {
		t.Errorf("duplicate AddCell error = %v, want ErrDuplicateCell", err)
	}
}

func TestCellSetPort(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")
	w, _ := m.AddWire("\\a", 2)
	c, _ := m.AddCell("\\u1", "\\AND")

	c.SetPort("A", SigSpec{Bit(w, 0), Bit(w, 1)})
	c.SetPort("B", SigSpec{ConstBit(S1)})

	sig, ok := c.Port("A")
	if !ok || len(sig) != 2 {
		t.Fatalf("Port A = %v, ok=%v", sig, ok)
	}
	if got := c.PortNames(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("PortNames = %v, want [A B]", got)
	}

	// Rebinding replaces the signal but keeps the original order.
	c.SetPort("A", SigSpec{ConstBit(S0)})
	sig, _ = c.Port("A")
	if len(sig) != 1 || !sig[0].IsConst() {
		t.Errorf("rebound port A = %v, want single constant", sig)
	}
	if got := c.PortNames(); len(got) != 2 {
		t.Errorf("PortNames after rebind = %v, want 2 entries", got)
	}
}

func TestConnect(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")
	w, _ := m.AddWire("\\a", 2)

	if err := m.Connect(Bit(w, 0), ConstBit(S1)); err != nil {
		t.Fatalf("Connect const: %v", err)
	}
	if err := m.Connect(Bit(w, 1), Bit(w, 0)); err != nil {
		t.Fatalf("Connect wire: %v", err)
	}
	if err := m.Connect(ConstBit(S0), Bit(w, 0)); !errors.Is(err, ErrNotWireBit) {
		t.Errorf("const dst error = %v, want ErrNotWireBit", err)
	}
	if err := m.Connect(Bit(w, 2), ConstBit(S0)); !errors.Is(err, ErrBitOutOfRange) {
		t.Errorf("out of range dst error = %v, want ErrBitOutOfRange", err)
	}
	if err := m.Connect(Bit(w, 0), Bit(w, 5)); !errors.Is(err, ErrBitOutOfRange) {
		t.Errorf("out of range src error = %v, want ErrBitOutOfRange", err)
	}

	conns := m.Connections()
	if len(conns) != 2 {
		t.Fatalf("ConnectionCount = %d, want 2", len(conns))
	}
	if conns[0].Src.State != S1 || !conns[0].Src.IsConst() {
		t.Errorf("first connection src = %v, want constant 1", conns[0].Src)
	}
}

func TestFixupPorts(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")

	b, _ := m.AddWire("\\b", 1)
	a, _ := m.AddWire("\\a", 1)
	inner, _ := m.AddWire("\\inner", 1)
	b.PortOutput = true
	a.PortInput = true

	m.FixupPorts()

	if a.PortID != 1 || b.PortID != 2 {
		t.Errorf("PortIDs a=%d b=%d, want 1 and 2 (name order)", a.PortID, b.PortID)
	}
	if inner.PortID != 0 {
		t.Errorf("non-port wire PortID = %d, want 0", inner.PortID)
	}

	ports := m.Ports()
	if len(ports) != 2 || ports[0] != a || ports[1] != b {
		t.Errorf("Ports() = %v, want [a b]", ports)
	}
}

func TestSigBitString(t *testing.T) {
	d := NewDesign()
	m, _ := d.AddModule("\\m")
	w, _ := m.AddWire("\\a", 2)

	if got := Bit(w, 1).String(); got != "\\a[1]" {
		t.Errorf("String() = %q, want \\a[1]", got)
	}
	if got := ConstBit(Sx).String(); got != "x" {
		t.Errorf("String() = %q, want x", got)
	}
}

func TestStateFromString(t *testing.T) {
	for s, want := range map[string]State{"0": S0, "1": S1, "x": Sx, "z": Sz} {
		got, ok := StateFromString(s)
		if !ok || got != want {
			t.Errorf("StateFromString(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := StateFromString("q"); ok {
		t.Error("StateFromString(q) should fail")
	}
}

func TestEscapeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"top", "\\top"},
		{"\\top", "\\top"},
		{"$auto$1", "$auto$1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EscapeID(tt.in); got != tt.want {
			t.Errorf("EscapeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := UnescapeID("\\top"); got != "top" {
		t.Errorf("UnescapeID = %q, want top", got)
	}
	if got := UnescapeID("$auto$1"); got != "$auto$1" {
		t.Errorf("UnescapeID = %q, want $auto$1", got)
	}
	if !IsPublicID("\\top") || IsPublicID("$auto$1") || IsPublicID("") {
		t.Error("IsPublicID misclassified a name")
	}
}
