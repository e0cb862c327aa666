package jsonval

import (
	"strings"
	"testing"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
)

func mustParse(t *testing.T, input string) *Value {
	t.Helper()
	v, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return v
}

func TestParseRoundTripShape(t *testing.T) {
	v := mustParse(t, `{"a":[1,2,"x"]}`)

	if v.Kind() != KindObject {
		t.Fatalf("root kind = %v, want object", v.Kind())
	}
	if len(v.Keys()) != 1 || v.Keys()[0] != "a" {
		t.Fatalf("keys = %v, want [a]", v.Keys())
	}

	arr, ok := v.Get("a")
	if !ok || arr.Kind() != KindArray {
		t.Fatalf("a = %v, ok=%v, want array", arr, ok)
	}
	if arr.Len() != 3 {
		t.Fatalf("len = %d, want 3", arr.Len())
	}
	if arr.At(0).Kind() != KindInt || arr.At(0).Int() != 1 {
		t.Errorf("elem 0 = %v %d, want integer 1", arr.At(0).Kind(), arr.At(0).Int())
	}
	if arr.At(1).Kind() != KindInt || arr.At(1).Int() != 2 {
		t.Errorf("elem 1 = %v %d, want integer 2", arr.At(1).Kind(), arr.At(1).Int())
	}
	if arr.At(2).Kind() != KindString || arr.At(2).Str() != "x" {
		t.Errorf("elem 2 = %v %q, want string x", arr.At(2).Kind(), arr.At(2).Str())
	}
}

func TestParseSeparatorTolerance(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"ExtraSpaces", `[ 1 , 2 , 3 ]`, []int{1, 2, 3}},
		{"DoubleComma", `[ 1 , 2 ,, 3 ]`, []int{1, 2, 3}},
		{"LeadingComma", `[,1,2]`, []int{1, 2}},
		{"TrailingComma", `[1,2,]`, []int{1, 2}},
		{"NoCommas", `[1 2 3]`, []int{1, 2, 3}},
		{"Empty", `[]`, nil},
		{"OnlyCommas", `[,,,]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.input)
			if v.Kind() != KindArray {
				t.Fatalf("kind = %v, want array", v.Kind())
			}
			if v.Len() != len(tt.want) {
				t.Fatalf("len = %d, want %d", v.Len(), len(tt.want))
			}
			for i, want := range tt.want {
				if got := v.At(i).Int(); got != want {
					t.Errorf("elem %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestParseStrictSeparators(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", `[1, 2, 3]`, false},
		{"ValidObject", `{"a": 1, "b": 2}`, false},
		{"DoubleComma", `[1,,2]`, true},
		{"LeadingComma", `[,1]`, true},
		{"TrailingComma", `[1,2,]`, true},
		{"MissingComma", `[1 2]`, true},
		{"ObjectTrailingComma", `{"a":1,}`, true},
		{"ObjectMissingColon", `{"a" 1}`, true},
		{"EmptyArray", `[]`, false},
		{"EmptyObject", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWith(strings.NewReader(tt.input), Options{StrictSeparators: true})
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseWith(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeSyntax) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeSyntax)
			}
		})
	}
}

func TestParseUnterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Array", `[1,2`},
		{"Object", `{"a":1`},
		{"String", `"abc`},
		{"StringEscape", `"abc\`},
		{"Empty", ``},
		{"OnlyWhitespace", " \t\r\n"},
		{"ObjectAfterKey", `{"a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want stream error", tt.input)
			}
			if !errors.Is(err, errors.ErrCodeStream) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeStream)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"BadLeadingChar", `true`},
		{"NegativeNumber", `-5`},
		{"NonStringKey", `{1: 2}`},
		{"IntOverflow", `2147483648`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want syntax error", tt.input)
			}
			if !errors.Is(err, errors.ErrCodeSyntax) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeSyntax)
			}
		})
	}
}

func TestParseIntBoundary(t *testing.T) {
	v := mustParse(t, `2147483647`)
	if v.Int() != 2147483647 {
		t.Errorf("Int() = %d, want 2147483647", v.Int())
	}
}

func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Quote", `"a\"b"`, `a"b`},
		{"Backslash", `"a\\b"`, `a\b`},
		{"NoDecoding", `"a\nb"`, "anb"},
		{"UnicodeNotDecoded", "\"\\u0041\"", "u0041"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.input)
			if v.Str() != tt.want {
				t.Errorf("Str() = %q, want %q", v.Str(), tt.want)
			}
		})
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	// Default: last wins, key order preserved from first occurrence.
	v := mustParse(t, `{"a":1,"b":2,"a":3}`)
	if len(v.Keys()) != 2 {
		t.Fatalf("keys = %v, want 2 entries", v.Keys())
	}
	if v.Keys()[0] != "a" || v.Keys()[1] != "b" {
		t.Errorf("key order = %v, want [a b]", v.Keys())
	}
	a, _ := v.Get("a")
	if a.Int() != 3 {
		t.Errorf("a = %d, want 3 (last wins)", a.Int())
	}

	// Strict: rejected.
	_, err := ParseWith(strings.NewReader(`{"a":1,"a":2}`), Options{RejectDuplicateKeys: true})
	if !errors.Is(err, errors.ErrCodeSyntax) {
		t.Errorf("duplicate key error = %v, want %v", err, errors.ErrCodeSyntax)
	}
}

func TestParseLeavesTrailingContent(t *testing.T) {
	// Two concatenated values read back to back from one stream.
	p := NewParser(strings.NewReader(`{"a":1} [2,3]`), Options{})

	first, err := p.Parse()
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	if first.Kind() != KindObject {
		t.Errorf("first kind = %v, want object", first.Kind())
	}

	second, err := p.Parse()
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	if second.Kind() != KindArray || second.Len() != 2 {
		t.Errorf("second = %v len %d, want array of 2", second.Kind(), second.Len())
	}
}

func TestParseNestedDocument(t *testing.T) {
	v := mustParse(t, `
		{
			"modules": {
				"top": {
					"ports": { "o": { "direction": "output", "bits": [ 2 ] } }
				}
			}
		}`)

	mods, ok := v.Get("modules")
	if !ok {
		t.Fatal("missing modules key")
	}
	top, ok := mods.Get("top")
	if !ok {
		t.Fatal("missing top module")
	}
	ports, ok := top.Get("ports")
	if !ok || ports.Kind() != KindObject {
		t.Fatal("missing ports object")
	}
	port, _ := ports.Get("o")
	dir, _ := port.Get("direction")
	if dir.Str() != "output" {
		t.Errorf("direction = %q, want output", dir.Str())
	}
	bits, _ := port.Get("bits")
	if bits.Len() != 1 || bits.At(0).Int() != 2 {
		t.Errorf("bits = %d elems, want [2]", bits.Len())
	}
}
