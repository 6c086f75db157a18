package match

import (
	"encoding/binary"
	"math"
	"testing"

	errorsx "github.com/cquaid/scnm/errors"
)

func TestParseNeedle_Integer(t *testing.T) {
	tests := []struct {
		value string
		want  uint64
		flags Flags
	}{
		{"42", 42, Flags{I8: true, I16: true, I32: true, I64: true}},
		{"-1", math.MaxUint64, Flags{I8: true, I16: true, I32: true, I64: true}},
		{"256", 256, Flags{I16: true, I32: true, I64: true}},
		{"0", 0, Flags{I8: true, I16: true, I32: true, I64: true}},
		{"65536", 65536, Flags{I32: true, I64: true}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			n, err := ParseNeedle(tt.value)
			if err != nil {
				t.Fatalf("ParseNeedle(%q): %v", tt.value, err)
			}
			if got := binary.LittleEndian.Uint64(n.Bytes[:]); got != tt.want {
				t.Errorf("value = %#x, want %#x", got, tt.want)
			}
			if n.Flags != tt.flags {
				t.Errorf("flags = %+v, want %+v", n.Flags, tt.flags)
			}
		})
	}
}

func TestParseNeedle_Float(t *testing.T) {
	n, err := ParseNeedle("3.14")
	if err != nil {
		t.Fatalf("ParseNeedle: %v", err)
	}
	if !n.Flags.F32 || !n.Flags.F64 {
		t.Errorf("flags = %+v, want f32+f64", n.Flags)
	}
	got := math.Float64frombits(binary.LittleEndian.Uint64(n.Bytes[:]))
	if math.Abs(got-3.14) > 1e-6 {
		t.Errorf("value = %v, want ~3.14", got)
	}
}

func TestParseNeedle_FloatUnderflowOnlyF64(t *testing.T) {
	n, err := ParseNeedle("1e-400")
	if err != nil {
		t.Fatalf("ParseNeedle: %v", err)
	}
	if n.Flags.F32 {
		t.Errorf("flags = %+v, want f32 unset", n.Flags)
	}
	if !n.Flags.F64 {
		t.Errorf("flags = %+v, want f64 set", n.Flags)
	}
}

func TestParseNeedle_Invalid(t *testing.T) {
	_, err := ParseNeedle("not a number")
	if err == nil {
		t.Fatal("expected error for unparseable needle")
	}
	if !errorsx.IsKind(err, errorsx.InvalidNeedle) {
		kind, _ := errorsx.GetKind(err)
		t.Errorf("got kind %v, want InvalidNeedle", kind)
	}
}

func TestParseNeedle_ReservedStringAndByteArray(t *testing.T) {
	tests := []string{
		`"hello"`,
		`'hello'`,
		"de ad be ef",
		"de,ad,be,ef",
	}

	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			_, err := ParseNeedle(value)
			if err == nil {
				t.Fatal("expected error for a reserved string/byte-array needle")
			}
			if !errorsx.IsKind(err, errorsx.Unsupported) {
				kind, _ := errorsx.GetKind(err)
				t.Errorf("got kind %v, want Unsupported", kind)
			}
		})
	}
}

func TestNeedle_Largest(t *testing.T) {
	n, _ := ParseNeedle("42")
	if got := n.Largest(); got != Width64 {
		t.Errorf("Largest() = %v, want Width64", got)
	}
}
