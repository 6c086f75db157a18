// Package match implements the typed value model, chunked match store,
// and search/filter engine that operate over a traced process's memory.
package match

import (
	"encoding/binary"
	"math"
)

// Flags records which interpretations of an 8-byte value are plausible.
// Integer and floating-point flags are mutually exclusive within a
// Needle; a read MatchObject may carry every plausible flag at once.
type Flags struct {
	I8  bool
	I16 bool
	I32 bool
	I64 bool
	F32 bool
	F64 bool
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.I8 || f.I16 || f.I32 || f.I64 || f.F32 || f.F64
}

// Width identifies one of the six comparable widths a Flags can select.
type Width int

const (
	WidthNone Width = iota
	Width8
	Width16
	Width32
	Width64
	WidthF32
	WidthF64
)

// Largest returns the widest active flag, per spec's predicate-evaluation
// rule: i64|f64 > i32|f32 > i16 > i8. Float and integer flags never
// coexist in a Needle, but a read MatchObject may carry both i64 and
// f64 simultaneously; integer takes priority in that tie since the
// byte pattern is reinterpreted, not rescaled, and callers comparing
// against an integer needle expect the integer view.
func (f Flags) Largest() Width {
	switch {
	case f.I64:
		return Width64
	case f.F64:
		return WidthF64
	case f.I32:
		return Width32
	case f.F32:
		return WidthF32
	case f.I16:
		return Width16
	case f.I8:
		return Width8
	default:
		return WidthNone
	}
}

// Object is a single candidate: an address, its raw bytes, and the set
// of widths those bytes could plausibly be interpreted as.
type Object struct {
	Bytes [8]byte
	Flags Flags
	Addr  uintptr
}

func (o *Object) i8() int8    { return int8(o.Bytes[0]) }
func (o *Object) u8() uint8   { return o.Bytes[0] }
func (o *Object) i16() int16  { return int16(binary.LittleEndian.Uint16(o.Bytes[:2])) }
func (o *Object) u16() uint16 { return binary.LittleEndian.Uint16(o.Bytes[:2]) }
func (o *Object) i32() int32  { return int32(binary.LittleEndian.Uint32(o.Bytes[:4])) }
func (o *Object) u32() uint32 { return binary.LittleEndian.Uint32(o.Bytes[:4]) }
func (o *Object) i64() int64  { return int64(binary.LittleEndian.Uint64(o.Bytes[:8])) }
func (o *Object) u64() uint64 { return binary.LittleEndian.Uint64(o.Bytes[:8]) }
func (o *Object) f32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(o.Bytes[:4]))
}
func (o *Object) f64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(o.Bytes[:8]))
}

// deriveFlags derives Flags from a candidate's raw bytes and the number
// of bytes actually available (size, 1..8; bytes beyond size must
// already be zeroed). Grounded on get_match_object: a flag is set only
// if both enough bytes were available to fill that width AND the
// zero-extended 64-bit value is no larger than that width's unsigned
// maximum (for i8, a negative 64-bit value is never in that bound).
// Short tails (size < 8) clear every flag wide enough to need the
// missing bytes, per §4.6.
func deriveFlags(bytes [8]byte, size int) Flags {
	u64 := binary.LittleEndian.Uint64(bytes[:])
	s64 := int64(u64)
	neg := s64 < 0

	var f Flags

	if u64 <= math.MaxUint8 {
		if neg {
			f.I8 = !(s64 < math.MinInt8)
		} else {
			f.I8 = true
		}
	}
	if size < 2 {
		return f
	}

	if u64 <= math.MaxUint16 {
		if neg {
			f.I16 = !(s64 < math.MinInt16)
		} else {
			f.I16 = true
		}
	}
	if size < 4 {
		return f
	}

	if u64 <= math.MaxUint32 {
		if neg {
			f.I32 = !(s64 < math.MinInt32)
		} else {
			f.I32 = true
		}
	}
	f.F32 = true
	if size < 8 {
		return f
	}

	f.I64 = true
	f.F64 = true
	return f
}
