package match

import (
	"encoding/binary"
	"math"
	"math/big"
	"strconv"
	"strings"

	errorsx "github.com/cquaid/scnm/errors"
)

// Needle is a user-supplied value parsed into a comparable typed
// quantity, carrying the raw little-endian bytes it was derived from
// plus the set of widths it could plausibly be compared at.
type Needle struct {
	Bytes [8]byte
	Flags Flags
}

// ParseNeedle implements the two-phase parse of spec §4.7, grounded on
// match_init.c's match_needle_init/match_flags_set_integer/
// match_flags_set_floating but with the source's endptr-vs-*endptr typo
// corrected (the original compares the pointer itself to the rune '\0',
// which is never true for a non-NULL pointer and silently accepts
// trailing garbage; this parse requires the entire string consumed).
//
// 1. Try an integer parse (auto base, matching strtoull). On success set
//    i64 always, and i8/i16/i32 iff the value fits each signed range
//    once reconstructed from its low byte with sign.
// 2. Otherwise try float32, then float64. A float32-representable value
//    sets both f32 and f64; a value only representable as float64 sets
//    f64 alone.
// 3. Otherwise InvalidNeedle.
func ParseNeedle(value string) (Needle, error) {
	var n Needle

	if v, ok := parseUint64Auto(value); ok {
		binary.LittleEndian.PutUint64(n.Bytes[:], v)
		n.Flags = integerFlagsFor(v)
		return n, nil
	}

	if looksLikeReservedNeedle(value) {
		return Needle{}, errorsx.WrapWithDetail(errorsx.ErrNeedleUnsupported, errorsx.Unsupported, "needle_parse", value)
	}

	// strtof-equivalent: the value must parse as a float32 with no range
	// error (overflow/underflow) to set both f32 and f64. strconv rounds
	// an underflowing literal to zero without error, so a nonzero literal
	// that came back as zero is treated as a range error here.
	f32, err := strconv.ParseFloat(value, 32)
	if err == nil && f32 == 0 {
		if bf, _, perr := big.ParseFloat(value, 0, 64, big.ToNearestEven); perr == nil && bf.Sign() != 0 {
			err = &strconv.NumError{Func: "ParseFloat", Num: value, Err: strconv.ErrRange}
		}
	}
	if err == nil {
		binary.LittleEndian.PutUint64(n.Bytes[:], math.Float64bits(float64(float32(f32))))
		n.Flags = Flags{F32: true, F64: true}
		return n, nil
	} else if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
		return Needle{}, errorsx.WrapWithDetail(errorsx.ErrInvalidNeedle, errorsx.InvalidNeedle, "needle_parse", value)
	}

	// strtof range-failed (e.g. "1e-400" underflows float32); fall back
	// to strtod-equivalent. A syntactically valid number that merely
	// over/underflows double range is still accepted, matching the
	// source's intent once its endptr-comparison typo is fixed: it only
	// rejects a value whose digits were not fully consumed.
	f64, err := strconv.ParseFloat(value, 64)
	if numErr, ok := err.(*strconv.NumError); err != nil && (!ok || numErr.Err != strconv.ErrRange) {
		return Needle{}, errorsx.WrapWithDetail(errorsx.ErrInvalidNeedle, errorsx.InvalidNeedle, "needle_parse", value)
	}
	binary.LittleEndian.PutUint64(n.Bytes[:], math.Float64bits(f64))
	n.Flags = Flags{F64: true}
	return n, nil
}

// parseUint64Auto parses value the way strtoull(value, &endptr, 0) does:
// base auto-detected from a 0x/0 prefix, optional leading '-' accepted
// (reinterpreted as two's-complement, matching the original casting a
// signed result into an unsigned accumulator), entire string required to
// be consumed.
func parseUint64Auto(value string) (uint64, bool) {
	if value == "" {
		return 0, false
	}

	s := value
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
		if s == "" {
			return 0, false
		}
	}

	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}

	if neg {
		u = -u
	}
	return u, true
}

// looksLikeReservedNeedle reports whether value has the shape of a
// string or byte-array needle rather than a malformed number. Byte-array
// and string needles are reserved for future work per spec §3/§7: a
// quoted value ("foo", 'foo') or a space/comma-separated run of hex byte
// pairs (de ad be ef) is rejected with the dedicated Unsupported kind
// instead of the generic InvalidNeedle given to a number that merely
// failed to parse.
func looksLikeReservedNeedle(value string) bool {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return true
		}
	}
	return looksLikeHexBlob(value)
}

func looksLikeHexBlob(value string) bool {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) < 2 {
		return false
	}
	for _, f := range fields {
		if len(f) != 2 || !isHexPair(f) {
			return false
		}
	}
	return true
}

func isHexPair(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// integerFlagsFor derives i8/i16/i32/i64 from the raw 64-bit pattern.
// i64 is always set: any 64-bit pattern is a valid i64. For a negative
// value, width fit is a lower-bound check against sval (its magnitude
// can only shrink toward zero as width grows, so the upper bound is
// never the binding constraint). For a non-negative value, width fit is
// an upper-bound check against that width's signed maximum.
//
// The original (match_flags_set_integer) gates the negative branch on
// `val <= UINT8_MAX`, where val is the full 64-bit two's-complement
// pattern — a condition no realistic negative number satisfies, so the
// source never sets i8/i16/i32 for any negative needle. That is not
// reproduced here; it would fail the "-1" round-trip law.
func integerFlagsFor(v uint64) Flags {
	sval := int64(v)
	neg := sval < 0

	var f Flags
	f.I64 = true

	if neg {
		f.I8 = sval >= math.MinInt8
		f.I16 = sval >= math.MinInt16
		f.I32 = sval >= math.MinInt32
	} else {
		f.I8 = v <= math.MaxInt8
		f.I16 = v <= math.MaxInt16
		f.I32 = v <= math.MaxInt32
	}
	return f
}

// Largest returns the widest active flag in the needle, per the same
// priority order as Flags.Largest.
func (n Needle) Largest() Width {
	return n.Flags.Largest()
}
