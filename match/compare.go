package match

import "encoding/binary"

// eqAtWidth reports bit-pattern equality at width w. Per match_match.c's
// __match_eq / match_search.c's __search_eq, a float-flagged comparison
// at 32 or 64 bits still compares the raw unsigned bit pattern, not the
// decoded float value — equality is exact-bits, not epsilon-float.
func eqAtWidth(a, b [8]byte, w Width) bool {
	switch w {
	case Width8:
		return a[0] == b[0]
	case Width16:
		return binary.LittleEndian.Uint16(a[:2]) == binary.LittleEndian.Uint16(b[:2])
	case Width32, WidthF32:
		return binary.LittleEndian.Uint32(a[:4]) == binary.LittleEndian.Uint32(b[:4])
	case Width64, WidthF64:
		return binary.LittleEndian.Uint64(a[:]) == binary.LittleEndian.Uint64(b[:])
	default:
		return false
	}
}

// ltAtWidth reports whether a < b at width w. Integer widths OR the
// unsigned and signed interpretations (the needle's sign is unknown, so
// a match fires if either view satisfies the relation, per §4.7). Float
// widths compare the decoded value directly.
func ltAtWidth(a, b [8]byte, w Width) bool {
	switch w {
	case Width8:
		return a[0] < b[0] || int8(a[0]) < int8(b[0])
	case Width16:
		ua, ub := binary.LittleEndian.Uint16(a[:2]), binary.LittleEndian.Uint16(b[:2])
		return ua < ub || int16(ua) < int16(ub)
	case Width32:
		ua, ub := binary.LittleEndian.Uint32(a[:4]), binary.LittleEndian.Uint32(b[:4])
		return ua < ub || int32(ua) < int32(ub)
	case WidthF32:
		var oa, ob Object
		oa.Bytes, ob.Bytes = a, b
		return oa.f32() < ob.f32()
	case Width64:
		ua, ub := binary.LittleEndian.Uint64(a[:]), binary.LittleEndian.Uint64(b[:])
		return ua < ub || int64(ua) < int64(ub)
	case WidthF64:
		var oa, ob Object
		oa.Bytes, ob.Bytes = a, b
		return oa.f64() < ob.f64()
	default:
		return false
	}
}

func gtAtWidth(a, b [8]byte, w Width) bool { return ltAtWidth(b, a, w) }
func leAtWidth(a, b [8]byte, w Width) bool { return ltAtWidth(a, b, w) || eqAtWidth(a, b, w) }
func geAtWidth(a, b [8]byte, w Width) bool { return gtAtWidth(a, b, w) || eqAtWidth(a, b, w) }

// RangeBoundFlags selects which end of a range comparison is inclusive,
// mirroring match_range_bound_flags.
type RangeBoundFlags int

const (
	GTLT RangeBoundFlags = iota // > lower && < upper
	GELT                        // >= lower && < upper
	GTLE                        // >  lower && <= upper
	GELE                        // >= lower && <= upper
)

// Eq reports whether needle and value are equal at the needle's largest
// active width.
func Eq(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return eqAtWidth(needle.Bytes, value, w)
}

// Ne is the negation of Eq.
func Ne(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return !eqAtWidth(needle.Bytes, value, w)
}

// Lt reports whether value is less than needle at the needle's largest
// active width.
//
// The reference source's __match_lt/__match_gt compare needle op value
// (e.g. "needle < new") rather than value op needle — which inverts the
// two predicates relative to their names and makes match_range's
// GE_LE combinator unsatisfiable for any non-empty range (the §8
// scenario-3 round trip, "v=100 in [1,100] with GE_LE must retain it",
// fails under the literal source order). This implementation compares
// value against needle in the natural direction the function names
// describe.
func Lt(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return ltAtWidth(value, needle.Bytes, w)
}

func Le(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return leAtWidth(value, needle.Bytes, w)
}

func Gt(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return gtAtWidth(value, needle.Bytes, w)
}

func Ge(needle Needle, value [8]byte) bool {
	w := needle.Largest()
	if w == WidthNone {
		return false
	}
	return geAtWidth(value, needle.Bytes, w)
}

// Range conjoins a lower- and upper-bound predicate per bound.
func Range(lower, upper Needle, value [8]byte, bound RangeBoundFlags) bool {
	var lowerOK bool
	switch bound {
	case GTLT, GTLE:
		lowerOK = Gt(lower, value)
	default:
		lowerOK = Ge(lower, value)
	}
	if !lowerOK {
		return false
	}

	switch bound {
	case GTLT, GELT:
		return Lt(upper, value)
	default:
		return Le(upper, value)
	}
}

// Changed reports whether new differs from orig at orig's largest
// active width (orig's flags describe "all the ways this cell could be
// typed", so re-evaluating at its widest view is the most specific
// test available).
func Changed(orig Object) func(new [8]byte) bool {
	w := orig.Flags.Largest()
	return func(new [8]byte) bool {
		if w == WidthNone {
			return false
		}
		return !eqAtWidth(orig.Bytes, new, w)
	}
}

// Unchanged is the negation of Changed.
func Unchanged(orig Object) func(new [8]byte) bool {
	changed := Changed(orig)
	return func(new [8]byte) bool {
		return !changed(new)
	}
}

// widthsSmallToLarge enumerates every width a Flags set may carry, in
// the order match_match.c's __match_increased/__match_decreased probe
// them: i8, i16, i32, f32, i64, f64.
var widthsSmallToLarge = []struct {
	width Width
	has   func(Flags) bool
}{
	{Width8, func(f Flags) bool { return f.I8 }},
	{Width16, func(f Flags) bool { return f.I16 }},
	{Width32, func(f Flags) bool { return f.I32 }},
	{WidthF32, func(f Flags) bool { return f.F32 }},
	{Width64, func(f Flags) bool { return f.I64 }},
	{WidthF64, func(f Flags) bool { return f.F64 }},
}

// Increased reports whether any width orig.Flags sets shows new strictly
// greater than orig at that width. Per §4.9, orig's flags encode every
// plausible typing of the original byte pattern; if any one of those
// views increased, the candidate is considered "increased".
func Increased(orig Object) func(new [8]byte) bool {
	return func(new [8]byte) bool {
		for _, wf := range widthsSmallToLarge {
			if wf.has(orig.Flags) && gtAtWidth(new, orig.Bytes, wf.width) {
				return true
			}
		}
		return false
	}
}

// Decreased is Increased's mirror: any width view showing new strictly
// less than orig makes the candidate "decreased".
func Decreased(orig Object) func(new [8]byte) bool {
	return func(new [8]byte) bool {
		for _, wf := range widthsSmallToLarge {
			if wf.has(orig.Flags) && ltAtWidth(new, orig.Bytes, wf.width) {
				return true
			}
		}
		return false
	}
}
