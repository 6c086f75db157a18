package match

import "testing"

func bytesOf(v uint64) [8]byte {
	var b [8]byte
	hostEndianPutUint64(b[:], v)
	return b
}

func TestEqNe(t *testing.T) {
	n, _ := ParseNeedle("1234")
	if !Eq(n, bytesOf(1234)) {
		t.Error("Eq(1234, 1234) = false, want true")
	}
	if Eq(n, bytesOf(1235)) {
		t.Error("Eq(1234, 1235) = true, want false")
	}
	if !Ne(n, bytesOf(1235)) {
		t.Error("Ne(1234, 1235) = false, want true")
	}
}

func TestLtGtNaturalOrder(t *testing.T) {
	n, _ := ParseNeedle("100")
	if !Lt(n, bytesOf(50)) {
		t.Error("Lt(needle=100, value=50) = false, want true (50 < 100)")
	}
	if Lt(n, bytesOf(150)) {
		t.Error("Lt(needle=100, value=150) = true, want false")
	}
	if !Gt(n, bytesOf(150)) {
		t.Error("Gt(needle=100, value=150) = false, want true (150 > 100)")
	}
	if Gt(n, bytesOf(50)) {
		t.Error("Gt(needle=100, value=50) = true, want false")
	}
}

func TestRange(t *testing.T) {
	lower, _ := ParseNeedle("1")
	upper, _ := ParseNeedle("100")

	// Scenario 3 from the spec's end-to-end scenarios.
	if Range(lower, upper, bytesOf(100), GTLT) {
		t.Error("Range(1,100,GT_LT) on value=100 = true, want false (100 is not < 100)")
	}
	if !Range(lower, upper, bytesOf(100), GELE) {
		t.Error("Range(1,100,GE_LE) on value=100 = false, want true")
	}
	if !Range(lower, upper, bytesOf(50), GELE) {
		t.Error("Range(1,100,GE_LE) on value=50 = false, want true")
	}
}

func TestChangedUnchanged(t *testing.T) {
	orig := Object{Bytes: bytesOf(1234), Flags: integerFlagsFor(1234)}

	changed := Changed(orig)
	if changed(bytesOf(1234)) {
		t.Error("Changed(1234->1234) = true, want false")
	}
	if !changed(bytesOf(1235)) {
		t.Error("Changed(1234->1235) = false, want true")
	}

	unchanged := Unchanged(orig)
	if !unchanged(bytesOf(1234)) {
		t.Error("Unchanged(1234->1234) = false, want true")
	}
}

func TestIncreasedDecreased(t *testing.T) {
	orig := Object{Bytes: bytesOf(50), Flags: integerFlagsFor(50)}

	increased := Increased(orig)
	if !increased(bytesOf(100)) {
		t.Error("Increased(50->100) = false, want true")
	}
	if increased(bytesOf(10)) {
		t.Error("Increased(50->10) = true, want false")
	}

	decreased := Decreased(orig)
	if !decreased(bytesOf(10)) {
		t.Error("Decreased(50->10) = false, want true")
	}
	if decreased(bytesOf(100)) {
		t.Error("Decreased(50->100) = true, want false")
	}
}
