package match

import (
	"os"
	"testing"
	"unsafe"

	"github.com/cquaid/scnm/region"
)

// pageAlign rounds addr down to the nearest 4096-byte boundary, giving a
// region wide enough to contain the target address with room either side.
func pageAlign(addr uintptr) uintptr {
	const pageSize = 4096
	return addr &^ (pageSize - 1)
}

func regionAround(addr uintptr) *region.Set {
	start := pageAlign(addr) - 4096
	end := pageAlign(addr) + 2*4096
	set := region.NewSet()
	set.Add(&region.Region{
		Start: start,
		End:   end,
		Perms: region.Perms{Read: true, Write: true},
	})
	return set
}

// TestSearchThenFilter_ProcMemSelfProcess exercises the end-to-end
// search-then-filter path of spec scenario 2 against real memory of the
// running test process, relying on ProcMem backend selection since
// /proc/self/mem is always readable and writable to self.
func TestSearchThenFilter_ProcMemSelfProcess(t *testing.T) {
	value := int32(1234)
	addr := uintptr(unsafe.Pointer(&value))
	pid := os.Getpid()
	regions := regionAround(addr)

	needle, err := ParseNeedle("1234")
	if err != nil {
		t.Fatalf("ParseNeedle: %v", err)
	}

	list := NewList()
	if err := SearchEq(nil, pid, list, needle, regions, SearchOptions{Aligned: false}); err != nil {
		t.Fatalf("SearchEq: %v", err)
	}

	found := false
	for _, o := range list.All() {
		if o.Addr == addr {
			found = true
		}
	}
	if !found {
		t.Fatalf("SearchEq did not find target address %#x among %d candidates", addr, list.Len())
	}

	// Keep only the candidate at the target address to make the filter
	// assertions unambiguous; a byte-stride unaligned scan over a live
	// stack/global can otherwise report overlapping false candidates.
	list.filterInPlace(func(o Object) bool { return o.Addr == addr })
	if list.Len() != 1 {
		t.Fatalf("expected exactly 1 candidate at target address, got %d", list.Len())
	}

	value = 5678

	if err := MatchEq(nil, pid, list, mustNeedle(t, "5678")); err != nil {
		t.Fatalf("MatchEq: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected candidate to survive MatchEq(5678), got %d remaining", list.Len())
	}

	// The tracked value rose from 1234 to 5678, so it must survive an
	// increased-filter pass and be dropped by an unchanged-filter pass.
	if err := MatchIncreased(nil, pid, list); err != nil {
		t.Fatalf("MatchIncreased: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected MatchIncreased to keep the risen candidate, got %d remaining", list.Len())
	}

	if err := MatchUnchanged(nil, pid, list); err != nil {
		t.Fatalf("MatchUnchanged: %v", err)
	}
	if list.Len() != 0 {
		t.Fatalf("expected MatchUnchanged to drop the risen candidate, got %d remaining", list.Len())
	}
}

func mustNeedle(t *testing.T, s string) Needle {
	t.Helper()
	n, err := ParseNeedle(s)
	if err != nil {
		t.Fatalf("ParseNeedle(%q): %v", s, err)
	}
	return n
}
