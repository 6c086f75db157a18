package match

import "testing"

func objAt(addr uintptr) Object {
	return Object{Addr: addr}
}

func TestList_InsertAllocatesNewChunkWhenFull(t *testing.T) {
	l := NewList()
	for i := 0; i < ChunkSizeHuge+1; i++ {
		l.insert(objAt(uintptr(i)))
	}
	if got := l.Len(); got != ChunkSizeHuge+1 {
		t.Fatalf("Len() = %d, want %d", got, ChunkSizeHuge+1)
	}
	if got := len(l.chunks); got != 2 {
		t.Fatalf("chunk count = %d, want 2", got)
	}
}

func TestList_ClearIsNoop(t *testing.T) {
	l := NewList()
	l.insert(objAt(1))
	l.Clear()
	if !l.IsEmpty() {
		t.Fatal("expected empty list after Clear")
	}
	l.filterInPlace(func(Object) bool { return false })
	if !l.IsEmpty() {
		t.Fatal("filter after Clear should remain a no-op")
	}
}

func TestList_FilterInPlace_DeleteBySwap(t *testing.T) {
	l := NewList()
	for i := 0; i < 10; i++ {
		l.insert(objAt(uintptr(i)))
	}
	// Keep only even addresses.
	l.filterInPlace(func(o Object) bool { return o.Addr%2 == 0 })
	if got := l.Len(); got != 5 {
		t.Fatalf("Len() after filter = %d, want 5", got)
	}
	for _, o := range l.All() {
		if o.Addr%2 != 0 {
			t.Errorf("surviving object at odd addr %d", o.Addr)
		}
	}
}

func TestList_Compaction(t *testing.T) {
	l := NewList()
	// Three huge chunks at used = 800, 100, 100 per spec scenario 6.
	next := uintptr(0)
	for _, used := range []int{ChunkSizeHuge, 100, 100} {
		c := newChunk(ChunkSizeHuge)
		for i := 0; i < used; i++ {
			c.insert(objAt(next))
			next++
		}
		l.chunks = append(l.chunks, c)
	}

	if len(l.chunks) != 3 {
		t.Fatalf("setup: chunk count = %d, want 3", len(l.chunks))
	}

	// Filter: keep all of chunk 1 (addr < 800), drop chunks 2 and 3.
	l.filterInPlace(func(o Object) bool { return o.Addr < ChunkSizeHuge })

	if got := l.Len(); got != ChunkSizeHuge {
		t.Fatalf("Len() after filter+compaction = %d, want %d", got, ChunkSizeHuge)
	}
	if len(l.chunks) != 1 {
		t.Fatalf("chunk count after compaction = %d, want 1", len(l.chunks))
	}
	if l.chunks[0].used != ChunkSizeHuge {
		t.Fatalf("remaining chunk used = %d, want %d", l.chunks[0].used, ChunkSizeHuge)
	}
}
