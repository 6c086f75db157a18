package match

// Chunk size classes, grounded on match.h's five fixed capacities. A
// search allocates Huge chunks by default (§4.8); filtering never
// allocates, it only shrinks and compacts what search already built.
const (
	ChunkSizeTiny   = 50
	ChunkSizeSmall  = 100
	ChunkSizeMedium = 200
	ChunkSizeLarge  = 400
	ChunkSizeHuge   = 800
)

// chunk is a fixed-capacity array of Objects, the unit of allocation for
// the match store (match_chunk_header in the original).
type chunk struct {
	objects []Object // len == capacity, only objects[:used] are live
	used    int
}

func newChunk(capacity int) *chunk {
	return &chunk{objects: make([]Object, capacity)}
}

func (c *chunk) capacity() int {
	return len(c.objects)
}

func (c *chunk) full() bool {
	return c.used == len(c.objects)
}

// insert appends obj, returning false if the chunk is already full.
func (c *chunk) insert(obj Object) bool {
	if c.full() {
		return false
	}
	c.objects[c.used] = obj
	c.used++
	return true
}

// deleteAt removes the object at index i via swap-with-tail, per §4.8's
// deletion rule: swap slot i with slot used-1, decrement used, and do
// not advance i (the caller's iteration must re-examine slot i).
func (c *chunk) deleteAt(i int) {
	last := c.used - 1
	c.objects[i] = c.objects[last]
	c.used--
}

// List is the chunked, owning collection of match candidates
// (match_list in the original). Unlike region.Set's FilterList, List
// filtering mutates in place: filter predicates delete non-matching
// objects directly from their chunk.
type List struct {
	chunks []*chunk
}

// NewList returns an empty match list.
func NewList() *List {
	return &List{}
}

// Clear empties the list. Per spec §8's round-trip law, Clear followed
// by any filter is a no-op: an empty List has no chunks to iterate.
func (l *List) Clear() {
	l.chunks = nil
}

// Len returns the total number of live objects across all chunks.
func (l *List) Len() int {
	n := 0
	for _, c := range l.chunks {
		n += c.used
	}
	return n
}

// IsEmpty reports whether the list holds no live objects.
func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

// All returns every live object across all chunks, in chunk-then-slot
// order. Per spec §5, iteration order after a filter pass is
// unspecified; callers must not depend on the order returned here
// surviving a subsequent filter.
func (l *List) All() []Object {
	out := make([]Object, 0, l.Len())
	for _, c := range l.chunks {
		out = append(out, c.objects[:c.used]...)
	}
	return out
}

// Insert appends obj to the list, per §4.8's insertion rule. Exported
// for callers that reconstruct a List from a previously saved match set
// (e.g. a CLI chaining search and filter across separate invocations).
func (l *List) Insert(obj Object) {
	l.insert(obj)
}

// insert appends obj to the current (last) chunk if it has room,
// otherwise allocates a new Huge chunk, per §4.8's insertion rule.
func (l *List) insert(obj Object) {
	if n := len(l.chunks); n > 0 {
		if l.chunks[n-1].insert(obj) {
			return
		}
	}
	c := newChunk(ChunkSizeHuge)
	c.insert(obj)
	l.chunks = append(l.chunks, c)
}

// filterInPlace retains objects for which keep returns true, deleting
// the rest via swap-with-tail, emptying and dropping chunks that reach
// used == 0, then running the compaction pass.
func (l *List) filterInPlace(keep func(Object) bool) {
	kept := l.chunks[:0]
	for _, c := range l.chunks {
		i := 0
		for i < c.used {
			if keep(c.objects[i]) {
				i++
				continue
			}
			c.deleteAt(i)
		}
		if c.used > 0 {
			kept = append(kept, c)
		}
	}
	l.chunks = kept
	l.compact()
}

// compact implements §4.8's compaction pass: pick a "current" chunk
// with free space, move every other non-full chunk's contents into it —
// wholesale if it fits, otherwise as many as fit taken from the tail —
// always preferring to move into the larger-capacity chunk, and make an
// emptied source chunk the new current if the move was partial.
func (l *List) compact() {
	if len(l.chunks) < 2 {
		return
	}

	curIdx := -1
	for i, c := range l.chunks {
		if !c.full() {
			curIdx = i
			break
		}
	}
	if curIdx == -1 {
		return
	}

	for srcIdx := range l.chunks {
		if srcIdx == curIdx {
			continue
		}
		src := l.chunks[srcIdx]
		if src.used == 0 || src.full() {
			continue
		}

		cur := l.chunks[curIdx]
		dstIdx := curIdx
		if src.capacity() > cur.capacity() {
			// Always prefer moving into the larger-capacity chunk.
			cur, src = src, cur
			dstIdx, srcIdx = srcIdx, dstIdx
		}

		free := cur.capacity() - cur.used
		if src.used <= free {
			for j := 0; j < src.used; j++ {
				cur.insert(src.objects[j])
			}
			src.used = 0
			curIdx = dstIdx
			continue
		}

		// Move as many as fit from the tail of src into cur.
		for free > 0 {
			last := src.used - 1
			cur.insert(src.objects[last])
			src.used--
			free--
		}
		// cur is now full; src retains its unmoved head and becomes the
		// new current chunk, since it now has free space.
		curIdx = srcIdx
	}

	out := l.chunks[:0]
	for _, c := range l.chunks {
		if c.used > 0 {
			out = append(out, c)
		}
	}
	l.chunks = out
}
