// Package region discovers and filters the memory mappings of a traced
// process, parsed from /proc/<pid>/maps.
package region

// Perms mirrors the rwxps flags of a /proc/<pid>/maps line.
type Perms struct {
	Read    bool
	Write   bool
	Exec    bool
	Private bool
	Shared  bool
}

// Region is one mapped address range belonging to a process.
type Region struct {
	ID       uint64
	Start    uintptr
	End      uintptr
	Perms    Perms
	Pathname string
}

// Len returns the size in bytes of the region.
func (r *Region) Len() uintptr {
	return r.End - r.Start
}

// Contains reports whether addr falls within [Start, End).
func (r *Region) Contains(addr uintptr) bool {
	return addr >= r.Start && addr < r.End
}

// Set is an insertion-ordered collection of regions with monotonically
// increasing ids, mirroring the original's region_list.
type Set struct {
	regions []*Region
	nextID  uint64
}

// NewSet returns an empty region Set with id assignment starting at 1.
func NewSet() *Set {
	return &Set{nextID: 1}
}

// Add appends region to the set, assigning it the next id.
func (s *Set) Add(r *Region) {
	r.ID = s.nextID
	s.nextID++
	s.regions = append(s.regions, r)
}

// Len returns the number of regions in the set.
func (s *Set) Len() int {
	return len(s.regions)
}

// All returns the regions in insertion order. The slice is owned by the
// Set and must not be mutated by the caller.
func (s *Set) All() []*Region {
	return s.regions
}

// FindByID returns the region with the given id, or nil if none matches.
func (s *Set) FindByID(id uint64) *Region {
	for _, r := range s.regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// FindByAddress returns the region containing addr, or nil if none does.
func (s *Set) FindByAddress(addr uintptr) *Region {
	for _, r := range s.regions {
		if addr >= r.Start && addr < r.End {
			return r
		}
	}
	return nil
}

// Clear empties the set. The next id counter is not reset, matching the
// original's behavior of never reusing an id within a process's lifetime
// (region_list_init resets next_id only on a fresh list, never on reuse
// from process_pid_maps, since that function always builds a new list).
func (s *Set) Clear() {
	s.regions = nil
}

// Filter is a non-owning reference into a Set: filtering never copies or
// reallocates regions, it only selects which ones are visible.
type Filter struct {
	Region *Region
}

// FilterList is the result of applying a predicate to a Set. Like the
// original's region_filter_list, it is a view: the Regions it references
// are still owned by the Set they came from.
type FilterList struct {
	items []Filter
}

// Len returns the number of regions selected by the filter.
func (fl *FilterList) Len() int {
	if fl == nil {
		return 0
	}
	return len(fl.items)
}

// Regions returns the selected regions in the order they were matched.
func (fl *FilterList) Regions() []*Region {
	if fl == nil {
		return nil
	}
	out := make([]*Region, len(fl.items))
	for i, it := range fl.items {
		out[i] = it.Region
	}
	return out
}
