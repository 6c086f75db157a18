package match

import (
	errorsx "github.com/cquaid/scnm/errors"
	"github.com/cquaid/scnm/region"
	"github.com/cquaid/scnm/tracer"
)

// SearchOptions controls candidate stride, per SEARCH_OPT_* in match.h.
type SearchOptions struct {
	Aligned bool
}

// searchPredicate tests a freshly read candidate against one or two
// needles.
type searchPredicate func(n1, n2 Needle, obj Object) bool

// runSearch drives process_region / __search: for every region in
// regions, position the backend and drain candidates into list,
// keeping only those the predicate accepts.
func runSearch(t *tracer.Tracer, pid int, list *List, n1, n2 Needle, regions *region.Set, opts SearchOptions, pred searchPredicate) error {
	if regions == nil || regions.Len() == 0 {
		return nil
	}

	backend, err := SelectBackend(t, pid, opts.Aligned)
	if err != nil {
		return err
	}
	defer backend.Close()

	for _, r := range regions.All() {
		ok, err := backend.Set(r)
		if err != nil {
			return errorsx.Wrap(err, errorsx.IoFailed, "search_process_region")
		}
		if !ok {
			continue
		}

		for {
			obj, done, err := backend.Next()
			if err != nil {
				return errorsx.Wrap(err, errorsx.IoFailed, "search_process_region")
			}
			if done {
				break
			}
			if pred(n1, n2, obj) {
				list.insert(obj)
			}
		}
	}

	return nil
}

func SearchEq(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Eq(n1, obj.Bytes)
	})
}

func SearchNe(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Ne(n1, obj.Bytes)
	})
}

func SearchLt(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Lt(n1, obj.Bytes)
	})
}

func SearchLe(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Le(n1, obj.Bytes)
	})
}

func SearchGt(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Gt(n1, obj.Bytes)
	})
}

func SearchGe(t *tracer.Tracer, pid int, list *List, needle Needle, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, needle, Needle{}, regions, opts, func(n1, _ Needle, obj Object) bool {
		return Ge(n1, obj.Bytes)
	})
}

func SearchRange(t *tracer.Tracer, pid int, list *List, lower, upper Needle, bound RangeBoundFlags, regions *region.Set, opts SearchOptions) error {
	return runSearch(t, pid, list, lower, upper, regions, opts, func(n1, n2 Needle, obj Object) bool {
		return Range(n1, n2, obj.Bytes, bound)
	})
}
