package region

import (
	"path"
	"regexp"

	errorsx "github.com/cquaid/scnm/errors"
)

type matchFn func(*Region) bool

// filter builds a FilterList from regions where fn reports true, inverted
// when invert is set. A nil result means no region matched, matching the
// original's NULL-on-empty convention; callers should treat a nil
// *FilterList as "no matches" rather than an error.
func filterSet(set *Set, fn matchFn, invert bool) *FilterList {
	if set == nil || set.Len() == 0 {
		return nil
	}

	fl := &FilterList{}
	for _, r := range set.All() {
		match := fn(r)
		if invert {
			match = !match
		}
		if match {
			fl.items = append(fl.items, Filter{Region: r})
		}
	}
	if len(fl.items) == 0 {
		return nil
	}
	return fl
}

// FilterPathname selects regions whose full mapped pathname equals name.
func FilterPathname(set *Set, name string) *FilterList {
	return filterSet(set, func(r *Region) bool { return r.Pathname == name }, false)
}

// FilterOutPathname selects regions whose full mapped pathname does not
// equal name.
func FilterOutPathname(set *Set, name string) *FilterList {
	return filterSet(set, func(r *Region) bool { return r.Pathname == name }, true)
}

// FilterBasename selects regions whose pathname's final path component
// equals name (e.g. "libc.so.6" matches "/usr/lib/libc.so.6").
func FilterBasename(set *Set, name string) *FilterList {
	return filterSet(set, func(r *Region) bool { return path.Base(r.Pathname) == name }, false)
}

// FilterOutBasename selects regions whose pathname's final path component
// does not equal name.
func FilterOutBasename(set *Set, name string) *FilterList {
	return filterSet(set, func(r *Region) bool { return path.Base(r.Pathname) == name }, true)
}

// FilterRegex selects regions whose pathname matches the POSIX extended
// regular expression pattern. It is grounded on the original's regexec
// against region->pathname.
func FilterRegex(set *Set, pattern string) (*FilterList, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.InvalidNeedle, "region_filter_regex", pattern)
	}
	return filterSet(set, func(r *Region) bool { return re.MatchString(r.Pathname) }, false), nil
}

// FilterOutRegex selects regions whose pathname does not match pattern.
func FilterOutRegex(set *Set, pattern string) (*FilterList, error) {
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.InvalidNeedle, "region_filter_out_regex", pattern)
	}
	return filterSet(set, func(r *Region) bool { return re.MatchString(r.Pathname) }, true), nil
}
