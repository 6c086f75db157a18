package match

import (
	errorsx "github.com/cquaid/scnm/errors"
	"github.com/cquaid/scnm/procmem"
	"github.com/cquaid/scnm/tracer"
)

// valueReader re-reads the current bytes at an arbitrary address for a
// filter pass, grounded on match_match.c's __read_pid_mem /
// __ptrace_peektext read_fn pair.
type valueReader interface {
	ReadAt(addr uintptr) (bytes [8]byte, size int, err error)
}

type procMemReader struct {
	mem *procmem.Mem
}

func (r *procMemReader) ReadAt(addr uintptr) ([8]byte, int, error) {
	var buf [8]byte
	n, err := r.mem.ReadFull(buf[:], addr)
	if err != nil && n == 0 {
		return buf, 0, err
	}
	return buf, n, nil
}

type ptraceReader struct {
	t *tracer.Tracer
}

func (r *ptraceReader) ReadAt(addr uintptr) ([8]byte, int, error) {
	word, err := r.t.Peek(addr)
	if err != nil {
		return [8]byte{}, 0, err
	}
	var buf [8]byte
	hostEndianPutUint64(buf[:], word)
	return buf, 8, nil
}

// selectReader picks a valueReader with the same precedence rule as
// SelectBackend: ProcMem when readable, ptrace otherwise.
func selectReader(t *tracer.Tracer, pid int) (valueReader, func(), error) {
	if procmem.CanReadPidMem(pid) {
		if m, err := procmem.OpenReadOnly(pid); err == nil {
			return &procMemReader{mem: m}, func() { m.Close() }, nil
		}
	}
	return &ptraceReader{t: t}, func() {}, nil
}

// filterPredicate decides, given the original candidate and its
// freshly re-read value, whether the candidate survives.
type filterPredicate func(orig Object, new [8]byte) bool

// runFilter re-reads every candidate in list and retains those pred
// accepts, then compacts, per §4.8/§4.9.
func runFilter(t *tracer.Tracer, pid int, list *List, pred filterPredicate) error {
	if list.IsEmpty() {
		return nil
	}

	reader, closeFn, err := selectReader(t, pid)
	if err != nil {
		return errorsx.Wrap(err, errorsx.IoFailed, "match_filter")
	}
	defer closeFn()

	var readErr error
	list.filterInPlace(func(orig Object) bool {
		if readErr != nil {
			return true // stop mutating further on error; caller reports readErr
		}
		new, _, err := reader.ReadAt(orig.Addr)
		if err != nil {
			readErr = errorsx.WrapWithPid(err, errorsx.IoFailed, "match_filter_read", pid)
			return true
		}
		return pred(orig, new)
	})

	return readErr
}

func MatchEq(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Eq(needle, new)
	})
}

func MatchNe(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Ne(needle, new)
	})
}

func MatchLt(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Lt(needle, new)
	})
}

func MatchLe(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Le(needle, new)
	})
}

func MatchGt(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Gt(needle, new)
	})
}

func MatchGe(t *tracer.Tracer, pid int, list *List, needle Needle) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Ge(needle, new)
	})
}

func MatchRange(t *tracer.Tracer, pid int, list *List, lower, upper Needle, bound RangeBoundFlags) error {
	return runFilter(t, pid, list, func(_ Object, new [8]byte) bool {
		return Range(lower, upper, new, bound)
	})
}

func MatchChanged(t *tracer.Tracer, pid int, list *List) error {
	return runFilter(t, pid, list, func(orig Object, new [8]byte) bool {
		return Changed(orig)(new)
	})
}

func MatchUnchanged(t *tracer.Tracer, pid int, list *List) error {
	return runFilter(t, pid, list, func(orig Object, new [8]byte) bool {
		return Unchanged(orig)(new)
	})
}

func MatchIncreased(t *tracer.Tracer, pid int, list *List) error {
	return runFilter(t, pid, list, func(orig Object, new [8]byte) bool {
		return Increased(orig)(new)
	})
}

func MatchDecreased(t *tracer.Tracer, pid int, list *List) error {
	return runFilter(t, pid, list, func(orig Object, new [8]byte) bool {
		return Decreased(orig)(new)
	})
}
