package match

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"unsafe"

	"github.com/cquaid/scnm/procmem"
	"github.com/cquaid/scnm/region"
	"github.com/cquaid/scnm/tracer"
)

// TestSelectBackend_PrefersProcMemWhenReadable covers spec scenario 5:
// a self-pid is always readable via /proc/<pid>/mem, so SelectBackend must
// pick the ProcMem backend over the ptrace fallback without needing a
// live tracer at all.
func TestSelectBackend_PrefersProcMemWhenReadable(t *testing.T) {
	backend, err := SelectBackend(nil, os.Getpid(), false)
	if err != nil {
		t.Fatalf("SelectBackend: %v", err)
	}
	defer backend.Close()

	if _, ok := backend.(*procMemBackend); !ok {
		t.Fatalf("expected *procMemBackend for a self-readable pid, got %T", backend)
	}
}

// TestSelectBackend_FallsBackWhenUnreadable covers the other half of
// scenario 5: a pid whose /proc/<pid>/mem cannot be opened (here, one
// that doesn't exist) must fall back to the ptrace backend rather than
// erroring out of SelectBackend itself.
func TestSelectBackend_FallsBackWhenUnreadable(t *testing.T) {
	const bogusPid = 1<<30 - 1 // astronomically unlikely to exist

	backend, err := SelectBackend(nil, bogusPid, true)
	if err != nil {
		t.Fatalf("SelectBackend: %v", err)
	}
	defer backend.Close()

	pb, ok := backend.(*ptraceBackend)
	if !ok {
		t.Fatalf("expected *ptraceBackend fallback, got %T", backend)
	}
	if !pb.aligned {
		t.Fatalf("expected aligned mode to propagate into the ptrace fallback")
	}
}

// spawnAttachedSleeper starts a child process and ptrace-attaches to it,
// guaranteeing a live tracer to drive ptraceBackend directly (bypassing
// SelectBackend, which would otherwise always prefer ProcMem for a
// same-uid child we can freely read).
func spawnAttachedSleeper(t *testing.T) (*exec.Cmd, *tracer.Tracer) {
	t.Helper()

	cmd := exec.Command("/bin/sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot spawn /bin/sleep: %v", err)
	}

	tr, err := tracer.New(context.Background(), cmd.Process.Pid)
	if err != nil {
		_ = cmd.Process.Kill()
		t.Fatalf("tracer.New: %v", err)
	}
	if err := tr.AttachWait(); err != nil {
		_ = cmd.Process.Kill()
		t.Fatalf("AttachWait: %v", err)
	}

	t.Cleanup(func() {
		_ = tr.Detach()
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})

	return cmd, tr
}

// firstReadableRegion finds a region wide enough to carve a fixed-length
// sub-region out of for a deterministic candidate count.
func firstReadableRegion(t *testing.T, pid int, minLen uintptr) *region.Region {
	t.Helper()

	set, err := region.Discover(pid)
	if err != nil {
		t.Fatalf("region.Discover: %v", err)
	}
	for _, r := range set.All() {
		if r.Perms.Read && r.Len() >= minLen {
			return r
		}
	}
	t.Skip("no region wide enough found for the tracee")
	return nil
}

// TestPtraceBackend_AlignedCandidateCount covers spec scenario 4/§8's
// candidate-count invariant for aligned mode: exactly floor(L/W)
// candidates over a region of length L, word size W=8, with no spurious
// short-width tail object.
func TestPtraceBackend_AlignedCandidateCount(t *testing.T) {
	_, tr := spawnAttachedSleeper(t)
	pid := tr.Pid()

	const length = 43 // not a multiple of 8, so a tail-object bug would show up
	base := firstReadableRegion(t, pid, length)
	r := &region.Region{Start: base.Start, End: base.Start + length, Perms: base.Perms}

	b := newPtraceBackend(tr, true)
	ok, err := b.Set(r)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !ok {
		t.Fatal("Set reported region too small")
	}

	count := 0
	for {
		_, done, err := b.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if done {
			break
		}
		count++
	}

	want := length / 8
	if count != want {
		t.Errorf("aligned candidate count = %d, want floor(%d/8) = %d", count, length, want)
	}
}

// TestPtraceBackend_UnalignedCandidateCount covers the unaligned-mode
// side of the same invariant: one candidate per byte offset in the
// region, i.e. exactly L candidates.
func TestPtraceBackend_UnalignedCandidateCount(t *testing.T) {
	_, tr := spawnAttachedSleeper(t)
	pid := tr.Pid()

	const length = 43
	base := firstReadableRegion(t, pid, length)
	r := &region.Region{Start: base.Start, End: base.Start + length, Perms: base.Perms}

	b := newPtraceBackend(tr, false)
	ok, err := b.Set(r)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !ok {
		t.Fatal("Set reported region too small")
	}

	count := 0
	for {
		_, done, err := b.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if done {
			break
		}
		count++
	}

	if count != length {
		t.Errorf("unaligned candidate count = %d, want %d", count, length)
	}
}

// TestProcMemBackend_AlignedCandidateCount covers the same aligned-mode
// invariant for the ProcMem backend, exercised directly against the test
// process's own memory (always readable via /proc/self/mem).
func TestProcMemBackend_AlignedCandidateCount(t *testing.T) {
	buf := make([]byte, 43) // not a multiple of 8
	start := uintptr(unsafe.Pointer(&buf[0]))
	r := &region.Region{Start: start, End: start + uintptr(len(buf)), Perms: region.Perms{Read: true}}

	mem, err := procmem.OpenReadOnly(os.Getpid())
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer mem.Close()

	b := newProcMemBackend(mem, true)
	ok, err := b.Set(r)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !ok {
		t.Fatal("Set reported region too small")
	}

	count := 0
	for {
		_, done, err := b.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if done {
			break
		}
		count++
	}

	want := len(buf) / 8
	if count != want {
		t.Errorf("aligned candidate count = %d, want floor(%d/8) = %d", count, len(buf), want)
	}
}
