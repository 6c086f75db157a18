// Package procmem reads and writes a traced process's memory through
// /proc/<pid>/mem, the fast path the engine prefers whenever the tracee
// is ptrace-stopped and the memory file is accessible.
package procmem

import (
	"fmt"
	"os"

	errorsx "github.com/cquaid/scnm/errors"
	"golang.org/x/sys/unix"
)

func memPath(pid int) string {
	return fmt.Sprintf("/proc/%d/mem", pid)
}

// CanReadPidMem reports whether the caller can read /proc/<pid>/mem.
func CanReadPidMem(pid int) bool {
	return unix.Access(memPath(pid), unix.R_OK) == nil
}

// CanWritePidMem reports whether the caller can write /proc/<pid>/mem.
func CanWritePidMem(pid int) bool {
	return unix.Access(memPath(pid), unix.W_OK) == nil
}

// Mem is an open handle onto a traced process's memory file.
type Mem struct {
	pid int
	f   *os.File
}

// Open opens /proc/<pid>/mem for both reading and writing.
func Open(pid int) (*Mem, error) {
	path := memPath(pid)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.IoFailed, "procmem_open", path)
	}
	return &Mem{pid: pid, f: f}, nil
}

// OpenReadOnly opens /proc/<pid>/mem for reading only, for callers that
// never poke the tracee through the handle (the search backend, the
// filter reader, byte-range reads).
func OpenReadOnly(pid int) (*Mem, error) {
	path := memPath(pid)
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.IoFailed, "procmem_open", path)
	}
	return &Mem{pid: pid, f: f}, nil
}

// Close closes the memory file handle.
func (m *Mem) Close() error {
	return m.f.Close()
}

// Pid returns the target process id.
func (m *Mem) Pid() int {
	return m.pid
}

// Read performs a single pread(2) at offset, returning up to len(buf)
// bytes. It may return fewer bytes than requested without error, mirroring
// read_pid_mem_fd's direct pread passthrough.
func (m *Mem) Read(buf []byte, offset uintptr) (int, error) {
	n, err := unix.Pread(int(m.f.Fd()), buf, int64(offset))
	if err != nil {
		return n, errorsx.WrapWithPid(err, errorsx.IoFailed, "procmem_read", m.pid)
	}
	return n, nil
}

// ReadFull reads exactly len(buf) bytes starting at offset, retrying
// short reads until the buffer is full or EOF is hit, mirroring
// read_pid_mem_loop_fd. A short final read returns the partial byte
// count together with an IoFailed error whose detail reports the short
// read.
func (m *Mem) ReadFull(buf []byte, offset uintptr) (int, error) {
	remaining := buf
	off := int64(offset)
	total := 0

	for len(remaining) > 0 {
		n, err := unix.Pread(int(m.f.Fd()), remaining, off)
		if err != nil {
			return total, errorsx.WrapWithPid(err, errorsx.IoFailed, "procmem_read_full", m.pid)
		}
		if n == 0 {
			return total, errorsx.New(errorsx.IoFailed, "procmem_read_full", "short read: tracee memory ended before buffer filled")
		}
		remaining = remaining[n:]
		off += int64(n)
		total += n
	}
	return total, nil
}

// Write performs a single pwrite(2) at offset.
func (m *Mem) Write(buf []byte, offset uintptr) (int, error) {
	n, err := unix.Pwrite(int(m.f.Fd()), buf, int64(offset))
	if err != nil {
		return n, errorsx.WrapWithPid(err, errorsx.IoFailed, "procmem_write", m.pid)
	}
	return n, nil
}

// WriteFull writes exactly len(buf) bytes at offset, retrying short
// writes, mirroring write_pid_mem_loop_fd.
func (m *Mem) WriteFull(buf []byte, offset uintptr) (int, error) {
	remaining := buf
	off := int64(offset)
	total := 0

	for len(remaining) > 0 {
		n, err := unix.Pwrite(int(m.f.Fd()), remaining, off)
		if err != nil {
			return total, errorsx.WrapWithPid(err, errorsx.IoFailed, "procmem_write_full", m.pid)
		}
		if n == 0 {
			return total, errorsx.New(errorsx.IoFailed, "procmem_write_full", "short write: tracee memory ended before buffer flushed")
		}
		remaining = remaining[n:]
		off += int64(n)
		total += n
	}
	return total, nil
}
