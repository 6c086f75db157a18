package region

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	errorsx "github.com/cquaid/scnm/errors"
	"golang.org/x/sys/unix"
)

// mapsPath returns the /proc/<pid>/maps path for pid.
func mapsPath(pid int) string {
	return fmt.Sprintf("/proc/%d/maps", pid)
}

// CanReadPidMaps reports whether the caller can read /proc/<pid>/maps for
// pid, mirroring the original's can_read_pid_maps access(2) probe.
func CanReadPidMaps(pid int) bool {
	return unix.Access(mapsPath(pid), unix.R_OK) == nil
}

// Discover parses /proc/<pid>/maps and returns a Set of regions. Per
// spec §4.4 / the original's process_pid_maps, only mappings with both
// read and write permission are kept: writable memory that can also be
// read is what the engine scans and patches.
func Discover(pid int) (*Set, error) {
	path := mapsPath(pid)

	f, err := os.Open(path)
	if err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.IoFailed, "region_discover", path)
	}
	defer f.Close()

	set := NewSet()

	scanner := bufio.NewScanner(f)
	// Maps lines are usually well under 4KiB but a pathological pathname
	// (container overlay paths, long sockets) can exceed bufio's default.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		r, ok, err := parseMapsLine(scanner.Text())
		if err != nil {
			return nil, errorsx.WrapWithDetail(err, errorsx.IoFailed, "region_discover", path)
		}
		if !ok {
			continue
		}
		set.Add(r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errorsx.WrapWithDetail(err, errorsx.IoFailed, "region_discover", path)
	}

	return set, nil
}

// parseMapsLine parses one /proc/<pid>/maps line into a Region. ok is
// false (with a nil error) when the mapping lacks read+write permission
// and should be skipped, matching the original's filter.
//
// Format: address perms offset dev inode pathname
// e.g. "7f2a1c000000-7f2a1c021000 rw-p 00000000 00:00 0   [heap]"
func parseMapsLine(line string) (*Region, bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return nil, false, fmt.Errorf("malformed maps line: %q", line)
	}

	addrRange := fields[0]
	perms := fields[1]

	dash := strings.IndexByte(addrRange, '-')
	if dash < 0 {
		return nil, false, fmt.Errorf("malformed address range: %q", addrRange)
	}
	start, err := strconv.ParseUint(addrRange[:dash], 16, 64)
	if err != nil {
		return nil, false, fmt.Errorf("malformed start address: %q", addrRange)
	}
	end, err := strconv.ParseUint(addrRange[dash+1:], 16, 64)
	if err != nil {
		return nil, false, fmt.Errorf("malformed end address: %q", addrRange)
	}

	if len(perms) < 4 {
		return nil, false, fmt.Errorf("malformed perms field: %q", perms)
	}

	read := perms[0] == 'r'
	write := perms[1] == 'w'
	if !read || !write {
		return nil, false, nil
	}

	pathname := ""
	if len(fields) >= 6 {
		pathname = strings.Join(fields[5:], " ")
	}

	r := &Region{
		Start: uintptr(start),
		End:   uintptr(end),
		Perms: Perms{
			Read:    read,
			Write:   write,
			Exec:    perms[2] == 'x',
			Private: perms[3] == 'p',
			Shared:  perms[3] == 's',
		},
		Pathname: pathname,
	}
	return r, true, nil
}
