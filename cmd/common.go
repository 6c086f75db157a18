package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cquaid/scnm/match"
	"github.com/cquaid/scnm/region"
)

func parsePid(s string) (int, error) {
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", s)
	}
	return pid, nil
}

func parseAddr(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uintptr(v), nil
}

func parseBoundFlags(s string) (match.RangeBoundFlags, error) {
	switch s {
	case "gt_lt", "GT_LT":
		return match.GTLT, nil
	case "ge_lt", "GE_LT":
		return match.GELT, nil
	case "gt_le", "GT_LE":
		return match.GTLE, nil
	case "ge_le", "GE_LE":
		return match.GELE, nil
	default:
		return 0, fmt.Errorf("invalid range bound %q (want one of gt_lt, ge_lt, gt_le, ge_le)", s)
	}
}

// applyRegionFilter narrows set down to the regions selected by a
// pathname/basename/regex flag set, returning set unchanged when no
// filter flag was given. The filtered result is copied into a fresh
// region.Set so search/filter routines can iterate it directly; this
// reassigns region ids from 1, which is immaterial here since nothing
// downstream of this command depends on the original ids surviving the
// filter.
func applyRegionFilter(set *region.Set, pathname, basename, regex string) (*region.Set, error) {
	var fl *region.FilterList
	var err error

	switch {
	case pathname != "":
		fl = region.FilterPathname(set, pathname)
	case basename != "":
		fl = region.FilterBasename(set, basename)
	case regex != "":
		fl, err = region.FilterRegex(set, regex)
		if err != nil {
			return nil, err
		}
	default:
		return set, nil
	}

	out := region.NewSet()
	for _, r := range fl.Regions() {
		out.Add(&region.Region{Start: r.Start, End: r.End, Perms: r.Perms, Pathname: r.Pathname})
	}
	return out, nil
}

// matchRecord is the on-disk representation of one match.Object, used to
// carry a match list between separate CLI invocations (the engine itself
// is stateless per invocation; this file is a CLI scripting convenience,
// not part of the engine's API).
type matchRecord struct {
	Addr  uint64 `json:"addr"`
	Bytes string `json:"bytes"` // hex-encoded, 8 bytes
	Flags struct {
		I8  bool `json:"i8"`
		I16 bool `json:"i16"`
		I32 bool `json:"i32"`
		I64 bool `json:"i64"`
		F32 bool `json:"f32"`
		F64 bool `json:"f64"`
	} `json:"flags"`
}

func saveMatches(path string, list *match.List) error {
	records := make([]matchRecord, 0, list.Len())
	for _, o := range list.All() {
		rec := matchRecord{Addr: uint64(o.Addr), Bytes: fmt.Sprintf("%x", o.Bytes)}
		rec.Flags.I8 = o.Flags.I8
		rec.Flags.I16 = o.Flags.I16
		rec.Flags.I32 = o.Flags.I32
		rec.Flags.I64 = o.Flags.I64
		rec.Flags.F32 = o.Flags.F32
		rec.Flags.F64 = o.Flags.F64
		records = append(records, rec)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func loadMatches(path string) (*match.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []matchRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, err
	}

	list := match.NewList()
	for _, rec := range records {
		var bytes [8]byte
		decoded, err := hex.DecodeString(rec.Bytes)
		if err != nil {
			return nil, err
		}
		copy(bytes[:], decoded)

		obj := match.Object{Addr: uintptr(rec.Addr), Bytes: bytes}
		obj.Flags.I8 = rec.Flags.I8
		obj.Flags.I16 = rec.Flags.I16
		obj.Flags.I32 = rec.Flags.I32
		obj.Flags.I64 = rec.Flags.I64
		obj.Flags.F32 = rec.Flags.F32
		obj.Flags.F64 = rec.Flags.F64
		list.Insert(obj)
	}
	return list, nil
}
