package region

import "testing"

func TestSet_AddAssignsMonotonicIDs(t *testing.T) {
	s := NewSet()
	s.Add(&Region{Start: 0x1000, End: 0x2000})
	s.Add(&Region{Start: 0x2000, End: 0x3000})

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("Len = %d, want 2", len(all))
	}
	if all[0].ID != 1 || all[1].ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", all[0].ID, all[1].ID)
	}
}

func TestSet_FindByID(t *testing.T) {
	s := NewSet()
	s.Add(&Region{Start: 0x1000, End: 0x2000})
	r2 := &Region{Start: 0x2000, End: 0x3000}
	s.Add(r2)

	if got := s.FindByID(2); got != r2 {
		t.Errorf("FindByID(2) = %v, want %v", got, r2)
	}
	if got := s.FindByID(99); got != nil {
		t.Errorf("FindByID(99) = %v, want nil", got)
	}
}

func TestSet_FindByAddress(t *testing.T) {
	s := NewSet()
	r := &Region{Start: 0x1000, End: 0x2000}
	s.Add(r)

	if got := s.FindByAddress(0x1500); got != r {
		t.Errorf("FindByAddress(0x1500) = %v, want %v", got, r)
	}
	if got := s.FindByAddress(0x2000); got != nil {
		t.Errorf("FindByAddress(0x2000) (exclusive end) = %v, want nil", got)
	}
	if got := s.FindByAddress(0x500); got != nil {
		t.Errorf("FindByAddress(0x500) = %v, want nil", got)
	}
}

func TestSet_Clear(t *testing.T) {
	s := NewSet()
	s.Add(&Region{Start: 0x1000, End: 0x2000})
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	// Next id must not reset within the lifetime of a set.
	s.Add(&Region{Start: 0x3000, End: 0x4000})
	if got := s.All()[0].ID; got != 2 {
		t.Errorf("id after Clear+Add = %d, want 2 (no reuse)", got)
	}
}

func TestParseMapsLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantOK  bool
		wantErr bool
		check   func(*testing.T, *Region)
	}{
		{
			name:   "heap rw",
			line:   "7f2a1c000000-7f2a1c021000 rw-p 00000000 00:00 0                          [heap]",
			wantOK: true,
			check: func(t *testing.T, r *Region) {
				if r.Start != 0x7f2a1c000000 || r.End != 0x7f2a1c021000 {
					t.Errorf("range = %x-%x", r.Start, r.End)
				}
				if !r.Perms.Read || !r.Perms.Write {
					t.Errorf("perms = %+v, want r+w", r.Perms)
				}
				if r.Pathname != "[heap]" {
					t.Errorf("pathname = %q, want [heap]", r.Pathname)
				}
			},
		},
		{
			name:   "read-only skipped",
			line:   "00400000-00401000 r-xp 00000000 08:01 123456                     /bin/sleep",
			wantOK: false,
		},
		{
			name:   "anonymous no pathname",
			line:   "7ffd00000000-7ffd00021000 rw-p 00000000 00:00 0",
			wantOK: true,
			check: func(t *testing.T, r *Region) {
				if r.Pathname != "" {
					t.Errorf("pathname = %q, want empty", r.Pathname)
				}
			},
		},
		{
			name:    "malformed",
			line:    "not a maps line",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok, err := parseMapsLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestFilterPathnameAndBasename(t *testing.T) {
	s := NewSet()
	s.Add(&Region{Start: 0x1000, End: 0x2000, Pathname: "/usr/lib/libc.so.6"})
	s.Add(&Region{Start: 0x2000, End: 0x3000, Pathname: "[heap]"})
	s.Add(&Region{Start: 0x3000, End: 0x4000, Pathname: "/usr/lib/libc.so.6"})

	fl := FilterPathname(s, "/usr/lib/libc.so.6")
	if fl.Len() != 2 {
		t.Fatalf("FilterPathname len = %d, want 2", fl.Len())
	}

	fl = FilterOutPathname(s, "/usr/lib/libc.so.6")
	if fl.Len() != 1 || fl.Regions()[0].Pathname != "[heap]" {
		t.Fatalf("FilterOutPathname = %+v", fl.Regions())
	}

	fl = FilterBasename(s, "libc.so.6")
	if fl.Len() != 2 {
		t.Fatalf("FilterBasename len = %d, want 2", fl.Len())
	}

	fl = FilterOutBasename(s, "libc.so.6")
	if fl.Len() != 1 {
		t.Fatalf("FilterOutBasename len = %d, want 1", fl.Len())
	}
}

func TestFilterRegex(t *testing.T) {
	s := NewSet()
	s.Add(&Region{Start: 0x1000, End: 0x2000, Pathname: "/usr/lib/libc.so.6"})
	s.Add(&Region{Start: 0x2000, End: 0x3000, Pathname: "[heap]"})

	fl, err := FilterRegex(s, "^/usr/lib/.*")
	if err != nil {
		t.Fatalf("FilterRegex: %v", err)
	}
	if fl.Len() != 1 {
		t.Fatalf("FilterRegex len = %d, want 1", fl.Len())
	}

	fl, err = FilterOutRegex(s, "^/usr/lib/.*")
	if err != nil {
		t.Fatalf("FilterOutRegex: %v", err)
	}
	if fl.Len() != 1 || fl.Regions()[0].Pathname != "[heap]" {
		t.Fatalf("FilterOutRegex = %+v", fl.Regions())
	}

	if _, err := FilterRegex(s, "("); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestFilterSet_EmptySetReturnsNil(t *testing.T) {
	s := NewSet()
	if fl := FilterPathname(s, "anything"); fl != nil {
		t.Errorf("FilterPathname on empty set = %v, want nil", fl)
	}
}
