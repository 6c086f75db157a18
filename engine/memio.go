package engine

import (
	"encoding/binary"

	"github.com/cquaid/scnm/procmem"
)

// ReadBytes reads n bytes at addr from the target process, preferring
// the ProcMem backend and falling back to word-at-a-time PEEKTEXT when
// /proc/<pid>/mem isn't accessible, per §4.10's generalization of the
// §4.6 backend-selection rule.
func (s *Session) ReadBytes(addr uintptr, n int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if procmem.CanReadPidMem(s.pid) {
		m, err := procmem.OpenReadOnly(s.pid)
		if err == nil {
			defer m.Close()
			buf := make([]byte, n)
			if _, err := m.ReadFull(buf, addr); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}

	buf := make([]byte, 0, n)
	cur := addr
	for len(buf) < n {
		word, err := s.tracer.Peek(cur)
		if err != nil {
			return nil, err
		}
		var wordBuf [8]byte
		binary.LittleEndian.PutUint64(wordBuf[:], word)

		take := 8
		if remaining := n - len(buf); remaining < 8 {
			take = remaining
		}
		buf = append(buf, wordBuf[:take]...)
		cur += 8
	}
	return buf, nil
}

// WriteBytes writes data at addr in the target process, preferring the
// ProcMem backend and falling back to read-modify-write POKETEXT when
// /proc/<pid>/mem isn't writable.
func (s *Session) WriteBytes(addr uintptr, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if procmem.CanWritePidMem(s.pid) {
		m, err := procmem.Open(s.pid)
		if err == nil {
			defer m.Close()
			_, err := m.WriteFull(data, addr)
			return err
		}
	}

	cur := addr
	remaining := data
	for len(remaining) > 0 {
		take := 8
		if len(remaining) < 8 {
			take = len(remaining)
		}

		var wordBuf [8]byte
		if take < 8 {
			word, err := s.tracer.Peek(cur)
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint64(wordBuf[:], word)
		}
		copy(wordBuf[:take], remaining[:take])

		if err := s.tracer.Poke(cur, binary.LittleEndian.Uint64(wordBuf[:])); err != nil {
			return err
		}

		cur += uintptr(take)
		remaining = remaining[take:]
	}
	return nil
}
