package tracer

import (
	errorsx "github.com/cquaid/scnm/errors"
	"github.com/cquaid/scnm/logging"
)

// int3Byte is the x86 software breakpoint instruction.
const int3Byte = 0xCC

// SetBreakpoint registers a software breakpoint at addr. Breakpoints are
// armed the first time Run executes (or immediately if the tracee has
// already started). Duplicate addresses are rejected: the original source
// leaves their firing order undefined, so this engine refuses to create
// one in the first place.
func (t *Tracer) SetBreakpoint(addr uintptr, cb func(*Tracer, *Breakpoint)) (*Breakpoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !archSupported {
		return nil, errorsx.ErrUnsupportedArch
	}

	for _, bp := range t.breakpoints {
		if bp.Addr == addr {
			return nil, errorsx.ErrBreakpointExists
		}
	}

	bp := &Breakpoint{Addr: addr, Callback: cb}
	t.breakpoints = append(t.breakpoints, bp)

	if t.started {
		if err := t.armLocked(bp); err != nil {
			t.breakpoints = t.breakpoints[:len(t.breakpoints)-1]
			return nil, err
		}
	}

	return bp, nil
}

// armLocked arms a breakpoint: PEEKTEXT the word at addr, save it, then
// overwrite the low byte with 0xCC and POKETEXT it back.
func (t *Tracer) armLocked(bp *Breakpoint) error {
	word, err := t.peekLocked(bp.Addr)
	if err != nil {
		return err
	}
	bp.origWord = word

	patched := (word &^ 0xFF) | int3Byte
	if err := t.pokeLocked(bp.Addr, patched); err != nil {
		return err
	}
	bp.armed = true
	return nil
}

// disarmLocked restores the original word at bp.Addr.
func (t *Tracer) disarmLocked(bp *Breakpoint) error {
	if err := t.pokeLocked(bp.Addr, bp.origWord); err != nil {
		return err
	}
	bp.armed = false
	return nil
}

func (t *Tracer) findBreakpointLocked(addr uintptr) *Breakpoint {
	for _, bp := range t.breakpoints {
		if bp.Addr == addr {
			return bp
		}
	}
	return nil
}

// resumeResult is the outcome of breakpointResumeLocked.
type resumeResult int

const (
	resumeStopped resumeResult = iota
	resumeTerminated
)

// breakpointResumeLocked steps the tracee past a hit breakpoint per the
// 6-step protocol:
//  1. GETREGS — the IP sits one byte past the inserted 0xCC.
//  2. Rewind IP to the breakpoint address, SETREGS.
//  3. Disarm the breakpoint.
//  4. SINGLESTEP + Wait; if the child exited, return terminated.
//  5. Re-arm the breakpoint.
//  6. Cont + Wait; terminated -> terminated, stopped -> stopped, else error.
func (t *Tracer) breakpointResumeLocked(bp *Breakpoint) (resumeResult, error) {
	regs, err := t.getRegsLocked()
	if err != nil {
		return 0, err
	}

	setIP(&regs, bp.Addr)
	if err := t.setRegsLocked(&regs); err != nil {
		return 0, err
	}

	if err := t.disarmLocked(bp); err != nil {
		return 0, err
	}

	if err := t.singleStepLocked(); err != nil {
		return 0, err
	}
	if _, err := t.waitLocked(0); err != nil {
		return 0, err
	}
	if t.current == Dead {
		return resumeTerminated, nil
	}

	if err := t.armLocked(bp); err != nil {
		return 0, err
	}

	if err := t.contLocked(); err != nil {
		return 0, err
	}
	if _, err := t.waitLocked(0); err != nil {
		return 0, err
	}

	switch t.current {
	case Dead:
		return resumeTerminated, nil
	case SignalStopped, PtraceStopped:
		return resumeStopped, nil
	default:
		return 0, errorsx.New(errorsx.InvalidState, "breakpoint_resume", "tracee in unexpected state after cont")
	}
}

// Run arms every registered breakpoint, invokes the run callback if set,
// and drives the tracee to completion per spec §4.2: each ptrace-stop is
// checked against IP-1 for a registered breakpoint; a hit dispatches its
// callback and resumes past it, anything else is simply continued again.
// Run returns when the tracee terminates.
func (t *Tracer) Run() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireAttached(); err != nil {
		return err
	}

	t.started = true
	for _, bp := range t.breakpoints {
		if !bp.armed {
			if err := t.armLocked(bp); err != nil {
				return err
			}
		}
	}

	if t.runCallback != nil {
		cb := t.runCallback
		t.mu.Unlock()
		cb(t)
		t.mu.Lock()
	}

	if err := t.contLocked(); err != nil {
		return err
	}
	if _, err := t.waitLocked(0); err != nil {
		return err
	}
	if t.current == Dead {
		logging.Debug("run: tracee exited before any stop", "pid", t.pid)
		return nil
	}

	for {
		if t.current == Dead {
			return nil
		}

		regs, err := t.getRegsLocked()
		if err != nil {
			return err
		}

		bp := t.findBreakpointLocked(getIP(&regs) - 1)
		if bp == nil {
			if err := t.contLocked(); err != nil {
				return err
			}
			if _, err := t.waitLocked(0); err != nil {
				return err
			}
			continue
		}

		t.lastHit = bp
		if bp.Callback != nil {
			cb := bp.Callback
			t.mu.Unlock()
			cb(t, bp)
			t.mu.Lock()
		}

		result, err := t.breakpointResumeLocked(bp)
		if err != nil {
			return err
		}
		if result == resumeTerminated {
			return nil
		}
	}
}

// ClobberAddress overwrites length bytes at addr with NOPs (0x90).
// length/wordSize full words are written directly; a remainder is handled
// by reading one word, clearing its leading length%wordSize bytes to 0x90,
// and writing it back. The stride advances by exactly wordSize per word —
// the published original advances by (i+1)*wordSize, overshooting after
// the first iteration; this implementation does not reproduce that bug.
func (t *Tracer) ClobberAddress(addr uintptr, length int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireStopped(); err != nil {
		return err
	}

	const nopWord = 0x9090909090909090 &
		((1 << (wordSize * 8)) - 1)

	full := length / wordSize
	rem := length % wordSize

	cur := addr
	for i := 0; i < full; i++ {
		if err := t.pokeLocked(cur, nopWord); err != nil {
			return err
		}
		cur += wordSize
	}

	if rem > 0 {
		word, err := t.peekLocked(cur)
		if err != nil {
			return err
		}
		var buf [8]byte
		hostEndian.PutUint64(buf[:], word)
		for i := 0; i < rem; i++ {
			buf[i] = 0x90
		}
		if err := t.pokeLocked(cur, hostEndian.Uint64(buf[:])); err != nil {
			return err
		}
	}

	return nil
}
