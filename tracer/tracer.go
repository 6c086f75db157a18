package tracer

import (
	"context"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	errorsx "github.com/cquaid/scnm/errors"
	"github.com/cquaid/scnm/logging"
)

// FPRegs mirrors the x86 user_fpregs_struct (512-byte FXSAVE area). It is
// opaque to callers beyond save/restore; the engine never interprets its
// contents.
type FPRegs struct {
	Data [512]byte
}

// Breakpoint is a software breakpoint: the original byte of the
// instruction at Addr has been overwritten with 0xCC (int3).
type Breakpoint struct {
	Addr     uintptr
	origWord uint64
	armed    bool
	Callback func(t *Tracer, bp *Breakpoint)
}

// Tracer owns the ptrace state machine for one tracee: its process state,
// the last raw wait status, registered breakpoints, and cached register
// snapshots. It is not safe for concurrent use by more than one goroutine
// at a time (the spec's concurrency model is single-threaded cooperative).
type Tracer struct {
	mu sync.Mutex

	pid              int
	started          bool
	current          ProcessState
	expectedNext     ProcessState
	lastStatus       unix.WaitStatus
	breakpoints      []*Breakpoint
	lastHit          *Breakpoint
	runCallback      func(*Tracer)
	cachedRegs       *unix.PtraceRegs
	cachedFPRegs     *FPRegs
}

// New creates a Tracer for the given target pid. It performs no syscalls;
// call Attach to actually start tracing.
func New(ctx context.Context, pid int) (*Tracer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return &Tracer{
		pid:     pid,
		current: Detached,
	}, nil
}

// Pid returns the target process id.
func (t *Tracer) Pid() int { return t.pid }

// State returns the tracer's current observed ProcessState.
func (t *Tracer) State() ProcessState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// LastBreakpointHit returns the breakpoint most recently reported by Run,
// or nil if none has fired yet.
func (t *Tracer) LastBreakpointHit() *Breakpoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastHit
}

// SetRunCallback registers a callback invoked once at the top of Run,
// before the tracee is first continued.
func (t *Tracer) SetRunCallback(cb func(*Tracer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runCallback = cb
}

func (t *Tracer) markDeadIfESRCH(err error) {
	if err == unix.ESRCH {
		t.current = Dead
	}
}

// Attach issues PTRACE_ATTACH against the target pid.
func (t *Tracer) Attach() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != Detached && t.current != Dead {
		return errorsx.WrapWithPid(nil, errorsx.InvalidState, "attach", t.pid)
	}

	if err := unix.PtraceAttach(t.pid); err != nil {
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "attach", t.pid)
	}
	t.expectedNext = PtraceStopped
	logging.Debug("attached to tracee", "pid", t.pid)
	return nil
}

// AttachWait issues Attach followed by a blocking Wait.
func (t *Tracer) AttachWait() error {
	if err := t.Attach(); err != nil {
		return err
	}
	_, err := t.Wait(0)
	return err
}

// Detach unconditionally transitions to Detached and issues PTRACE_DETACH.
// Post-detach, any operation other than a fresh Attach fails with
// NotAttached.
func (t *Tracer) Detach() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = Detached
	if err := unix.PtraceDetach(t.pid); err != nil {
		if err == unix.ESRCH {
			return nil
		}
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "detach", t.pid)
	}
	return nil
}

func (t *Tracer) requireAttached() error {
	if t.current == Dead {
		return errorsx.ErrTraceeDead
	}
	if t.current == Detached {
		return errorsx.ErrNotAttached
	}
	return nil
}

func (t *Tracer) requireStopped() error {
	if err := t.requireAttached(); err != nil {
		return err
	}
	if t.current != SignalStopped && t.current != PtraceStopped {
		return errorsx.ErrTraceeNotStopped
	}
	return nil
}

// Wait issues waitpid(2) with the given options and classifies the
// resulting status into current_state per spec §4.1:
//
//	WIFEXITED || WIFSIGNALED  -> Dead
//	WIFSTOPPED && SIGSTOP     -> SignalStopped
//	WIFSTOPPED otherwise      -> PtraceStopped
//
// Returns a WaitFailed error on syscall failure, a zero status with the
// state left unchanged when WNOHANG yielded no state change, and the raw
// wait status otherwise.
func (t *Tracer) Wait(options int) (unix.WaitStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.waitLocked(options)
}

func (t *Tracer) waitLocked(options int) (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(t.pid, &ws, options, nil)
	if err != nil {
		if err == unix.ESRCH {
			t.current = Dead
		}
		return ws, errorsx.WrapWithPid(err, errorsx.WaitFailed, "waitpid", t.pid)
	}
	if wpid == 0 {
		// WNOHANG and the tracee has not changed state.
		return ws, nil
	}

	t.lastStatus = ws

	switch {
	case ws.Exited() || ws.Signaled():
		t.current = Dead
	case ws.Stopped() && ws.StopSignal() == unix.SIGSTOP:
		t.current = SignalStopped
	case ws.Stopped():
		t.current = PtraceStopped
	default:
		t.current = Running
	}

	return ws, nil
}

// Cont is polymorphic on current_state per spec §4.1: SignalStopped
// tracees are resumed with SIGCONT, everything else with PTRACE_CONT.
// Issuing PTRACE_CONT against a SignalStopped tracee is rejected rather
// than handed to the kernel, since its behavior there is undefined.
func (t *Tracer) Cont() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contLocked()
}

func (t *Tracer) contLocked() error {
	if err := t.requireStopped(); err != nil {
		return err
	}

	if t.current == SignalStopped {
		if err := unix.Kill(t.pid, unix.SIGCONT); err != nil {
			t.markDeadIfESRCH(err)
			return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "cont(sigcont)", t.pid)
		}
	} else {
		if err := unix.PtraceCont(t.pid, 0); err != nil {
			t.markDeadIfESRCH(err)
			return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "cont(ptrace)", t.pid)
		}
	}

	t.current = Running
	t.expectedNext = PtraceStopped
	return nil
}

// ContWait issues Cont followed by a blocking Wait.
func (t *Tracer) ContWait() (unix.WaitStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.contLocked(); err != nil {
		var ws unix.WaitStatus
		return ws, err
	}
	return t.waitLocked(0)
}

// Stop delivers SIGSTOP to the tracee. ptrace exposes no tracer-initiated
// stop, so this is the only way to halt a Running tracee from outside.
func (t *Tracer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireAttached(); err != nil {
		return err
	}
	if err := unix.Kill(t.pid, unix.SIGSTOP); err != nil {
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "stop", t.pid)
	}
	t.expectedNext = SignalStopped
	return nil
}

// StopWait issues Stop followed by a blocking Wait.
func (t *Tracer) StopWait() (unix.WaitStatus, error) {
	if err := t.Stop(); err != nil {
		var ws unix.WaitStatus
		return ws, err
	}
	return t.Wait(0)
}

// SingleStep issues PTRACE_SINGLESTEP. The tracee must be ptrace-stopped.
func (t *Tracer) SingleStep() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.singleStepLocked()
}

func (t *Tracer) singleStepLocked() error {
	if err := t.requireStopped(); err != nil {
		return err
	}
	if err := unix.PtraceSingleStep(t.pid); err != nil {
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "singlestep", t.pid)
	}
	t.current = Running
	t.expectedNext = PtraceStopped
	return nil
}

// SingleStepWait issues SingleStep followed by a blocking Wait.
func (t *Tracer) SingleStepWait() (unix.WaitStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.singleStepLocked(); err != nil {
		var ws unix.WaitStatus
		return ws, err
	}
	return t.waitLocked(0)
}

// Syscall issues PTRACE_SYSCALL, stopping the tracee at the next syscall
// entry or exit.
func (t *Tracer) Syscall() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.syscallLocked()
}

func (t *Tracer) syscallLocked() error {
	if err := t.requireStopped(); err != nil {
		return err
	}
	if err := unix.PtraceSyscall(t.pid, 0); err != nil {
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "syscall", t.pid)
	}
	t.current = Running
	t.expectedNext = PtraceStopped
	return nil
}

// SyscallWait issues Syscall followed by a blocking Wait.
func (t *Tracer) SyscallWait() (unix.WaitStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.syscallLocked(); err != nil {
		var ws unix.WaitStatus
		return ws, err
	}
	return t.waitLocked(0)
}

// Peek reads one machine word at addr via PTRACE_PEEKTEXT.
func (t *Tracer) Peek(addr uintptr) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peekLocked(addr)
}

func (t *Tracer) peekLocked(addr uintptr) (uint64, error) {
	if err := t.requireStopped(); err != nil {
		return 0, err
	}
	var buf [8]byte
	n, err := unix.PtracePeekText(t.pid, addr, buf[:])
	if err != nil || n != len(buf) {
		if err == nil {
			err = errorsx.ErrShortRead
		}
		t.markDeadIfESRCH(err)
		return 0, errorsx.WrapWithPid(err, errorsx.PtraceFailed, "peek", t.pid)
	}
	return hostEndian.Uint64(buf[:]), nil
}

// Poke writes one machine word at addr via PTRACE_POKETEXT.
func (t *Tracer) Poke(addr uintptr, val uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pokeLocked(addr, val)
}

func (t *Tracer) pokeLocked(addr uintptr, val uint64) error {
	if err := t.requireStopped(); err != nil {
		return err
	}
	var buf [8]byte
	hostEndian.PutUint64(buf[:], val)
	n, err := unix.PtracePokeText(t.pid, addr, buf[:])
	if err != nil || n != len(buf) {
		if err == nil {
			err = errorsx.ErrShortRead
		}
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "poke", t.pid)
	}
	return nil
}

// GetRegs issues PTRACE_GETREGS.
func (t *Tracer) GetRegs() (unix.PtraceRegs, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getRegsLocked()
}

func (t *Tracer) getRegsLocked() (unix.PtraceRegs, error) {
	var regs unix.PtraceRegs
	if err := t.requireStopped(); err != nil {
		return regs, err
	}
	if err := unix.PtraceGetRegs(t.pid, &regs); err != nil {
		t.markDeadIfESRCH(err)
		return regs, errorsx.WrapWithPid(err, errorsx.PtraceFailed, "getregs", t.pid)
	}
	return regs, nil
}

// SetRegs issues PTRACE_SETREGS.
func (t *Tracer) SetRegs(regs *unix.PtraceRegs) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setRegsLocked(regs)
}

func (t *Tracer) setRegsLocked(regs *unix.PtraceRegs) error {
	if err := t.requireStopped(); err != nil {
		return err
	}
	if err := unix.PtraceSetRegs(t.pid, regs); err != nil {
		t.markDeadIfESRCH(err)
		return errorsx.WrapWithPid(err, errorsx.PtraceFailed, "setregs", t.pid)
	}
	return nil
}

// GetFPRegs issues PTRACE_GETFPREGS via a raw ptrace(2) call; the x86
// FXSAVE layout has no typed wrapper in golang.org/x/sys/unix.
func (t *Tracer) GetFPRegs() (FPRegs, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var fp FPRegs
	if err := t.requireStopped(); err != nil {
		return fp, err
	}
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_GETFPREGS,
		uintptr(t.pid), 0, uintptr(unsafe.Pointer(&fp.Data)), 0, 0)
	if errno != 0 {
		t.markDeadIfESRCH(errno)
		return fp, errorsx.WrapWithPid(errno, errorsx.PtraceFailed, "getfpregs", t.pid)
	}
	return fp, nil
}

// SetFPRegs issues PTRACE_SETFPREGS via a raw ptrace(2) call.
func (t *Tracer) SetFPRegs(fp *FPRegs) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.requireStopped(); err != nil {
		return err
	}
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, unix.PTRACE_SETFPREGS,
		uintptr(t.pid), 0, uintptr(unsafe.Pointer(&fp.Data)), 0, 0)
	if errno != 0 {
		t.markDeadIfESRCH(errno)
		return errorsx.WrapWithPid(errno, errorsx.PtraceFailed, "setfpregs", t.pid)
	}
	return nil
}
