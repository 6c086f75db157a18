// Package tracer implements the ptrace-based tracee control subsystem: the
// process state machine, breakpoint arm/disarm/resume protocol, and the
// run loop that drives a traced peer process to completion.
package tracer

// ProcessState is the state of a traced process as observed through
// waitpid(2). Only SignalStopped may be resumed with SIGCONT; only
// PtraceStopped may be resumed with PTRACE_CONT. Confusing the two is a
// bug: the kernel's behavior when PTRACE_CONT is issued against a
// signal-stopped tracee is not what a caller expects.
type ProcessState int

const (
	// Dead is terminal. Once set, further ptrace operations must fail
	// fast with TraceeGone rather than retry against a zombie.
	Dead ProcessState = iota
	// Detached means PTRACE_DETACH has been issued; only a fresh Attach
	// is valid from here.
	Detached
	// Running means the tracee has been resumed and has not yet been
	// observed to stop or exit.
	Running
	// SignalStopped means waitpid reported WIFSTOPPED with SIGSTOP.
	// Resumable only via SIGCONT.
	SignalStopped
	// PtraceStopped means waitpid reported WIFSTOPPED with any signal
	// other than SIGSTOP (including SIGTRAP from a breakpoint, a
	// PTRACE_SINGLESTEP/SYSCALL stop, or a PTRACE_EVENT_* high bit).
	// Resumable only via PTRACE_CONT.
	PtraceStopped
)

// String returns a human-readable name for the state.
func (s ProcessState) String() string {
	switch s {
	case Dead:
		return "dead"
	case Detached:
		return "detached"
	case Running:
		return "running"
	case SignalStopped:
		return "signal-stopped"
	case PtraceStopped:
		return "ptrace-stopped"
	default:
		return "unknown"
	}
}
