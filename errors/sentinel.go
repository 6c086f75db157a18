// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Tracer lifecycle errors.
var (
	// ErrNotAttached indicates an operation requires an attached tracee.
	ErrNotAttached = &EngineError{
		Kind:   NotAttached,
		Detail: "no tracee attached",
	}

	// ErrAlreadyAttached indicates an attach was attempted on a tracer that
	// already owns a tracee.
	ErrAlreadyAttached = &EngineError{
		Kind:   InvalidState,
		Detail: "tracer already attached",
	}

	// ErrTraceeNotStopped indicates a memory read/write or register access
	// was attempted while the tracee was not in a stopped state.
	ErrTraceeNotStopped = &EngineError{
		Kind:   InvalidState,
		Detail: "tracee is not stopped",
	}

	// ErrTraceeDead indicates an operation was attempted against a tracee
	// whose state has already transitioned to Dead.
	ErrTraceeDead = &EngineError{
		Kind:   TraceeGone,
		Detail: "tracee is dead",
	}

	// ErrWrongResume indicates PTRACE_CONT was attempted on a signal-stopped
	// tracee, or SIGCONT on a ptrace-stopped one.
	ErrWrongResume = &EngineError{
		Kind:   InvalidState,
		Detail: "wrong resume primitive for current process state",
	}
)

// Breakpoint errors.
var (
	// ErrBreakpointExists indicates a breakpoint already exists at the
	// requested address.
	ErrBreakpointExists = &EngineError{
		Kind:   InvalidState,
		Detail: "breakpoint already set at this address",
	}

	// ErrBreakpointNotFound indicates no breakpoint is registered at the
	// requested address.
	ErrBreakpointNotFound = &EngineError{
		Kind:   InvalidState,
		Detail: "no breakpoint at this address",
	}

	// ErrUnsupportedArch indicates breakpoint or register support was
	// requested on an architecture this engine does not implement.
	ErrUnsupportedArch = &EngineError{
		Kind:   Unsupported,
		Detail: "unsupported architecture",
	}
)

// Region errors.
var (
	// ErrRegionNotFound indicates no region matched the requested id or
	// address.
	ErrRegionNotFound = &EngineError{
		Kind:   IoFailed,
		Detail: "region not found",
	}

	// ErrMapsUnreadable indicates /proc/<pid>/maps could not be opened.
	ErrMapsUnreadable = &EngineError{
		Kind:   IoFailed,
		Detail: "/proc/<pid>/maps not readable",
	}

	// ErrMalformedMaps indicates a /proc/<pid>/maps line did not match the
	// expected format.
	ErrMalformedMaps = &EngineError{
		Kind:   IoFailed,
		Detail: "malformed /proc/<pid>/maps line",
	}
)

// Match/needle errors.
var (
	// ErrInvalidNeedle indicates an ASCII value could not be parsed as an
	// integer or a floating point needle.
	ErrInvalidNeedle = &EngineError{
		Kind:   InvalidNeedle,
		Detail: "value is not a valid integer or floating point needle",
	}

	// ErrNeedleUnsupported indicates a byte-array or string needle was
	// requested; these are reserved for future work.
	ErrNeedleUnsupported = &EngineError{
		Kind:   Unsupported,
		Detail: "byte-array/string needles are not supported",
	}

	// ErrChunkAllocFailed indicates chunk allocation failed during a search.
	ErrChunkAllocFailed = &EngineError{
		Kind:   OutOfMemory,
		Detail: "failed to allocate match chunk",
	}
)

// Memory backend errors.
var (
	// ErrProcMemUnreadable indicates /proc/<pid>/mem could not be opened for
	// the requested access mode.
	ErrProcMemUnreadable = &EngineError{
		Kind:   IoFailed,
		Detail: "/proc/<pid>/mem not accessible",
	}

	// ErrShortRead indicates a read backend could not fill a full window
	// before reaching EOF.
	ErrShortRead = &EngineError{
		Kind:   IoFailed,
		Detail: "short read from tracee memory",
	}
)
