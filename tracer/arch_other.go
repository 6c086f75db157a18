//go:build !amd64 && !386

package tracer

import "golang.org/x/sys/unix"

// wordSize is unused on unsupported architectures; breakpoint operations
// fail fast with Unsupported before any code here is reached.
const wordSize = 8

const archSupported = false

func getIP(regs *unix.PtraceRegs) uintptr {
	return 0
}

func setIP(regs *unix.PtraceRegs, val uintptr) {
}
