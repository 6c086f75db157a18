//go:build 386

package tracer

import "golang.org/x/sys/unix"

// wordSize is the machine word width used by PEEKTEXT/POKETEXT and by
// ClobberAddress's NOP-filling stride.
const wordSize = 4

const archSupported = true

func getIP(regs *unix.PtraceRegs) uintptr {
	return uintptr(uint32(regs.Eip))
}

func setIP(regs *unix.PtraceRegs, val uintptr) {
	regs.Eip = int32(uint32(val))
}
