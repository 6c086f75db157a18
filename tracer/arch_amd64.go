//go:build amd64

package tracer

import "golang.org/x/sys/unix"

// wordSize is the machine word width used by PEEKTEXT/POKETEXT and by
// ClobberAddress's NOP-filling stride.
const wordSize = 8

const archSupported = true

func getIP(regs *unix.PtraceRegs) uintptr {
	return uintptr(regs.Rip)
}

func setIP(regs *unix.PtraceRegs, val uintptr) {
	regs.Rip = uint64(val)
}
