// scnm is a live process memory scanner in the spirit of scanmem/Cheat
// Engine: it attaches to a running process via ptrace, enumerates its
// mapped regions from /proc/<pid>/maps, and searches/filters candidate
// addresses by value across separate invocations.
//
// Commands:
//
//	attach     - Attach to a pid and report its state
//	detach     - Force-detach a pid stuck in ptrace-stop
//	regions    - List a pid's mapped memory regions
//	search     - Scan memory for a needle, building a match list
//	filter     - Narrow a saved match list by re-reading candidate values
//	peek       - Read bytes from a pid's memory
//	poke       - Write bytes into a pid's memory
//	breakpoint - Arm a software breakpoint and run to completion
//	run        - Resume a tracee to completion with no breakpoints
//	watch      - Live-refresh view of a pid's regions and match count
package main

import (
	"fmt"
	"os"

	"github.com/cquaid/scnm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
