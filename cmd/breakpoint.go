package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
	"github.com/cquaid/scnm/tracer"
)

var breakpointCmd = &cobra.Command{
	Use:   "breakpoint <pid> <addr>",
	Short: "Set a software breakpoint and run the tracee to completion",
	Long: `Breakpoint attaches to pid, arms a software breakpoint at addr, then drives
the tracee with Run: every hit is counted and logged, and execution resumes
automatically past it. The command returns once the tracee terminates.`,
	Args: cobra.ExactArgs(2),
	RunE: runBreakpoint,
}

func init() {
	rootCmd.AddCommand(breakpointCmd)
}

func runBreakpoint(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}

	hits := 0
	_, err = sess.Tracer().SetBreakpoint(addr, func(t *tracer.Tracer, bp *tracer.Breakpoint) {
		hits++
		fmt.Printf("hit #%d at %#x\n", hits, bp.Addr)
	})
	if err != nil {
		sess.Detach()
		return err
	}

	if err := sess.Tracer().Run(); err != nil {
		return err
	}

	fmt.Printf("tracee terminated after %d breakpoint hits\n", hits)
	return nil
}
