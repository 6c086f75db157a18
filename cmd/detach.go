package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"golang.org/x/sys/unix"
)

var detachCmd = &cobra.Command{
	Use:   "detach <pid>",
	Short: "Force-detach a process stuck under ptrace control",
	Long: `Detach issues PTRACE_DETACH directly against the target pid, without first
attaching through this process. It exists to free a tracee left ptrace-stopped
by a crashed or killed scnm invocation — the kernel otherwise keeps that
process halted until its tracer exits or re-attaches.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetach,
}

func init() {
	rootCmd.AddCommand(detachCmd)
}

func runDetach(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}

	if err := unix.PtraceDetach(pid); err != nil {
		return fmt.Errorf("detach pid %d: %w", pid, err)
	}

	fmt.Printf("detached pid %d\n", pid)
	return nil
}
