package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
)

var runCmd = &cobra.Command{
	Use:   "run <pid>",
	Short: "Attach to a tracee and let it run to completion",
	Long: `Run attaches to pid, arms no breakpoints, and resumes the tracee with
Run until it terminates or the tracer loses it. Use it to release a process
that was left stopped by a previous attach/breakpoint invocation.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}

	if err := sess.Tracer().Run(); err != nil {
		return err
	}

	fmt.Printf("pid %d terminated, state=%s\n", pid, sess.Tracer().State())
	return nil
}
