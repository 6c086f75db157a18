package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
)

var attachCmd = &cobra.Command{
	Use:   "attach <pid>",
	Short: "Attach to a process and report its tracee state",
	Long: `Attach issues PTRACE_ATTACH against the target pid and blocks until the
resulting stop is observed, then detaches again. Use it to confirm a process
can be traced before running search/filter/breakpoint commands against it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	fmt.Printf("attached to pid %d, state=%s\n", pid, sess.Tracer().State())
	return nil
}
