package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
)

var peekCmd = &cobra.Command{
	Use:   "peek <pid> <addr> [length]",
	Short: "Read bytes from a process's memory",
	Long: `Peek attaches to pid and reads length bytes (default 8) starting at addr,
printed as hex. It prefers /proc/<pid>/mem and falls back to word-at-a-time
PTRACE_PEEKTEXT.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runPeek,
}

func init() {
	rootCmd.AddCommand(peekCmd)
}

func runPeek(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}

	length := 8
	if len(args) == 3 {
		length, err = strconv.Atoi(args[2])
		if err != nil || length <= 0 {
			return fmt.Errorf("invalid length %q", args[2])
		}
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	buf, err := sess.ReadBytes(addr, length)
	if err != nil {
		return err
	}

	fmt.Printf("%#x: %s\n", addr, hex.EncodeToString(buf))
	return nil
}
