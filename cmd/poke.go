package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
)

var pokeCmd = &cobra.Command{
	Use:   "poke <pid> <addr> <hex-bytes>",
	Short: "Write bytes into a process's memory",
	Long: `Poke attaches to pid and writes the given hex-encoded bytes at addr. It
prefers /proc/<pid>/mem and falls back to read-modify-write PTRACE_POKETEXT.`,
	Args: cobra.ExactArgs(3),
	RunE: runPoke,
}

func init() {
	rootCmd.AddCommand(pokeCmd)
}

func runPoke(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	addr, err := parseAddr(args[1])
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(args[2])
	if err != nil {
		return fmt.Errorf("invalid hex bytes %q: %w", args[2], err)
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	if err := sess.WriteBytes(addr, data); err != nil {
		return err
	}

	fmt.Printf("wrote %d bytes at %#x\n", len(data), addr)
	return nil
}
