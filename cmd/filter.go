package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
	"github.com/cquaid/scnm/match"
	"github.com/cquaid/scnm/tracer"
)

var (
	filterMatchesFile string
	filterLower       string
	filterUpper       string
	filterBound       string
)

var filterCmd = &cobra.Command{
	Use:   "filter <pid> <eq|ne|lt|le|gt|ge|range|changed|unchanged|increased|decreased> [value]",
	Short: "Re-read a saved match list and retain the candidates matching a predicate",
	Long: `Filter attaches to pid, loads the match list saved by a previous search or
filter command, re-reads every candidate's current value, keeps only those
satisfying the predicate, and saves the narrowed list back to --matches-file.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringVar(&filterMatchesFile, "matches-file", "matches.json", "path to load/save the match list")
	filterCmd.Flags().StringVar(&filterLower, "lower", "", "lower bound needle for range filter")
	filterCmd.Flags().StringVar(&filterUpper, "upper", "", "upper bound needle for range filter")
	filterCmd.Flags().StringVar(&filterBound, "bound", "ge_le", "range bound kind: gt_lt, ge_lt, gt_le, ge_le")
}

func runFilter(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	op := args[1]

	list, err := loadMatches(filterMatchesFile)
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	t := sess.Tracer()

	switch op {
	case "changed":
		err = match.MatchChanged(t, pid, list)
	case "unchanged":
		err = match.MatchUnchanged(t, pid, list)
	case "increased":
		err = match.MatchIncreased(t, pid, list)
	case "decreased":
		err = match.MatchDecreased(t, pid, list)
	case "range":
		lower, perr := match.ParseNeedle(filterLower)
		if perr != nil {
			return perr
		}
		upper, perr := match.ParseNeedle(filterUpper)
		if perr != nil {
			return perr
		}
		bound, perr := parseBoundFlags(filterBound)
		if perr != nil {
			return perr
		}
		err = match.MatchRange(t, pid, list, lower, upper, bound)
	default:
		if len(args) < 3 {
			return fmt.Errorf("%s requires a value argument", op)
		}
		var needle match.Needle
		needle, err = match.ParseNeedle(args[2])
		if err != nil {
			return err
		}
		fn, ferr := filterEntryPoint(op)
		if ferr != nil {
			return ferr
		}
		err = fn(t, pid, list, needle)
	}
	if err != nil {
		return err
	}

	if err := saveMatches(filterMatchesFile, list); err != nil {
		return err
	}
	fmt.Printf("%d candidates remain, saved to %s\n", list.Len(), filterMatchesFile)
	return nil
}

func filterEntryPoint(op string) (func(*tracer.Tracer, int, *match.List, match.Needle) error, error) {
	switch op {
	case "eq":
		return match.MatchEq, nil
	case "ne":
		return match.MatchNe, nil
	case "lt":
		return match.MatchLt, nil
	case "le":
		return match.MatchLe, nil
	case "gt":
		return match.MatchGt, nil
	case "ge":
		return match.MatchGe, nil
	default:
		return nil, fmt.Errorf("unknown filter op %q", op)
	}
}
