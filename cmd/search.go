package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
	"github.com/cquaid/scnm/match"
	"github.com/cquaid/scnm/region"
	"github.com/cquaid/scnm/tracer"
)

var (
	searchAligned     bool
	searchMatchesFile string
	searchPathname    string
	searchBasename    string
	searchRegex       string
	searchLower       string
	searchUpper       string
	searchBound       string
)

var searchCmd = &cobra.Command{
	Use:   "search <pid> <eq|ne|lt|le|gt|ge|range> [value]",
	Short: "Scan a process's memory for a needle, building a match list",
	Long: `Search attaches to pid, discovers its read+write regions, sweeps them for
candidates matching the given predicate and needle, and saves the resulting
match list to --matches-file for later filter/peek/poke commands.

For "range", pass --lower, --upper, and --bound instead of a positional value.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchAligned, "aligned", false, "scan at machine-word stride instead of byte stride")
	searchCmd.Flags().StringVar(&searchMatchesFile, "matches-file", "matches.json", "path to save the resulting match list")
	searchCmd.Flags().StringVar(&searchPathname, "pathname", "", "restrict the scan to regions with this exact pathname")
	searchCmd.Flags().StringVar(&searchBasename, "basename", "", "restrict the scan to regions whose basename matches")
	searchCmd.Flags().StringVar(&searchRegex, "regex", "", "restrict the scan to regions whose pathname matches this POSIX regex")
	searchCmd.Flags().StringVar(&searchLower, "lower", "", "lower bound needle for range search")
	searchCmd.Flags().StringVar(&searchUpper, "upper", "", "upper bound needle for range search")
	searchCmd.Flags().StringVar(&searchBound, "bound", "ge_le", "range bound kind: gt_lt, ge_lt, gt_le, ge_le")
}

func runSearch(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}
	op := args[1]

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	set, err := sess.DiscoverRegions()
	if err != nil {
		return err
	}
	regions, err := applyRegionFilter(set, searchPathname, searchBasename, searchRegex)
	if err != nil {
		return err
	}

	opts := match.SearchOptions{Aligned: searchAligned}

	if op == "range" {
		lower, err := match.ParseNeedle(searchLower)
		if err != nil {
			return err
		}
		upper, err := match.ParseNeedle(searchUpper)
		if err != nil {
			return err
		}
		bound, err := parseBoundFlags(searchBound)
		if err != nil {
			return err
		}

		list := match.NewList()
		if err := match.SearchRange(sess.Tracer(), pid, list, lower, upper, bound, regions, opts); err != nil {
			return err
		}
		return finishSearch(list)
	}

	if len(args) < 3 {
		return fmt.Errorf("%s requires a value argument", op)
	}
	needle, err := match.ParseNeedle(args[2])
	if err != nil {
		return err
	}

	searchFn, err := searchEntryPoint(op)
	if err != nil {
		return err
	}

	list := match.NewList()
	if err := searchFn(sess.Tracer(), pid, list, needle, regions, opts); err != nil {
		return err
	}
	return finishSearch(list)
}

func finishSearch(list *match.List) error {
	if err := saveMatches(searchMatchesFile, list); err != nil {
		return err
	}
	fmt.Printf("%d candidates found, saved to %s\n", list.Len(), searchMatchesFile)
	return nil
}

func searchEntryPoint(op string) (func(*tracer.Tracer, int, *match.List, match.Needle, *region.Set, match.SearchOptions) error, error) {
	switch op {
	case "eq":
		return match.SearchEq, nil
	case "ne":
		return match.SearchNe, nil
	case "lt":
		return match.SearchLt, nil
	case "le":
		return match.SearchLe, nil
	case "gt":
		return match.SearchGt, nil
	case "ge":
		return match.SearchGe, nil
	default:
		return nil, fmt.Errorf("unknown search op %q", op)
	}
}
