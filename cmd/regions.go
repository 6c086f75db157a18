package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cquaid/scnm/engine"
	"github.com/cquaid/scnm/region"
)

var (
	regionsPathname string
	regionsBasename string
	regionsRegex    string
)

var regionsCmd = &cobra.Command{
	Use:   "regions <pid>",
	Short: "List a process's read+write memory regions",
	Long: `Regions attaches to pid, parses /proc/<pid>/maps, and prints every
read+write mapping as a table, optionally narrowed by --pathname, --basename,
or --regex.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().StringVar(&regionsPathname, "pathname", "", "keep only regions with this exact pathname")
	regionsCmd.Flags().StringVar(&regionsBasename, "basename", "", "keep only regions whose basename matches")
	regionsCmd.Flags().StringVar(&regionsRegex, "regex", "", "keep only regions whose pathname matches this POSIX regex")
}

func runRegions(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	set, err := sess.DiscoverRegions()
	if err != nil {
		return err
	}

	filtered, err := applyRegionFilter(set, regionsPathname, regionsBasename, regionsRegex)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTART\tEND\tPERMS\tPATHNAME")
	for _, r := range filtered.All() {
		fmt.Fprintf(w, "%d\t%#x\t%#x\t%s\t%s\n", r.ID, r.Start, r.End, permString(r.Perms), r.Pathname)
	}
	return w.Flush()
}

func permString(p region.Perms) string {
	b := []byte("----")
	if p.Read {
		b[0] = 'r'
	}
	if p.Write {
		b[1] = 'w'
	}
	if p.Exec {
		b[2] = 'x'
	}
	switch {
	case p.Private:
		b[3] = 'p'
	case p.Shared:
		b[3] = 's'
	}
	return string(b)
}
