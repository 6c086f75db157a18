package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cquaid/scnm/engine"
	"github.com/cquaid/scnm/region"
)

var (
	watchInterval time.Duration
	watchPathname string
	watchBasename string
	watchRegex    string
)

var watchCmd = &cobra.Command{
	Use:   "watch <pid>",
	Short: "Live-refresh view of a tracee's regions and session match count",
	Long: `Watch attaches to pid and redraws a region summary every interval, or on
demand. While the terminal is a tty it is put into raw mode so a single
keypress drives the loop: space rescans immediately, q quits. The match
count shown is that of this invocation's own session; the match list saved
by search and filter is not loaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "refresh period")
	watchCmd.Flags().StringVar(&watchPathname, "pathname", "", "restrict the view to regions with this exact pathname")
	watchCmd.Flags().StringVar(&watchBasename, "basename", "", "restrict the view to regions whose basename matches")
	watchCmd.Flags().StringVar(&watchRegex, "regex", "", "restrict the view to regions whose pathname matches this POSIX regex")
}

func runWatch(cmd *cobra.Command, args []string) error {
	pid, err := parsePid(args[0])
	if err != nil {
		return err
	}

	sess, err := engine.Attach(GetContext(), pid)
	if err != nil {
		return err
	}
	defer sess.Detach()

	fd := int(os.Stdin.Fd())
	isTTY := term.IsTerminal(fd)

	var oldState *term.State
	if isTTY {
		oldState, err = term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, oldState)
	}

	keys := make(chan byte, 1)
	if isTTY {
		go func() {
			buf := make([]byte, 1)
			for {
				n, err := os.Stdin.Read(buf)
				if err != nil || n == 0 {
					close(keys)
					return
				}
				keys <- buf[0]
			}
		}()
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	ctx := GetContext()

	redraw := func() error {
		set, err := sess.DiscoverRegions()
		if err != nil {
			return err
		}
		regions, err := applyRegionFilter(set, watchPathname, watchBasename, watchRegex)
		if err != nil {
			return err
		}
		drawScreen(pid, regions, sess.Matches().Len())
		return nil
	}

	if err := redraw(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := redraw(); err != nil {
				return err
			}
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			switch k {
			case 'q', 'Q', 3: // ^C
				return nil
			case ' ':
				if err := redraw(); err != nil {
					return err
				}
			}
		}
	}
}

func drawScreen(pid int, regions *region.Set, matchCount int) {
	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		cols, rows = w, h
	}

	fmt.Print("\x1b[2J\x1b[H")
	fmt.Printf("pid %d  regions=%d  matches=%d  (%dx%d, space=rescan q=quit)\r\n",
		pid, regions.Len(), matchCount, cols, rows)

	max := rows - 3
	if max < 0 {
		max = 0
	}
	shown := 0
	for _, r := range regions.All() {
		if shown >= max {
			fmt.Printf("... %d more\r\n", regions.Len()-shown)
			break
		}
		fmt.Printf("%#016x-%#016x %s %s\r\n", r.Start, r.End, permString(r.Perms), r.Pathname)
		shown++
	}
}
