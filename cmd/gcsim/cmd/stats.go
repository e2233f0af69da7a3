package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	gcode "github.com/leftmike/gcsim"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Summarize a program: moves, path length, and estimated time",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ws, err := openWorkspace(args[0], cfg, logger)
	if err != nil {
		return err
	}
	p := ws.Program()
	st := gcode.Analyze(p, cfg.Machine.RapidRate)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "lines:        %d\n", p.TotalLines)
	fmt.Fprintf(out, "commands:     %d\n", st.Commands)
	for _, k := range []gcode.MotionKind{gcode.RapidMove, gcode.LinearMove,
		gcode.ClockwiseArcMove, gcode.CounterClockwiseArcMove} {
		if st.ByKind[k] > 0 {
			fmt.Fprintf(out, "  %-10s  %d\n", k, st.ByKind[k])
		}
	}
	fmt.Fprintf(out, "rapid length: %.3f mm\n", st.RapidLength)
	fmt.Fprintf(out, "feed length:  %.3f mm\n", st.FeedLength)
	fmt.Fprintf(out, "time:         %s\n", st.EstimatedTime.Round(time.Second))
	if st.NoFeedMoves > 0 {
		fmt.Fprintf(out, "no feed:      %d moves (not timed)\n", st.NoFeedMoves)
	}
	fmt.Fprintf(out, "tools:        %v\n", st.Tools)
	if p.Bounds.Empty() {
		fmt.Fprintln(out, "bounds:       none")
	} else {
		fmt.Fprintf(out, "bounds:       %s - %s\n", formatPosition(p.Bounds.Min),
			formatPosition(p.Bounds.Max))
		fmt.Fprintf(out, "size:         %s\n", formatPosition(p.Bounds.Size()))
	}
	fmt.Fprintf(out, "diagnostics:  %d\n", st.Diagnostics)
	return nil
}
