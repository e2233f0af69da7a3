package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	gcode "github.com/leftmike/gcsim"
	"github.com/leftmike/gcsim/internal/config"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the motion commands of a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the program as JSON")
	rootCmd.AddCommand(parseCmd)
}

func gcodeStart(cfg *config.Config) []gcode.BuildOption {
	return []gcode.BuildOption{gcode.WithStart(cfg.Start())}
}

type programJSON struct {
	TotalLines  int                   `json:"totalLines"`
	EndLine     int                   `json:"endLine,omitempty"`
	Commands    []gcode.MotionCommand `json:"commands"`
	Bounds      gcode.Box             `json:"bounds"`
	Diagnostics []gcode.Diagnostic    `json:"diagnostics"`
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPosition(pos gcode.Position) string {
	return fmt.Sprintf("%s, %s, %s", formatNumber(pos.X), formatNumber(pos.Y),
		formatNumber(pos.Z))
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ws, err := openWorkspace(args[0], cfg, logger)
	if err != nil {
		return err
	}
	p := ws.Program()
	out := cmd.OutOrStdout()

	if parseJSON {
		pj := programJSON{
			TotalLines:  p.TotalLines,
			EndLine:     p.EndLine,
			Commands:    p.Commands,
			Bounds:      p.Bounds,
			Diagnostics: p.Diagnostics,
		}
		if pj.Commands == nil {
			pj.Commands = []gcode.MotionCommand{}
		}
		if pj.Diagnostics == nil {
			pj.Diagnostics = []gcode.Diagnostic{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pj)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "LINE", "KIND", "START", "END", "F", "S", "T")
	for n, c := range p.Commands {
		spindle := ""
		if c.SpindleOn {
			spindle = formatNumber(c.SpindleSpeed)
		}
		tool := strconv.FormatUint(uint64(c.Tool), 10)
		t.Row(strconv.Itoa(n), strconv.Itoa(c.Line), c.Kind.String(), formatPosition(c.Start),
			formatPosition(c.End), formatNumber(c.Feed), spindle, tool)
	}
	fmt.Fprintln(out, t.Render())

	fmt.Fprintf(out, "%d commands, %d lines", p.Len(), p.TotalLines)
	if p.EndLine > 0 {
		fmt.Fprintf(out, ", ends at line %d", p.EndLine)
	}
	fmt.Fprintln(out)
	for _, d := range p.Diagnostics {
		fmt.Fprintln(out, d)
	}
	return nil
}
