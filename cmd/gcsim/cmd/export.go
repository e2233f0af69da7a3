package cmd

import (
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export FILE OUT",
	Short: "Write a program to OUT exactly as it was read (- for stdout)",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ws, err := openWorkspace(args[0], cfg, logger)
	if err != nil {
		return err
	}

	if args[1] == "-" {
		return ws.Export(cmd.OutOrStdout())
	}
	err = ws.Save(args[1])
	if err != nil {
		return err
	}
	logger.Info("export", "from", args[0], "to", args[1], "lines", ws.Program().TotalLines)
	return nil
}
