package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leftmike/gcsim/internal/tui"
	"github.com/leftmike/gcsim/internal/workspace"
	"github.com/leftmike/gcsim/playback"
)

var (
	playWatch   bool
	playLogFile string
)

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Play a program in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playWatch, "watch", false, "reload the program when the file changes")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "",
		"write logs to this file; logs are dropped otherwise")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	var logOut io.Writer = io.Discard
	if playLogFile != "" {
		f, err := os.OpenFile(playLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	cfg, logger, err := setup(logOut)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(args[0], cfg, logger)
	if err != nil {
		return err
	}

	opts := append(cfg.PlaybackOptions(), playback.WithLogger(logger))
	ctrl := playback.New(opts...)
	m := tui.New(ws, ctrl, tui.Options{
		Tessellate: cfg.Arcs.Tessellate,
		ArcStep:    cfg.Arcs.Step,
		Logger:     logger,
	})
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if playWatch {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		err = ws.Watch(ctx, func(snap workspace.Snapshot) {
			prog.Send(tui.ReloadMsg(snap))
		})
		if err != nil {
			return err
		}
	}

	_, err = prog.Run()
	return err
}
