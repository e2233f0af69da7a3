package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leftmike/gcsim/internal/server"
	"github.com/leftmike/gcsim/internal/workspace"
)

var (
	viewAddr  string
	viewWatch bool
)

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Serve the browser viewer for a program",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewAddr, "addr", "", "listen address (overrides the config)")
	viewCmd.Flags().BoolVar(&viewWatch, "watch", false, "reload the program when the file changes")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ws, err := openWorkspace(args[0], cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(ws, server.Options{
		Playback:   cfg.PlaybackOptions(),
		RapidRate:  cfg.Machine.RapidRate,
		Tessellate: cfg.Arcs.Tessellate,
		ArcStep:    cfg.Arcs.Step,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if viewWatch {
		err = ws.Watch(ctx, func(snap workspace.Snapshot) {
			srv.Reload(snap.Program, snap.Revision)
		})
		if err != nil {
			return err
		}
	}

	addr := cfg.Server.Addr
	if viewAddr != "" {
		addr = viewAddr
	}
	return srv.ListenAndServe(ctx, addr)
}

