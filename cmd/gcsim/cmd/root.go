package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leftmike/gcsim/internal/config"
	"github.com/leftmike/gcsim/internal/logging"
	"github.com/leftmike/gcsim/internal/workspace"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "gcsim",
	Short: "Preview and step through NC (G-code) programs",
	Long: `gcsim parses NC programs into a motion model and plays them back
step by step, in the terminal or in a browser.

Files: ` + fmt.Sprint(workspace.Extensions),
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (.toml, .yaml, or .yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, or error (overrides the config)")
}

// setup loads the config and builds the logger; logs go to out.
func setup(out io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		_, err = logging.ParseLevel(logLevel)
		if err != nil {
			return nil, nil, err
		}
		cfg.Log.Level = logLevel
	}

	logger := logging.New(logging.Config{
		Name:   "gcsim",
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	return cfg, logger, nil
}

func openWorkspace(path string, cfg *config.Config, logger *slog.Logger) (*workspace.Workspace,
	error) {

	ws, err := workspace.Open(path, workspace.WithLogger(logger),
		workspace.WithBuildOptions(gcodeStart(cfg)...))
	if err != nil {
		return nil, err
	}
	logger.Debug("open", "path", path, "revision", ws.Revision())
	return ws, nil
}
