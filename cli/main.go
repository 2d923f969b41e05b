package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/colorprop/core/config"
)

var version = "dev"

// globals holds the persistent flags and what PersistentPreRunE derives
// from them.
type globals struct {
	configPath string
	debug      bool
	noColor    bool

	cfg    config.Config
	logger *slog.Logger
}

func main() {
	g := &globals{}
	rootCmd := newRootCmd(g)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		FormatError(os.Stderr, err, ShouldUseColor(g.noColor))
		os.Exit(1)
	}
}

func newRootCmd(g *globals) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "colorprop [command]",
		Short:         "Compile Less color variables into themeable CSS custom properties",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.logger = newLogger(cmd.ErrOrStderr(), g.debug || cfg.Debug || os.Getenv("COLORPROP_DEBUG") != "")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newCompileCmd(g),
		newWatchCmd(g),
		newManifestCmd(g),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the colorprop version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "colorprop "+version+"\n")
			return err
		},
	}
}

// newLogger builds the stderr logger. Skipped declarations are already
// printed as warnings, so without debug only errors are logged. Time and
// level are dropped so debug output reads like a trace.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey) {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// readInput reads a stylesheet, "-" meaning stdin.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &CLIError{
				Type:    "io",
				Message: "stylesheet not found: " + path,
				Hint:    "check the path or pass - to read from stdin",
			}
		}
		return nil, err
	}
	return data, nil
}
