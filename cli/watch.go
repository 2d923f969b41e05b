package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// settle coalesces the burst of events editors produce on save.
const settle = 50 * time.Millisecond

func newWatchCmd(g *globals) *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "watch <file...>",
		Short: "Recompile stylesheets whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := flags.resolve(cmd, g)
			if err := f.check(args); err != nil {
				return err
			}
			for _, in := range args {
				if in == "-" {
					return &CLIError{Type: "usage", Message: "watch needs files, not stdin"}
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd, g, f, args)
		},
	}
	flags.register(cmd)
	return cmd
}

// watch compiles every input once, then again on each write until ctx is
// done. Directories are watched rather than files so that editors which
// replace the file on save keep triggering.
func watch(ctx context.Context, cmd *cobra.Command, g *globals, f compileFlags, inputs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	tracked := make(map[string]string, len(inputs)) // cleaned path -> argument
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		tracked[abs] = in
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	build := func(in string) {
		if err := compileOne(ctx, cmd, g, f, in, len(inputs) > 1); err != nil {
			FormatError(cmd.ErrOrStderr(), err, ShouldUseColor(g.noColor))
		}
	}
	for _, in := range inputs {
		build(in)
	}
	g.logger.Info("watching", "files", len(inputs), "dirs", len(dirs))

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			in, ok := tracked[abs]
			if !ok {
				continue
			}
			g.logger.Debug("change", "file", in, "op", ev.Op.String())
			pending[in] = true
			timer.Reset(settle)
		case <-timer.C:
			for _, in := range inputs {
				if pending[in] {
					build(in)
				}
			}
			clear(pending)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn("watch error", "error", err)
		}
	}
}
