package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opal-lang/colorprop/core/manifest"
	"github.com/opal-lang/colorprop/runtime/compiler"
)

// compileFlags are shared by compile and watch.
type compileFlags struct {
	output   string
	manifest string
	strict   bool
	literal  bool
}

func (f *compileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file, or directory for several inputs (default stdout)")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "Write a binary resolution manifest to this path")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on the first unresolved reference")
	cmd.Flags().BoolVar(&f.literal, "literal", false, "Emit plain colors instead of var() references")
}

// resolve merges the flags over the configuration. Flags win when set.
func (f *compileFlags) resolve(cmd *cobra.Command, g *globals) compileFlags {
	out := compileFlags{
		output:   g.cfg.Output,
		manifest: g.cfg.Manifest,
		strict:   g.cfg.Strict,
		literal:  !g.cfg.Themeable,
	}
	if cmd.Flags().Changed("output") {
		out.output = f.output
	}
	if cmd.Flags().Changed("manifest") {
		out.manifest = f.manifest
	}
	if cmd.Flags().Changed("strict") {
		out.strict = f.strict
	}
	if cmd.Flags().Changed("literal") {
		out.literal = f.literal
	}
	return out
}

func (f compileFlags) check(inputs []string) error {
	if len(inputs) > 1 {
		if f.output == "" {
			return &CLIError{
				Type:    "usage",
				Message: "several inputs need an output directory",
				Hint:    "pass -o <dir>",
			}
		}
		if f.manifest != "" {
			return &CLIError{
				Type:    "usage",
				Message: "--manifest takes a single input",
			}
		}
		for _, in := range inputs {
			if in == "-" {
				return &CLIError{Type: "usage", Message: "stdin cannot be mixed with other inputs"}
			}
		}
	}
	return nil
}

func newCompileCmd(g *globals) *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "compile <file...>",
		Short: "Compile stylesheets to CSS",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := flags.resolve(cmd, g)
			if err := f.check(args); err != nil {
				return err
			}
			for _, in := range args {
				if err := compileOne(cmd.Context(), cmd, g, f, in, len(args) > 1); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// compileOne compiles a single input and writes its CSS, diagnostics and
// manifest. toDir places the output under f.output named after the input.
func compileOne(ctx context.Context, cmd *cobra.Command, g *globals, f compileFlags, in string, toDir bool) error {
	src, err := readInput(cmd, in)
	if err != nil {
		return err
	}

	name := in
	if in == "-" {
		name = "<stdin>"
	}
	res, err := compiler.Compile(ctx, name, src, compiler.Options{
		Logger:    g.logger,
		Strict:    f.strict,
		Literal:   f.literal,
		Variables: g.cfg.Variables,
	})
	if err != nil {
		return err
	}
	FormatDiagnostics(cmd.ErrOrStderr(), name, res.Diagnostics, ShouldUseColor(g.noColor))

	switch {
	case toDir:
		if err := os.MkdirAll(f.output, 0o755); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(f.output, outputName(in)), []byte(res.CSS)); err != nil {
			return err
		}
	case f.output != "":
		if err := writeFile(f.output, []byte(res.CSS)); err != nil {
			return err
		}
	default:
		if _, err := fmt.Fprint(cmd.OutOrStdout(), res.CSS); err != nil {
			return err
		}
	}

	if f.manifest != "" {
		var buf bytes.Buffer
		if _, err := manifest.Write(&buf, res.Manifest()); err != nil {
			return err
		}
		if err := writeFile(f.manifest, buf.Bytes()); err != nil {
			return err
		}
	}

	g.logger.Debug("wrote output",
		"input", name,
		"output", f.output,
		"manifest", f.manifest,
		"diagnostics", len(res.Diagnostics),
		"duration", res.CompileTime)
	return nil
}

// outputName maps "theme/base.less" to "base.css".
func outputName(in string) string {
	base := filepath.Base(in)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".css"
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
