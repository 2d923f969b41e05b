package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/colorprop/core/manifest"
)

func newManifestCmd(g *globals) *cobra.Command {
	var verify string
	cmd := &cobra.Command{
		Use:   "manifest <file>",
		Short: "Print a resolution manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			m, hash, err := manifest.Read(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			DisplayManifest(cmd.OutOrStdout(), m, hash, ShouldUseColor(g.noColor))

			if verify == "" {
				return nil
			}
			css, err := os.ReadFile(verify)
			if err != nil {
				return err
			}
			if err := m.Verify(css); err != nil {
				return &CLIError{
					Type:    "io",
					Message: fmt.Sprintf("%s does not match %s", verify, args[0]),
					Details: err.Error(),
					Hint:    "recompile with --manifest to refresh it",
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s matches\n", verify)
			return err
		},
	}
	cmd.Flags().StringVar(&verify, "verify", "", "Check that this CSS file matches the manifest digest")
	return cmd
}
