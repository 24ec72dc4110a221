package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
	"github.com/meigma/rpm/internal/config"
)

func (a *app) buildCmd() *cobra.Command {
	var manifest, output string
	cmd := &cobra.Command{
		Use:   "build -m MANIFEST -o OUT",
		Short: "Build a package from a manifest",
		Long: `Build a package from a manifest.

The manifest holds the package fields at the top level and a files list,
in TOML, YAML, or JSON:

  name = "demo"
  version = "1.0"
  release = "1"
  requires = ["bash >= 5.0"]

  [[files]]
  path = "/usr/bin/demo"
  source = "bin/demo"
  mode = "0755"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := config.LoadManifest(manifest)
			if err != nil {
				return err
			}

			w, err := createOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			b := m.Builder(
				rpm.BuildWithLogger(slog.Default()),
				rpm.BuildWithProgress(func(ev rpm.ProgressEvent) {
					slog.Debug("build progress", "stage", ev.Stage.String(), "path", ev.Path, "files", ev.FilesDone)
				}),
			)
			if err := b.Write(w); err != nil {
				w.Close()
				return fmt.Errorf("build %s: %w", manifest, err)
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "package manifest")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output package file")
	_ = cmd.MarkFlagRequired("manifest") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("output")   //nolint:errcheck // flag exists
	return cmd
}
