package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
)

func addExtractFlags(cmd *cobra.Command, dir *string) {
	cmd.Flags().StringVarP(dir, "directory", "C", ".", "destination directory")
	cmd.Flags().Bool("overwrite", false, "replace existing files")
	cmd.Flags().Bool("owner", false, "apply numeric ownership from the archive")
	cmd.Flags().Bool("skip-unsafe", false, "skip unsafe entries instead of failing")
}

func (a *app) extractCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract package files into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := rpm.OpenFile(args[0], a.cfg.OpenOptions()...)
			if err != nil {
				return err
			}
			defer pkg.Close()
			logDiagnostics(args[0], pkg)

			res, err := pkg.Extract(dir,
				rpm.ExtractWithOverwrite(a.cfg.Overwrite),
				rpm.ExtractWithOwner(a.cfg.Owner),
				rpm.ExtractWithPolicy(a.cfg.ExtractPolicy()),
				rpm.ExtractWithLogger(slog.Default()),
			)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				slog.Warn("skipped entry", "name", s.Name, "error", s.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d entries (%d bytes) to %s\n", res.Entries, res.Bytes, dir)
			return nil
		},
	}
	addExtractFlags(cmd, &dir)
	return cmd
}
