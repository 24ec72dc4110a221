package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
)

func (a *app) rpm2cpioCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "rpm2cpio FILE",
		Short: "Write the decompressed payload archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := rpm.OpenFile(args[0], a.cfg.OpenOptions()...)
			if err != nil {
				return err
			}
			defer pkg.Close()

			rc, err := pkg.PayloadReader()
			if err != nil {
				return err
			}
			defer rc.Close()

			w, err := createOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := io.Copy(w, rc); err != nil {
				w.Close()
				return fmt.Errorf("copy payload: %w", err)
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	return cmd
}
