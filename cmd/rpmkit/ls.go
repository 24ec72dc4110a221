package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
)

func (a *app) lsCmd() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls FILE",
		Short: "List package files",
		Long: `List package files.

Without -l the payload archive is read and every entry is printed. With -l
the header file list is printed with owners, sizes, and times.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := rpm.OpenFile(args[0], a.cfg.OpenOptions()...)
			if err != nil {
				return err
			}
			defer pkg.Close()
			logDiagnostics(args[0], pkg)

			out := cmd.OutOrStdout()
			if long {
				for _, f := range pkg.Info().Files {
					line := fmt.Sprintf("%s %-8s %-8s %10d %s %s",
						f.Mode, f.Owner, f.Group, f.Size, f.MTime.Format("2006-01-02 15:04"), f.Path)
					if f.LinkTarget != "" {
						line += " -> " + f.LinkTarget
					}
					fmt.Fprintln(out, line)
				}
				return nil
			}
			for e, err := range pkg.Entries() {
				if err != nil {
					return err
				}
				fmt.Fprintln(out, e.Path())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "long listing from the header file list")
	return cmd
}
