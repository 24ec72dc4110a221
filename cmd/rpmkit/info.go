package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
)

func (a *app) infoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "Show package information",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]*rpm.Info, len(args))
			var mu sync.Mutex
			err := rpm.OpenAll(cmd.Context(), args, func(_ context.Context, path string, pkg *rpm.Package) error {
				logDiagnostics(path, pkg)
				info := pkg.Info()
				mu.Lock()
				defer mu.Unlock()
				for i, arg := range args {
					if arg == path {
						infos[i] = info
					}
				}
				return nil
			}, a.cfg.OpenOptions()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for i, info := range infos {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprint(out, info.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func logDiagnostics(path string, pkg *rpm.Package) {
	for _, d := range pkg.Diagnostics() {
		slog.Warn("header diagnostic",
			"path", path,
			"tag", d.Tag,
			"type", d.Type.String(),
			"reason", d.Reason.String(),
		)
	}
}
