package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm"
)

func (a *app) indexCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "index FILE -o OUT",
		Short: "Write a payload index for a package",
		Long: `Write a payload index for a package.

The index is a FlatBuffers table of every payload entry with its content
offset in the decompressed payload and its SHA-256. Use "index show" to
read one back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := rpm.OpenFile(args[0], a.cfg.OpenOptions()...)
			if err != nil {
				return err
			}
			defer pkg.Close()

			data, err := pkg.BuildIndex()
			if err != nil {
				return err
			}
			w, err := createOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output index file")
	_ = cmd.MarkFlagRequired("output") //nolint:errcheck // flag exists
	cmd.AddCommand(a.indexShowCmd())
	return cmd
}

func (a *app) indexShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show INDEX [PREFIX]",
		Short: "List the entries of a payload index",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			idx, err := rpm.LoadIndex(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "package %s, %s payload, %d bytes, %d entries\n",
				idx.Package(), idx.Compressor(), idx.PayloadSize(), idx.Len())

			entries := idx.Entries()
			if len(args) == 2 {
				entries = idx.EntriesWithPrefix(args[1])
			}
			for e := range entries {
				fmt.Fprintf(out, "%s %10d %10d %s %s\n",
					e.FileMode(), e.DataOffset(), e.Size(), shortHash(e.Hash()), e.Path())
			}
			return nil
		},
	}
}

func shortHash(h []byte) string {
	if len(h) == 0 {
		return "-           "
	}
	return hex.EncodeToString(h[:min(len(h), 6)])
}
