package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meigma/rpm/internal/compress"
	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/extract"
	"github.com/meigma/rpm/internal/platform"
)

func (a *app) cpioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpio",
		Short: "Work with cpio newc archives",
		Long: `Work with cpio newc archives.

Archives read by list and extract may be compressed with any payload
compressor; the format is detected from the leading bytes.`,
	}
	cmd.AddCommand(a.cpioListCmd(), a.cpioExtractCmd(), a.cpioCreateCmd())
	return cmd
}

// openArchive opens a possibly compressed cpio archive.
func (a *app) openArchive(name string) (*cpio.Reader, io.Closer, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(f)
	prefix, _ := br.Peek(compress.DetectSize) //nolint:errcheck // short input is detected as-is
	codec, ok := compress.Detect(prefix)
	if !ok {
		f.Close()
		return nil, nil, fmt.Errorf("%s: unrecognized archive format", name)
	}
	rc, err := compress.Default().Decode(codec, br)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	slog.Debug("opened archive", "path", name, "compressor", codec)

	var opts []cpio.ReaderOption
	if a.cfg.MaxEntrySize > 0 {
		opts = append(opts, cpio.WithMaxEntrySize(a.cfg.MaxEntrySize))
	}
	return cpio.NewReader(rc, opts...), closers{rc, f}, nil
}

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

func (a *app) cpioListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list ARCHIVE",
		Short: "List archive entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ar, closer, err := a.openArchive(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			for {
				hdr, err := ar.Next()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %3d %-5d %-5d %10d %s %s\n",
					hdr.FileMode(), hdr.NLink, hdr.UID, hdr.GID, hdr.FileSize,
					hdr.ModTime().UTC().Format("2006-01-02 15:04"), hdr.Name)
			}
		},
	}
}

func (a *app) cpioExtractCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "extract ARCHIVE",
		Short: "Extract an archive into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ar, closer, err := a.openArchive(args[0])
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			root, err := os.OpenRoot(dir)
			if err != nil {
				return err
			}
			defer root.Close()

			x := extract.New(root,
				extract.WithOverwrite(a.cfg.Overwrite),
				extract.WithPreserveMode(true),
				extract.WithPreserveTimes(true),
				extract.WithChangeOwner(a.cfg.Owner),
				extract.WithPolicy(a.cfg.ExtractPolicy()),
				extract.WithLogger(slog.Default()),
			)
			if err := x.All(ar); err != nil {
				return err
			}
			for _, s := range x.Skipped() {
				slog.Warn("skipped entry", "name", s.Name, "error", s.Err)
			}
			return nil
		},
	}
	addExtractFlags(cmd, &dir)
	return cmd
}

func (a *app) cpioCreateCmd() *cobra.Command {
	var output, compressor string
	var level int
	cmd := &cobra.Command{
		Use:   "create DIR -o OUT",
		Short: "Archive a directory tree",
		Long: `Archive a directory tree.

Entry names are relative to DIR and prefixed with "./", as in RPM payloads.
Hard-linked files are stored once, with the content on the last member.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := createOutput(output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			enc, err := compress.Default().Encode(compressor, w, level)
			if err != nil {
				w.Close()
				return err
			}
			n, err := writeTree(args[0], cpio.NewWriter(enc))
			if err == nil {
				err = enc.Close()
			}
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			slog.Info("created archive", "entries", n, "compressor", compress.Normalize(compressor))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	cmd.Flags().StringVar(&compressor, "compress", compress.None, "payload compressor")
	cmd.Flags().IntVar(&level, "level", 0, "compression level (0 for the codec default)")
	return cmd
}

type treeEntry struct {
	path   string
	hdr    *cpio.Header
	target string
	// data is false for hard-link members whose content is stored on a
	// later member of the same set.
	data bool
}

// writeTree archives dir in lexical order and returns the entry count.
func writeTree(dir string, aw *cpio.Writer) (int, error) {
	var entries []treeEntry
	lastOf := make(map[[3]uint64]int)
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		e := treeEntry{path: p, data: true}
		if fi.Mode()&fs.ModeSymlink != 0 {
			if e.target, err = os.Readlink(p); err != nil {
				return err
			}
		}
		if e.hdr, err = cpio.HeaderFromFileInfo("./"+filepath.ToSlash(rel), fi, e.target); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if e.hdr.IsRegular() && e.hdr.NLink > 1 {
			meta := platform.FileMeta(fi)
			lastOf[[3]uint64{uint64(meta.DevMajor), uint64(meta.DevMinor), meta.Inode}] = len(entries)
			e.data = false
		}
		e.hdr.NLink = max(e.hdr.NLink, 1)
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, i := range lastOf {
		entries[i].data = true
	}

	for _, e := range entries {
		if err := writeTreeEntry(aw, e); err != nil {
			return 0, err
		}
	}
	return len(entries), aw.Close()
}

func writeTreeEntry(aw *cpio.Writer, e treeEntry) error {
	hdr := *e.hdr
	switch {
	case hdr.IsSymlink():
		return aw.WriteEntry(&hdr, []byte(e.target))
	case hdr.IsRegular() && e.data:
		f, err := os.Open(e.path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := aw.WriteHeader(&hdr); err != nil {
			return err
		}
		if _, err := io.Copy(aw, f); err != nil {
			return fmt.Errorf("%s: %w", e.path, err)
		}
		return nil
	default:
		hdr.FileSize = 0
		return aw.WriteHeader(&hdr)
	}
}
