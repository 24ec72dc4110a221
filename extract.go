package rpm

import (
	"fmt"
	"os"

	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/extract"
)

// SkippedEntry is an entry left out of extraction under PolicySkip.
type SkippedEntry = extract.Skipped

// ExtractResult summarizes an extraction.
type ExtractResult struct {
	// Entries is the number of entries written.
	Entries int
	// Bytes is the total content size written.
	Bytes uint64
	// Skipped lists unsafe entries skipped under PolicySkip.
	Skipped []SkippedEntry
}

// Extract writes the payload beneath dir, creating dir if needed.
//
// Entry names and symlink targets are validated before anything is created;
// a name with a ".." component, an absolute name, or a symlink resolving
// outside dir fails with ErrUnsafePath under the default PolicyAbort. All
// writes go through an os.Root, so extraction cannot follow a symlink out of
// dir. Device nodes, fifos, and sockets are skipped.
func (p *Package) Extract(dir string, opts ...ExtractOption) (*ExtractResult, error) {
	cfg := extractConfig{preserveMode: true, preserveTimes: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	rc, err := p.PayloadReader()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	res := &ExtractResult{}
	x := extract.New(root,
		extract.WithOverwrite(cfg.overwrite),
		extract.WithPreserveMode(cfg.preserveMode),
		extract.WithPreserveTimes(cfg.preserveTimes),
		extract.WithChangeOwner(cfg.changeOwner),
		extract.WithPolicy(cfg.policy),
		extract.WithLogger(cfg.logger),
		extract.WithProgress(func(ev ProgressEvent) {
			res.Entries = ev.FilesDone
			res.Bytes = ev.BytesDone
			if cfg.progress != nil {
				cfg.progress(ev)
			}
		}),
	)
	if err := x.All(cpio.NewReader(rc, p.cfg.archiveOptions()...)); err != nil {
		return nil, err
	}
	res.Skipped = x.Skipped()
	return res, nil
}
