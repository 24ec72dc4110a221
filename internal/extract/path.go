package extract

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/meigma/rpm/internal/rpmtype"
)

// CleanName validates an archive entry name and returns it as a clean
// slash-separated path relative to the extraction root. The archive root
// itself ("./" or ".") is returned as ".".
//
// Names that are empty, absolute, contain NUL, or have a ".." component fail
// with ErrUnsafePath.
func CleanName(name string) (string, error) {
	if name == "" {
		return "", unsafePath(name, "empty name")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return "", unsafePath(name, "name contains NUL")
	}
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", unsafePath(name, "absolute name")
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", unsafePath(name, "parent directory component")
		}
	}
	clean := path.Clean(name)
	if clean == "." {
		return ".", nil
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", unsafePath(name, "not a local path")
	}
	return clean, nil
}

// CheckLinkTarget validates a symlink target for an entry at clean name.
// Absolute targets are rejected, and relative targets must stay inside the
// root once resolved against the entry's directory.
func CheckLinkTarget(name, target string) error {
	switch {
	case target == "":
		return unsafePath(name, "empty link target")
	case strings.IndexByte(target, 0) >= 0:
		return unsafePath(name, "link target contains NUL")
	case strings.HasPrefix(target, "/") || filepath.IsAbs(target) || filepath.VolumeName(target) != "":
		return unsafePath(name, "absolute link target "+target)
	}
	resolved := path.Join(path.Dir(name), target)
	if resolved != "." && !filepath.IsLocal(filepath.FromSlash(resolved)) {
		return unsafePath(name, "link target escapes root: "+target)
	}
	return nil
}

func unsafePath(name, why string) error {
	return rpmtype.Errorf(rpmtype.SectionExtract, rpmtype.ErrUnsafePath, "%q: %s", name, why)
}
