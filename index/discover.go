package index

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/armatools/rvtk/pbo"
	"github.com/armatools/rvtk/vpath"
)

func endsWithPBO(name string) bool {
	return len(name) >= 4 && strings.EqualFold(name[len(name)-4:], ".pbo")
}

// readPrefix opens path and returns its "prefix" extension value, or
// "" if the archive has none or fails to parse. Unreadable archives
// are skipped rather than aborting discovery.
func readPrefix(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	archive, err := pbo.Read(f)
	if err != nil {
		return ""
	}
	prefix, _ := archive.Prefix()
	return prefix
}

// ScanDir walks dir recursively and returns one PBORef per discovered
// ".pbo" file, annotated with source. Unreadable or permission-denied
// entries are skipped.
func ScanDir(dir string, source Source) ([]PBORef, error) {
	var refs []PBORef
	if dir == "" {
		return refs, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip permission-denied and similar
		}
		if d.IsDir() || !endsWithPBO(d.Name()) {
			return nil
		}

		prefix := readPrefix(path)
		synthetic := false
		if prefix == "" && source.legacy() {
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if stem != "" {
				prefix = vpath.ToSlashLower(stem)
				synthetic = true
			}
		}

		refs = append(refs, PBORef{Path: path, Prefix: prefix, Synthetic: synthetic, Source: source})
		return nil
	})
	return refs, err
}

// DiscoverArchives walks every root and returns the concatenation of
// ScanDir's results, in root order.
func DiscoverArchives(roots []Root) ([]PBORef, error) {
	var all []PBORef
	for _, root := range roots {
		refs, err := ScanDir(root.Path, root.Source)
		if err != nil {
			return nil, err
		}
		all = append(all, refs...)
	}
	return all, nil
}
