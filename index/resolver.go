package index

import (
	"sort"
	"strings"

	"github.com/armatools/rvtk/vpath"
)

// Resolver maps a normalized virtual path to the archive that
// provides it, by longest-prefix match over a fixed set of archive
// refs.
type Resolver struct {
	refs []PBORef
}

// NewResolver sorts refs by descending prefix length (longest match
// wins) and returns a Resolver over them.
func NewResolver(refs []PBORef) *Resolver {
	sorted := make([]PBORef, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Resolver{refs: sorted}
}

// Resolve normalizes modelPath and returns the first ref (in
// descending prefix-length order) whose normalized prefix is a proper
// prefix of it, splitting off the remainder as the entry name.
func (r *Resolver) Resolve(modelPath string) (ResolveResult, error) {
	normalized := vpath.ToSlashLower(modelPath)

	for _, ref := range r.refs {
		if ref.Prefix == "" {
			continue
		}
		prefix := vpath.ToSlashLower(ref.Prefix)
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if strings.HasPrefix(normalized, prefix) {
			return ResolveResult{
				ArchivePath: ref.Path,
				Prefix:      ref.Prefix,
				EntryName:   normalized[len(prefix):],
				FullPath:    normalized,
			}, nil
		}
	}
	return ResolveResult{}, ErrNotFound
}
