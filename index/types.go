// Package index builds and queries a SQLite-backed catalogue of PBO
// archives: their entries, directory structure, and per-format model,
// texture, and audio metadata.
package index

import "errors"

// ErrSchemaMismatch is returned by Open and Update when a database's
// stored schema_version does not equal schemaVersion.
var ErrSchemaMismatch = errors.New("index: schema version mismatch")

// ErrIncompatibleSchema is returned by Open and Update when a database
// has no readable schema_version row in its meta table.
var ErrIncompatibleSchema = errors.New("index: incompatible database schema")

// ErrNotFound is returned by Resolve when no archive prefix matches,
// and may be returned by query helpers that find zero rows.
var ErrNotFound = errors.New("index: not found")

// Source enumerates the origin of a discovered root directory. Legacy
// sources (pre-PBO-prefix games) synthesize an archive prefix from the
// archive's filename stem when its extension table carries none.
type Source string

const (
	SourcePrimary     Source = "primary"
	SourceWorkshop    Source = "workshop"
	SourceCustom      Source = "custom"
	SourceLegacyOFP   Source = "legacy-ofp"
	SourceLegacyArma1 Source = "legacy-arma1"
	SourceLegacyArma2 Source = "legacy-arma2"
)

// legacy reports whether s is one of the pre-prefix-header sources.
func (s Source) legacy() bool {
	switch s {
	case SourceLegacyOFP, SourceLegacyArma1, SourceLegacyArma2:
		return true
	}
	return false
}

// Root is one directory to walk during discovery, annotated with the
// source kind its discovered archives should be recorded under.
type Root struct {
	Path   string
	Source Source
}

// PBORef is a discovered archive: its on-disk path, its prefix (from
// the extension table or synthesized), and whether that prefix was
// synthesized rather than read from the archive itself.
type PBORef struct {
	Path      string
	Prefix    string
	Synthetic bool
	Source    Source
}

// ResolveResult is the outcome of resolving a virtual model/texture
// path to the archive and in-archive entry name that provide it.
type ResolveResult struct {
	ArchivePath string
	Prefix      string
	EntryName   string
	FullPath    string
}

// FindResult identifies one archive entry: the archive that holds it,
// its (possibly synthesized) prefix, its full lower-cased virtual path,
// and its stored (as packed in the archive) data size.
type FindResult struct {
	ArchivePath string
	Prefix      string
	EntryPath   string
	DataSize    uint32
}

// DirEntry is one row of a directory listing: either a subdirectory
// (File is nil) or a file (File is set).
type DirEntry struct {
	Name  string
	IsDir bool
	File  *FindResult
}

// ModelBBox is the bounding-box summary stored for one indexed model.
type ModelBBox struct {
	BBoxMin, BBoxMax, BBoxCenter [3]float32
	BBoxRadius                   float32
	ModelInfoMax                 [3]float32
	VisualMin, VisualMax         [3]float32
	VisualCenter                 [3]float32
}

// Stats summarizes one database's contents, read from its meta table
// and row counts.
type Stats struct {
	SchemaVersion   string
	CreatedAt       string
	Roots           map[Source]string
	ArchiveCount    int
	ArchivesWithPfx int
	FileCount       int
	TotalDataSize   int64
	ModelCount      int
	TextureCount    int
	AudioFileCount  int
}

// BuildOptions controls how a build or update walks discovered
// archives.
type BuildOptions struct {
	// OnDemandMetadata skips per-format parsing during build/update,
	// recording only archive and file rows; metadata tables stay empty
	// until a later on-demand pass (not implemented by this package —
	// callers reusing Build with OnDemandMetadata=false get full rows).
	OnDemandMetadata bool
}

// ProgressEvent reports build/update progress. Phase is one of
// "discovery", "archive", "commit", or "warning".
type ProgressEvent struct {
	Phase        string
	ArchiveIndex int
	ArchiveTotal int
	ArchivePath  string
	Message      string
}

// ProgressFunc receives synchronous progress notifications during
// Build or Update. It must not re-enter this package.
type ProgressFunc func(ProgressEvent)

// BuildResult summarizes a completed build.
type BuildResult struct {
	ArchiveCount int
	FileCount    int
	ModelCount   int
	TextureCount int
	AudioCount   int
}

// UpdateResult summarizes a completed incremental update.
type UpdateResult struct {
	Added        int
	Updated      int
	Removed      int
	FileCount    int
	ModelCount   int
	TextureCount int
	AudioCount   int
}
