package index

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/armatools/rvtk/pbo"
	"github.com/armatools/rvtk/vpath"
)

// Build discovers every PBO archive under roots, parses each entry
// recognized by extension, and writes a fresh index database to
// outPath. It builds under a temporary sibling path and atomically
// renames over outPath only on success.
func Build(outPath string, roots []Root, opts BuildOptions, progress ProgressFunc) (BuildResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	progress(ProgressEvent{Phase: "discovery", Message: fmt.Sprintf("scanning %d root(s)", len(roots))})
	refs, err := DiscoverArchives(roots)
	if err != nil {
		return BuildResult{}, fmt.Errorf("index: discovering archives: %w", err)
	}

	tmpPath := outPath + ".tmp-" + uuid.NewString()
	for _, sidecar := range []string{tmpPath, tmpPath + "-wal", tmpPath + "-shm"} {
		_ = os.Remove(sidecar)
	}

	conn, err := openRaw(tmpPath)
	if err != nil {
		return BuildResult{}, err
	}
	cleanTmp := func() {
		conn.Close()
		os.Remove(tmpPath)
		os.Remove(tmpPath + "-wal")
		os.Remove(tmpPath + "-shm")
	}

	if err := createSchema(conn); err != nil {
		cleanTmp()
		return BuildResult{}, err
	}

	if err := writeBuildMeta(conn, roots, opts); err != nil {
		cleanTmp()
		return BuildResult{}, err
	}

	var result BuildResult
	for i, ref := range refs {
		progress(ProgressEvent{Phase: "archive", ArchiveIndex: i + 1, ArchiveTotal: len(refs), ArchivePath: ref.Path})
		counts, err := indexOneArchive(conn, ref, opts, progress)
		if err != nil {
			progress(ProgressEvent{Phase: "warning", ArchivePath: ref.Path, Message: err.Error()})
			continue
		}
		result.ArchiveCount++
		result.FileCount += counts.files
		result.ModelCount += counts.models
		result.TextureCount += counts.textures
		result.AudioCount += counts.audio
	}

	progress(ProgressEvent{Phase: "commit", Message: "checkpointing WAL"})
	if _, err := conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		cleanTmp()
		return BuildResult{}, fmt.Errorf("index: checkpointing WAL: %w", err)
	}
	if err := conn.Close(); err != nil {
		os.Remove(tmpPath)
		return BuildResult{}, fmt.Errorf("index: closing built database: %w", err)
	}
	os.Remove(tmpPath + "-wal")
	os.Remove(tmpPath + "-shm")

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return BuildResult{}, fmt.Errorf("index: renaming built database into place: %w", err)
	}

	return result, nil
}

func writeBuildMeta(conn *sql.DB, roots []Root, opts BuildOptions) error {
	if err := setMeta(conn, "schema_version", schemaVersion); err != nil {
		return fmt.Errorf("index: writing schema_version meta: %w", err)
	}
	if err := setMeta(conn, "created_at", nowStamp()); err != nil {
		return fmt.Errorf("index: writing created_at meta: %w", err)
	}
	for _, r := range roots {
		if err := setMeta(conn, "root:"+string(r.Source), r.Path); err != nil {
			return fmt.Errorf("index: writing root meta for %s: %w", r.Source, err)
		}
	}
	onDemand := "false"
	if opts.OnDemandMetadata {
		onDemand = "true"
	}
	return setMeta(conn, "on_demand_metadata", onDemand)
}

type archiveCounts struct {
	files, models, textures, audio int
}

// indexOneArchive inserts one archive row, its extensions, and every
// entry's file row (plus format metadata where recognized and
// parseable), all inside a single transaction per archive so a
// mid-archive failure never leaves partial rows.
func indexOneArchive(conn *sql.DB, ref PBORef, opts BuildOptions, progress ProgressFunc) (archiveCounts, error) {
	var counts archiveCounts

	f, err := os.Open(ref.Path)
	if err != nil {
		return counts, fmt.Errorf("opening %s: %w", ref.Path, err)
	}
	defer f.Close()

	archive, err := pbo.Read(f)
	if err != nil {
		return counts, fmt.Errorf("reading %s: %w", ref.Path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return counts, fmt.Errorf("stat %s: %w", ref.Path, err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return counts, fmt.Errorf("beginning transaction for %s: %w", ref.Path, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	res, err := tx.Exec("INSERT INTO pbos (path, prefix, prefix_synthetic, file_size, mod_time, source) VALUES (?,?,?,?,?,?)",
		ref.Path, ref.Prefix, ref.Synthetic, info.Size(), info.ModTime().UTC().Format(time.RFC3339), string(ref.Source))
	if err != nil {
		return counts, fmt.Errorf("inserting pbos row for %s: %w", ref.Path, err)
	}
	pboID, err := res.LastInsertId()
	if err != nil {
		return counts, err
	}

	for k, v := range archive.Extensions {
		if _, err := tx.Exec("INSERT INTO pbo_extensions (pbo_id, key, value) VALUES (?,?,?)", pboID, k, v); err != nil {
			return counts, fmt.Errorf("inserting extension %s for %s: %w", k, ref.Path, err)
		}
	}

	dirCache := map[string]int64{"": 0}
	warn := func(msg string) {
		progress(ProgressEvent{Phase: "warning", ArchivePath: ref.Path, Message: msg})
	}

	for _, entry := range archive.Entries {
		virtualPath := vpath.Join(ref.Prefix, vpath.ToSlashLower(entry.Filename))
		dirID, err := ensureDir(tx, dirCache, dirOf(virtualPath))
		if err != nil {
			return counts, fmt.Errorf("building directory tree for %s: %w", virtualPath, err)
		}

		if _, err := tx.Exec("INSERT INTO files (pbo_id, dir_id, path, original_size, data_size, timestamp) VALUES (?,?,?,?,?,?)",
			pboID, dirID, virtualPath, entry.OriginalSize, entry.DataSize, entry.Timestamp); err != nil {
			return counts, fmt.Errorf("inserting file row for %s: %w", virtualPath, err)
		}
		counts.files++

		if opts.OnDemandMetadata || !isRecognized(virtualPath) {
			continue
		}

		body, err := pbo.Extract(f, entry)
		if err != nil {
			warn(fmt.Sprintf("extracting %s: %v", virtualPath, err))
			continue
		}
		c := indexEntry(tx, pboID, body, virtualPath, warn)
		counts.models += c.Models
		counts.textures += c.Textures
		counts.audio += c.AudioFiles
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("committing %s: %w", ref.Path, err)
	}
	committed = true
	return counts, nil
}

