package index

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

type existingArchive struct {
	id      int64
	size    int64
	modTime string
}

// Update opens an existing database at dbPath, re-discovers roots, and
// inserts/re-indexes archives that are new or changed (by size and
// modification time) and removes rows for archives no longer present.
// It refuses (ErrSchemaMismatch) rather than migrating when the stored
// schema version differs.
func Update(dbPath string, roots []Root, opts BuildOptions, progress ProgressFunc) (UpdateResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	conn, err := openRaw(dbPath)
	if err != nil {
		return UpdateResult{}, err
	}
	defer conn.Close()

	if err := checkSchemaVersion(conn); err != nil {
		return UpdateResult{}, err
	}

	existing, err := loadExistingArchives(conn)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("index: loading existing archive rows: %w", err)
	}

	progress(ProgressEvent{Phase: "discovery", Message: fmt.Sprintf("scanning %d root(s)", len(roots))})
	refs, err := DiscoverArchives(roots)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("index: discovering archives: %w", err)
	}

	var result UpdateResult
	seen := make(map[string]bool, len(refs))

	for i, ref := range refs {
		seen[ref.Path] = true
		progress(ProgressEvent{Phase: "archive", ArchiveIndex: i + 1, ArchiveTotal: len(refs), ArchivePath: ref.Path})

		info, statErr := os.Stat(ref.Path)
		if statErr != nil {
			progress(ProgressEvent{Phase: "warning", ArchivePath: ref.Path, Message: statErr.Error()})
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339)

		prior, known := existing[ref.Path]
		if known && prior.size == info.Size() && prior.modTime == modTime {
			continue
		}
		if known {
			if err := deleteArchive(conn, prior.id); err != nil {
				progress(ProgressEvent{Phase: "warning", ArchivePath: ref.Path, Message: err.Error()})
				continue
			}
		}

		counts, err := indexOneArchive(conn, ref, opts, progress)
		if err != nil {
			progress(ProgressEvent{Phase: "warning", ArchivePath: ref.Path, Message: err.Error()})
			continue
		}
		if known {
			result.Updated++
		} else {
			result.Added++
		}
		result.FileCount += counts.files
		result.ModelCount += counts.models
		result.TextureCount += counts.textures
		result.AudioCount += counts.audio
	}

	for path, prior := range existing {
		if seen[path] {
			continue
		}
		if err := deleteArchive(conn, prior.id); err != nil {
			progress(ProgressEvent{Phase: "warning", ArchivePath: path, Message: err.Error()})
			continue
		}
		result.Removed++
	}

	return result, nil
}

func loadExistingArchives(conn *sql.DB) (map[string]existingArchive, error) {
	rows, err := conn.Query("SELECT id, path, file_size, mod_time FROM pbos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]existingArchive)
	for rows.Next() {
		var (
			id   int64
			path string
			a    existingArchive
		)
		if err := rows.Scan(&id, &path, &a.size, &a.modTime); err != nil {
			return nil, err
		}
		a.id = id
		out[path] = a
	}
	return out, rows.Err()
}

// deleteArchive removes one archive's row and every row in every
// child table that references it. The schema declares no cascading
// foreign keys, so each table is cleared explicitly.
func deleteArchive(conn *sql.DB, pboID int64) error {
	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{"pbo_extensions", "files", "p3d_models", "textures", "audio_files", "model_textures"}
	for _, table := range tables {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE pbo_id = ?", table), pboID); err != nil {
			return fmt.Errorf("index: deleting %s rows for archive %d: %w", table, pboID, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM pbos WHERE id = ?", pboID); err != nil {
		return fmt.Errorf("index: deleting pbos row %d: %w", pboID, err)
	}
	return tx.Commit()
}
