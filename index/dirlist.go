package index

import (
	"database/sql"
	"fmt"

	"github.com/armatools/rvtk/vpath"
)

// ListDir lists the immediate children of a virtual directory path:
// subdirectories first, then files, each ordered lexicographically,
// using the dirs closure table so the query is a single indexed join
// regardless of path depth. limit/offset
// paginate the combined (dirs-then-files) result set; limit<=0 means
// unbounded.
func (d *DB) ListDir(dirPath string, limit, offset int) ([]DirEntry, error) {
	dirPath = trimTrailingSlash(vpath.Normalize(dirPath))

	var dirID sql.NullInt64
	if dirPath != "" {
		var id int64
		err := d.conn.QueryRow("SELECT id FROM dirs WHERE path = ?", dirPath).Scan(&id)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("index: looking up directory %q: %w", dirPath, err)
		}
		dirID = sql.NullInt64{Int64: id, Valid: true}
	}

	query := `
	SELECT 0 AS kind, d.name AS name, '' AS archive_path, '' AS prefix, '' AS file_path, 0 AS data_size
		FROM dirs d WHERE d.parent_id IS ?
	UNION ALL
	SELECT 1 AS kind,
		substr(f.path, length(?) + 1) AS name,
		p.path AS archive_path, p.prefix AS prefix, f.path AS file_path, f.data_size AS data_size
		FROM files f JOIN pbos p ON p.id = f.pbo_id
		WHERE f.dir_id IS ?
	ORDER BY kind, name`
	args := []any{dirID, dirPath + "/", dirID}
	if dirPath == "" {
		// files.dir_id is 0 (not NULL) for root-level entries, and the
		// name prefix strip needs no leading slash.
		args = []any{nil, "", int64(0)}
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: listing directory %q: %w", dirPath, err)
	}
	defer rows.Close()

	var out []DirEntry
	for rows.Next() {
		var (
			kind                                 int
			name, archivePath, prefix, filePath string
			dataSize                             uint32
		)
		if err := rows.Scan(&kind, &name, &archivePath, &prefix, &filePath, &dataSize); err != nil {
			return nil, fmt.Errorf("index: scanning directory entry: %w", err)
		}
		if kind == 0 {
			out = append(out, DirEntry{Name: name, IsDir: true})
			continue
		}
		out = append(out, DirEntry{
			Name: name,
			File: &FindResult{ArchivePath: archivePath, Prefix: prefix, EntryPath: filePath, DataSize: dataSize},
		})
	}
	return out, rows.Err()
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
