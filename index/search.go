package index

import (
	"fmt"

	"github.com/armatools/rvtk/vpath"
)

// Find matches entry paths across every archive against a '*'/'?'
// glob pattern, translated to a SQL LIKE expression.
// When source is non-nil, results are restricted to archives of that
// source. Results are ordered lexicographically by the matched path,
// with limit/offset applied in SQL.
func (d *DB) Find(pattern string, source *Source, limit, offset int) ([]FindResult, error) {
	like := vpath.GlobToLike(vpath.ToSlashLower(pattern))

	query := `SELECT p.path, p.prefix, f.path, f.data_size
		FROM files f JOIN pbos p ON p.id = f.pbo_id
		WHERE f.path LIKE ? ESCAPE '\'`
	args := []any{like}
	if source != nil {
		query += " AND p.source = ?"
		args = append(args, string(*source))
	}
	query += " ORDER BY f.path"
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
		return nil, fmt.Errorf("index: searching for %q: %w", pattern, err)
	}
	defer rows.Close()

	var out []FindResult
	for rows.Next() {
		var r FindResult
		var archivePath, fullPath string
		if err := rows.Scan(&archivePath, &r.Prefix, &fullPath, &r.DataSize); err != nil {
			return nil, fmt.Errorf("index: scanning search result: %w", err)
		}
		r.ArchivePath = archivePath
		r.EntryPath = fullPath
		out = append(out, r)
	}
	return out, rows.Err()
}
