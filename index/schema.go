package index

import (
	"database/sql"
	"fmt"
)

// schemaVersion is stamped into meta.schema_version on build and
// checked exactly (no migration path) on open/update.
const schemaVersion = "10"

const schemaSQL = `
CREATE TABLE meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE pbos (
	id INTEGER PRIMARY KEY,
	path TEXT UNIQUE NOT NULL,
	prefix TEXT NOT NULL DEFAULT '',
	prefix_synthetic INTEGER NOT NULL DEFAULT 0,
	file_size INTEGER NOT NULL DEFAULT 0,
	mod_time TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_pbos_source ON pbos(source);
CREATE TABLE pbo_extensions (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	key TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (pbo_id, key)
);
CREATE TABLE dirs (
	id INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES dirs(id),
	name TEXT NOT NULL,
	path TEXT NOT NULL UNIQUE
);
CREATE INDEX idx_dirs_parent_id ON dirs(parent_id);
CREATE TABLE files (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	dir_id INTEGER REFERENCES dirs(id),
	path TEXT NOT NULL,
	original_size INTEGER NOT NULL DEFAULT 0,
	data_size INTEGER NOT NULL DEFAULT 0,
	timestamp INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_files_pbo_id ON files(pbo_id);
CREATE INDEX idx_files_dir_id ON files(dir_id);
CREATE TABLE p3d_models (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	format TEXT NOT NULL,
	size_source TEXT NOT NULL DEFAULT '',
	size_x REAL NOT NULL DEFAULT 0, size_y REAL NOT NULL DEFAULT 0, size_z REAL NOT NULL DEFAULT 0,
	bbox_min_x REAL NOT NULL DEFAULT 0, bbox_min_y REAL NOT NULL DEFAULT 0, bbox_min_z REAL NOT NULL DEFAULT 0,
	bbox_max_x REAL NOT NULL DEFAULT 0, bbox_max_y REAL NOT NULL DEFAULT 0, bbox_max_z REAL NOT NULL DEFAULT 0,
	bbox_center_x REAL NOT NULL DEFAULT 0, bbox_center_y REAL NOT NULL DEFAULT 0, bbox_center_z REAL NOT NULL DEFAULT 0,
	bbox_radius REAL NOT NULL DEFAULT 0,
	mi_max_x REAL NOT NULL DEFAULT 0, mi_max_y REAL NOT NULL DEFAULT 0, mi_max_z REAL NOT NULL DEFAULT 0,
	vis_min_x REAL NOT NULL DEFAULT 0, vis_min_y REAL NOT NULL DEFAULT 0, vis_min_z REAL NOT NULL DEFAULT 0,
	vis_max_x REAL NOT NULL DEFAULT 0, vis_max_y REAL NOT NULL DEFAULT 0, vis_max_z REAL NOT NULL DEFAULT 0,
	vis_center_x REAL NOT NULL DEFAULT 0, vis_center_y REAL NOT NULL DEFAULT 0, vis_center_z REAL NOT NULL DEFAULT 0
);
CREATE INDEX idx_p3d_models_pbo_id ON p3d_models(pbo_id);
CREATE TABLE textures (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	path TEXT NOT NULL, name TEXT NOT NULL, format TEXT NOT NULL DEFAULT '',
	data_size INTEGER NOT NULL DEFAULT 0, width INTEGER NOT NULL DEFAULT 0, height INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_textures_pbo_id ON textures(pbo_id);
CREATE TABLE audio_files (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	path TEXT NOT NULL, name TEXT NOT NULL, format TEXT NOT NULL DEFAULT '', encoder TEXT NOT NULL DEFAULT '',
	sample_rate INTEGER NOT NULL DEFAULT 0, channels INTEGER NOT NULL DEFAULT 0, data_size INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_audio_files_pbo_id ON audio_files(pbo_id);
CREATE TABLE model_textures (
	pbo_id INTEGER NOT NULL REFERENCES pbos(id),
	model_path TEXT NOT NULL, texture_path TEXT NOT NULL, source TEXT NOT NULL DEFAULT 'lod'
);
CREATE INDEX idx_model_textures_pbo_id ON model_textures(pbo_id);
CREATE INDEX idx_model_textures_model ON model_textures(model_path);
`

// createSchema applies schemaSQL to db. db must be a fresh, empty
// database file.
func createSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("index: applying schema: %w", err)
	}
	return nil
}

func tableExists(db dbQuerier, table string) (bool, error) {
	var one int
	err := db.QueryRow("SELECT 1 FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tableHasColumn(db dbQuerier, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// dbQuerier is satisfied by both *sql.DB and *sql.Tx, letting the
// schema-introspection helpers run during build (inside a Tx) and at
// open/query time (directly against the DB).
type dbQuerier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
