package index

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is an opened index database: either a fresh one under
// construction by Build, or an existing one opened by Open/Update for
// querying.
type DB struct {
	conn *sql.DB
}

// openRaw opens path with modernc.org/sqlite's pure-Go driver, pragma
// WAL mode, and foreign keys on.
func openRaw(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("index: opening %s: %w", path, err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: enabling WAL on %s: %w", path, err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: enabling foreign keys on %s: %w", path, err)
	}
	return conn, nil
}

// Open opens an existing index database at path and verifies its
// schema_version matches exactly. Queries (Resolve, Find, ListDir,
// BoundingBoxes, Stat) may run concurrently against the returned DB.
func Open(path string) (*DB, error) {
	conn, err := openRaw(path)
	if err != nil {
		return nil, err
	}
	if err := checkSchemaVersion(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

func checkSchemaVersion(db dbQuerier) error {
	var got string
	err := db.QueryRow("SELECT value FROM meta WHERE key='schema_version'").Scan(&got)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: no schema_version row", ErrIncompatibleSchema)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	if got != schemaVersion {
		return fmt.Errorf("%w: have %q, want %q", ErrSchemaMismatch, got, schemaVersion)
	}
	return nil
}

func getMeta(db dbQuerier, key string) (string, bool) {
	var v string
	err := db.QueryRow("SELECT value FROM meta WHERE key=?", key).Scan(&v)
	if err != nil {
		return "", false
	}
	return v, true
}

func setMeta(exec execer, key, value string) error {
	_, err := exec.Exec("INSERT INTO meta(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value", key, value)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Refs loads every archive row as a PBORef, for building a Resolver.
func (d *DB) Refs() ([]PBORef, error) {
	rows, err := d.conn.Query("SELECT path, prefix, prefix_synthetic, source FROM pbos")
	if err != nil {
		return nil, fmt.Errorf("index: loading archive refs: %w", err)
	}
	defer rows.Close()

	var refs []PBORef
	for rows.Next() {
		var ref PBORef
		var source string
		if err := rows.Scan(&ref.Path, &ref.Prefix, &ref.Synthetic, &source); err != nil {
			return nil, fmt.Errorf("index: scanning archive ref: %w", err)
		}
		ref.Source = Source(source)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Resolver builds a Resolver over every archive row in the database.
func (d *DB) Resolver() (*Resolver, error) {
	refs, err := d.Refs()
	if err != nil {
		return nil, err
	}
	return NewResolver(refs), nil
}

// Stat summarizes the database's contents: schema/creation metadata
// plus row counts across every table.
func (d *DB) Stat() (Stats, error) {
	var s Stats
	s.Roots = make(map[Source]string)

	if v, ok := getMeta(d.conn, "schema_version"); ok {
		s.SchemaVersion = v
	}
	if v, ok := getMeta(d.conn, "created_at"); ok {
		s.CreatedAt = v
	}

	rows, err := d.conn.Query("SELECT key, value FROM meta WHERE key LIKE 'root:%'")
	if err != nil {
		return s, fmt.Errorf("index: reading roots: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return s, err
		}
		s.Roots[Source(k[len("root:"):])] = v
	}
	rows.Close()

	if err := d.conn.QueryRow("SELECT COUNT(*), COUNT(NULLIF(prefix, '')) FROM pbos").
		Scan(&s.ArchiveCount, &s.ArchivesWithPfx); err != nil {
		return s, fmt.Errorf("index: counting archives: %w", err)
	}
	if err := d.conn.QueryRow("SELECT COUNT(*), COALESCE(SUM(data_size), 0) FROM files").
		Scan(&s.FileCount, &s.TotalDataSize); err != nil {
		return s, fmt.Errorf("index: counting files: %w", err)
	}
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM p3d_models").Scan(&s.ModelCount); err != nil {
		return s, fmt.Errorf("index: counting models: %w", err)
	}
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM textures").Scan(&s.TextureCount); err != nil {
		return s, fmt.Errorf("index: counting textures: %w", err)
	}
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM audio_files").Scan(&s.AudioFileCount); err != nil {
		return s, fmt.Errorf("index: counting audio files: %w", err)
	}
	return s, nil
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
