// Package persistence stores named maps in SQLite. Each map is kept as an
// lz4-compressed map file blob next to the metadata needed to list it
// without decoding.
package persistence

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pierrec/lz4/v4"
	_ "modernc.org/sqlite"

	"github.com/talgya/lookout/internal/mapfile"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// ErrMapNotFound is returned when no map has the requested name.
var ErrMapNotFound = errors.New("map not found")

// DB wraps a SQLite connection for map storage.
type DB struct {
	conn *sqlx.DB
}

// MapRecord describes a stored map.
type MapRecord struct {
	ID        string
	Name      string
	Width     int
	Height    int
	Version   int
	Seed      int64
	Size      int64 // Encoded map file size
	Stored    int64 // Compressed blob size
	CreatedAt time.Time
	UpdatedAt time.Time
}

type mapRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	Version   int    `db:"version"`
	Seed      int64  `db:"seed"`
	Size      int64  `db:"size"`
	Stored    int64  `db:"stored"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (r mapRow) record() MapRecord {
	return MapRecord{
		ID:        r.ID,
		Name:      r.Name,
		Width:     r.Width,
		Height:    r.Height,
		Version:   r.Version,
		Seed:      r.Seed,
		Size:      r.Size,
		Stored:    r.Stored,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC(),
	}
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		version INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		size INTEGER NOT NULL,
		stored INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_maps_updated ON maps(updated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(src []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
}

// SaveMap stores g under name, replacing any map of the same name. The
// record keeps its id and creation time across replacements.
func (db *DB) SaveMap(name string, g *world.Grid) (MapRecord, error) {
	var raw bytes.Buffer
	if err := mapfile.Encode(&raw, g); err != nil {
		return MapRecord{}, fmt.Errorf("encode map %q: %w", name, err)
	}
	data, err := compress(raw.Bytes())
	if err != nil {
		return MapRecord{}, fmt.Errorf("compress map %q: %w", name, err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return MapRecord{}, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	row := mapRow{
		ID:        uuid.NewString(),
		Name:      name,
		Width:     g.Width(),
		Height:    g.Height(),
		Version:   mapfile.Version,
		Seed:      g.Surface().Seed(),
		Size:      int64(raw.Len()),
		Stored:    int64(len(data)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	var existing mapRow
	err = tx.Get(&existing, "SELECT id, created_at FROM maps WHERE name = ?", name)
	switch {
	case err == nil:
		row.ID, row.CreatedAt = existing.ID, existing.CreatedAt
	case !errors.Is(err, sql.ErrNoRows):
		return MapRecord{}, fmt.Errorf("look up map %q: %w", name, err)
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(id, name, width, height, version, seed, size, stored, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Width, row.Height, row.Version, row.Seed,
		row.Size, row.Stored, data, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return MapRecord{}, fmt.Errorf("insert map %q: %w", name, err)
	}
	if err := saveMeta(tx, metaLastMap, name); err != nil {
		return MapRecord{}, fmt.Errorf("record last map: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return MapRecord{}, fmt.Errorf("commit map %q: %w", name, err)
	}

	slog.Info("map saved", "name", name, "id", row.ID,
		"size", humanize.Bytes(uint64(row.Size)), "stored", humanize.Bytes(uint64(row.Stored)))
	return row.record(), nil
}

// LoadMap decodes the map stored under name. The grid gets a surface built
// from the seed the map was saved with.
func (db *DB) LoadMap(name string) (*world.Grid, MapRecord, error) {
	var row struct {
		mapRow
		Data []byte `db:"data"`
	}
	err := db.conn.Get(&row, `SELECT id, name, width, height, version, seed, size, stored,
		data, created_at, updated_at FROM maps WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, MapRecord{}, fmt.Errorf("%q: %w", name, ErrMapNotFound)
	}
	if err != nil {
		return nil, MapRecord{}, fmt.Errorf("query map %q: %w", name, err)
	}

	raw, err := decompress(row.Data)
	if err != nil {
		return nil, MapRecord{}, fmt.Errorf("decompress map %q: %w", name, err)
	}
	g, err := mapfile.Decode(bytes.NewReader(raw), metrics.NewSurface(row.Seed))
	if err != nil {
		return nil, MapRecord{}, fmt.Errorf("decode map %q: %w", name, err)
	}

	slog.Info("map loaded", "name", name, "cells", humanize.Comma(int64(g.Len())))
	return g, row.record(), nil
}

// ListMaps returns every stored map, most recently updated first.
func (db *DB) ListMaps() ([]MapRecord, error) {
	var rows []mapRow
	err := db.conn.Select(&rows, `SELECT id, name, width, height, version, seed, size, stored,
		created_at, updated_at FROM maps ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	records := make([]MapRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// DeleteMap removes the map stored under name.
func (db *DB) DeleteMap(name string) error {
	res, err := db.conn.Exec("DELETE FROM maps WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete map %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%q: %w", name, ErrMapNotFound)
	}
	_, err = db.conn.Exec("DELETE FROM world_meta WHERE key = ? AND value = ?", metaLastMap, name)
	if err != nil {
		return fmt.Errorf("clear last map: %w", err)
	}
	return nil
}

// metaLastMap names the most recently saved map.
const metaLastMap = "last_map"

// saveMeta stores a key-value pair in world metadata.
func saveMeta(ex sqlx.Execer, key, value string) error {
	_, err := ex.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// getMeta retrieves a metadata value.
func (db *DB) getMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// LastMap returns the name of the most recently saved map that still
// exists, or ErrMapNotFound.
func (db *DB) LastMap() (string, error) {
	name, err := db.getMeta(metaLastMap)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMapNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query last map: %w", err)
	}
	return name, nil
}
