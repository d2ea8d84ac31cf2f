// SQLite-backed implementation of the four-table keyed store.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface
// and runs both natively and under js/wasm.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned by point lookups of absent keys.
// Callers treat it as a caller error, not something to surface to users.
var ErrNotFound = errors.New("store: not found")

// SchemaVersion is recorded in PRAGMA user_version.
// Adding a table requires bumping it.
const SchemaVersion = 2

// SQLiteStore is the SQLite-backed data store.
// Thread-safe; multi-row operations run inside SQL transactions so a
// cascade delete or bulk import commits entirely or not at all.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the four logical tables.
//
//   - `volumes` holds the volume metadata JSON, keyed by an
//     auto-incremented integer so the same archive can be imported twice.
//     The id is never embedded in the JSON value.
//   - `pages` holds raw image blobs keyed by (volume_id, page_name).
//   - `ocr` holds PageOcr JSON under the same composite key. It is a
//     separate table because page blobs never change while OCR rows are
//     rewritten on every annotation edit.
//   - `global` holds singleton JSON values; only key "settings" is used.
const schema = `
CREATE TABLE IF NOT EXISTS global (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS volumes (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
    volume_id INTEGER NOT NULL,
    page_name TEXT NOT NULL,
    data      BLOB NOT NULL,
    PRIMARY KEY (volume_id, page_name)
);

CREATE TABLE IF NOT EXISTS ocr (
    volume_id INTEGER NOT NULL,
    page_name TEXT NOT NULL,
    value     TEXT NOT NULL,
    PRIMARY KEY (volume_id, page_name)
);
`

// NewSQLiteStore creates a new in-memory store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Version reads the schema version recorded in the database file.
func (s *SQLiteStore) Version() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// =============================================================================
// Global (settings singleton)
// =============================================================================

const settingsKey = "settings"

// GetSettings retrieves the global settings, falling back to defaults
// when nothing was saved yet.
func (s *SQLiteStore) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM global WHERE key = ?", settingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}

	var settings Settings
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return DefaultSettings(), nil
	}
	return settings, nil
}

// PutSettings stores the global settings under the singleton key.
func (s *SQLiteStore) PutSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO global (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, settingsKey, string(value))
	return err
}

// =============================================================================
// Volumes
// =============================================================================

// PutVolume inserts or updates a volume row. When v.ID is zero a fresh
// key is auto-assigned and written back into v.
func (s *SQLiteStore) PutVolume(v *Volume) (VolumeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putVolume(s.db, v)
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) putVolume(e execer, v *Volume) (VolumeID, error) {
	value, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal volume: %w", err)
	}

	if v.ID == 0 {
		res, err := e.Exec("INSERT INTO volumes (value) VALUES (?)", string(value))
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		v.ID = VolumeID(id)
		return v.ID, nil
	}

	_, err = e.Exec(`
		INSERT INTO volumes (id, value) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value
	`, int64(v.ID), string(value))
	return v.ID, err
}

// GetVolume retrieves a volume by id. Returns ErrNotFound for absent keys.
func (s *SQLiteStore) GetVolume(id VolumeID) (*Volume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM volumes WHERE id = ?", int64(id)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("volume %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var v Volume
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return nil, fmt.Errorf("unmarshal volume %d: %w", id, err)
	}
	v.ID = id
	return &v, nil
}

// ListVolumes returns every volume row in insertion order.
// This is the one full-table scan the gallery view needs.
func (s *SQLiteStore) ListVolumes() ([]*Volume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, value FROM volumes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var volumes []*Volume
	for rows.Next() {
		var id int64
		var value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		var v Volume
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("unmarshal volume %d: %w", id, err)
		}
		v.ID = VolumeID(id)
		volumes = append(volumes, &v)
	}
	return volumes, rows.Err()
}

// VolumeCover pairs a volume with its cover image bytes for the gallery.
type VolumeCover struct {
	Volume *Volume
	Cover  []byte
}

// ListVolumesWithCovers scans all volumes and fetches each cover blob.
func (s *SQLiteStore) ListVolumesWithCovers() ([]VolumeCover, error) {
	volumes, err := s.ListVolumes()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]VolumeCover, 0, len(volumes))
	for _, v := range volumes {
		var data []byte
		err := s.db.QueryRow(
			"SELECT data FROM pages WHERE volume_id = ? AND page_name = ?",
			int64(v.ID), v.Cover(),
		).Scan(&data)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("cover %q of volume %d: %w", v.Cover(), v.ID, ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, VolumeCover{Volume: v, Cover: data})
	}
	return result, nil
}

// =============================================================================
// Pages (write-once blobs)
// =============================================================================

// PutPage stores a raw page image blob under (volume_id, page_name).
func (s *SQLiteStore) PutPage(id VolumeID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO pages (volume_id, page_name, data) VALUES (?, ?, ?)
		ON CONFLICT(volume_id, page_name) DO UPDATE SET data = excluded.data
	`, int64(id), name, data)
	return err
}

// GetPage retrieves a page blob by composite key.
func (s *SQLiteStore) GetPage(id VolumeID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM pages WHERE volume_id = ? AND page_name = ?",
		int64(id), name,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("page (%d, %q): %w", id, name, ErrNotFound)
	}
	return data, err
}

// PageCount returns how many page rows reference the volume.
func (s *SQLiteStore) PageCount(id VolumeID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM pages WHERE volume_id = ?", int64(id)).Scan(&count)
	return count, err
}

// =============================================================================
// OCR
// =============================================================================

// PutOCR stores the PageOcr row under (volume_id, page_name).
// Unlike pages, these rows are rewritten on every annotation edit.
func (s *SQLiteStore) PutOCR(id VolumeID, name string, ocr PageOcr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putOCR(s.db, id, name, ocr)
}

func (s *SQLiteStore) putOCR(e execer, id VolumeID, name string, ocr PageOcr) error {
	value, err := json.Marshal(ocr)
	if err != nil {
		return fmt.Errorf("marshal ocr (%d, %q): %w", id, name, err)
	}
	_, err = e.Exec(`
		INSERT INTO ocr (volume_id, page_name, value) VALUES (?, ?, ?)
		ON CONFLICT(volume_id, page_name) DO UPDATE SET value = excluded.value
	`, int64(id), name, string(value))
	return err
}

// GetOCR retrieves the PageOcr row by composite key.
func (s *SQLiteStore) GetOCR(id VolumeID, name string) (PageOcr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getOCR(id, name)
}

func (s *SQLiteStore) getOCR(id VolumeID, name string) (PageOcr, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT value FROM ocr WHERE volume_id = ? AND page_name = ?",
		int64(id), name,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return PageOcr{}, fmt.Errorf("ocr (%d, %q): %w", id, name, ErrNotFound)
	}
	if err != nil {
		return PageOcr{}, err
	}

	var ocr PageOcr
	if err := json.Unmarshal([]byte(value), &ocr); err != nil {
		return PageOcr{}, fmt.Errorf("unmarshal ocr (%d, %q): %w", id, name, err)
	}
	return ocr, nil
}

// GetPageAndOCR fetches the associated rows from pages and ocr, which
// share the same composite key.
func (s *SQLiteStore) GetPageAndOCR(id VolumeID, name string) ([]byte, PageOcr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM pages WHERE volume_id = ? AND page_name = ?",
		int64(id), name,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, PageOcr{}, fmt.Errorf("page (%d, %q): %w", id, name, ErrNotFound)
	}
	if err != nil {
		return nil, PageOcr{}, err
	}

	ocr, err := s.getOCR(id, name)
	if err != nil {
		return nil, PageOcr{}, err
	}
	return data, ocr, nil
}

// OCRCount returns how many ocr rows reference the volume.
func (s *SQLiteStore) OCRCount(id VolumeID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ocr WHERE volume_id = ?", int64(id)).Scan(&count)
	return count, err
}

// =============================================================================
// Multi-table transactions
// =============================================================================

// InsertVolume stages a volume row plus all of its page and OCR rows in
// a single transaction. The caller must supply bytes and OCR for every
// declared (page_name, ocr_name) pair; a missing entry aborts the whole
// insert so no partial volume is ever left behind.
func (s *SQLiteStore) InsertVolume(v *Volume, pages map[string][]byte, ocrs map[string]PageOcr) (VolumeID, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	for _, pair := range v.Pages {
		if _, ok := pages[pair.Name]; !ok {
			return 0, fmt.Errorf("insert volume %q: no bytes for page %q", v.Title, pair.Name)
		}
		if _, ok := ocrs[pair.Name]; !ok {
			return 0, fmt.Errorf("insert volume %q: no ocr for page %q", v.Title, pair.Name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := s.putVolume(tx, v)
	if err != nil {
		return 0, err
	}
	for _, pair := range v.Pages {
		if _, err := tx.Exec(
			"INSERT INTO pages (volume_id, page_name, data) VALUES (?, ?, ?)",
			int64(id), pair.Name, pages[pair.Name],
		); err != nil {
			return 0, err
		}
		if err := s.putOCR(tx, id, pair.Name, ocrs[pair.Name]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteVolume cascade deletes the volume with matching id, removing
// every page and ocr row that references it before the volume row
// itself, all in one transaction.
func (s *SQLiteStore) DeleteVolume(id VolumeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pages WHERE volume_id = ?", int64(id)); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM ocr WHERE volume_id = ?", int64(id)); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM volumes WHERE id = ?", int64(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("volume %d: %w", id, ErrNotFound)
	}

	return tx.Commit()
}
