// # internal/graph/symbol_store.go
package graph

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pawnlens/internal/parser"
)

const sqliteDriverName = "sqlite"

// SQLiteSnapshotStore persists parsed File Item Tables keyed by identity and
// content hash, so a restart can skip re-extracting files whose text has not
// changed. Built-in tables are the main beneficiary; stdlib trees are large
// and effectively static.
type SQLiteSnapshotStore struct {
	db         *sql.DB
	generation string
	loadStmt   *sql.Stmt
}

// HashText fingerprints file contents for the unchanged-file check.
func HashText(text string) uint64 {
	return xxhash.Sum64String(text)
}

func OpenSnapshotStore(path string) (*SQLiteSnapshotStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("snapshot store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("snapshot store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping snapshot store %q: %w", cleanPath, err)
	}

	if err := migrateSnapshotSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	loadStmt, err := db.Prepare(`SELECT blob FROM snapshots WHERE uri = ? AND content_hash = ?`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare snapshot load stmt: %w", err)
	}

	return &SQLiteSnapshotStore{
		db:         db,
		generation: uuid.NewString(),
		loadStmt:   loadStmt,
	}, nil
}

// Generation identifies the store session that last wrote each row.
func (s *SQLiteSnapshotStore) Generation() string {
	if s == nil {
		return ""
	}
	return s.generation
}

func (s *SQLiteSnapshotStore) SaveTable(table *parser.FileItemTable, contentHash uint64) error {
	if s == nil || s.db == nil || table == nil {
		return nil
	}
	blob, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshal snapshot for %q: %w", table.URI, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (uri, builtin, content_hash, generation, blob) VALUES (?, ?, ?, ?, ?)`,
		table.URI, boolToInt(table.IsBuiltIn), hashKey(contentHash), s.generation, blob,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot for %q: %w", table.URI, err)
	}
	return nil
}

// LoadTable returns the stored table for uri when the content hash still
// matches. A miss (absent row or stale hash) is not an error.
func (s *SQLiteSnapshotStore) LoadTable(uri string, contentHash uint64) (*parser.FileItemTable, bool, error) {
	if s == nil || s.db == nil || s.loadStmt == nil {
		return nil, false, fmt.Errorf("snapshot store not initialized")
	}
	var blob []byte
	err := s.loadStmt.QueryRow(uri, hashKey(contentHash)).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load snapshot for %q: %w", uri, err)
	}
	var table parser.FileItemTable
	if err := json.Unmarshal(blob, &table); err != nil {
		return nil, false, fmt.Errorf("unmarshal snapshot for %q: %w", uri, err)
	}
	table.RebuildIndex()
	return &table, true, nil
}

// Prune drops rows whose identity is no longer part of the index.
func (s *SQLiteSnapshotStore) Prune(keep []string) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot prune tx: %w", err)
	}
	if len(keep) == 0 {
		if _, err := tx.Exec(`DELETE FROM snapshots`); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear snapshots for empty identity set: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit snapshot prune tx: %w", err)
		}
		return nil
	}

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS current_uris (uri TEXT PRIMARY KEY)`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create temp uri table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM current_uris`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear temp uri table: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO current_uris (uri) VALUES (?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare temp uri insert: %w", err)
	}
	for _, uri := range keep {
		if _, err := stmt.Exec(uri); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert temp uri: %w", err)
		}
	}
	_ = stmt.Close()
	if _, err := tx.Exec(`DELETE FROM snapshots WHERE uri NOT IN (SELECT uri FROM current_uris)`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete stale snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot prune tx: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.loadStmt != nil {
		_ = s.loadStmt.Close()
	}
	return s.db.Close()
}

func migrateSnapshotSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)
	if version >= 1 {
		return nil
	}
	_, err := db.Exec(`
CREATE TABLE snapshots (
  uri TEXT NOT NULL PRIMARY KEY,
  builtin INTEGER NOT NULL DEFAULT 0,
  content_hash TEXT NOT NULL,
  generation TEXT NOT NULL DEFAULT '',
  blob BLOB NOT NULL
);
CREATE INDEX idx_snapshots_builtin ON snapshots(builtin);

PRAGMA user_version = 1;
`)
	if err != nil {
		return fmt.Errorf("create snapshot schema: %w", err)
	}
	return nil
}

// hashKey stores the hash as text; sqlite integers are signed 64-bit and a
// top-bit xxhash value would not round-trip.
func hashKey(h uint64) string {
	return strconv.FormatUint(h, 16)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
