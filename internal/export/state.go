package export

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which plan files have been exported to avoid rebuilding
// unchanged workbooks.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	// One writer; the watch loop and a batch run never overlap.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS exported_files (
		path        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		output      TEXT NOT NULL,
		warnings    INTEGER NOT NULL DEFAULT 0,
		exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsExported reports whether path was exported with the same size and hash
// to output.
func (s *StateDB) IsExported(path string, size int64, hash, output string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM exported_files WHERE path = ? AND size = ? AND hash = ? AND output = ?`,
		path, size, hash, output,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkExported records that a file was successfully exported.
func (s *StateDB) MarkExported(path string, size int64, hash, output string, warnings int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exported_files (path, size, hash, output, warnings) VALUES (?, ?, ?, ?, ?)`,
		path, size, hash, output, warnings,
	)
	return err
}

// Forget drops the record for path, e.g. after the file was removed.
func (s *StateDB) Forget(path string) error {
	_, err := s.db.Exec(`DELETE FROM exported_files WHERE path = ?`, path)
	return err
}

// Output returns the workbook path recorded for path.
func (s *StateDB) Output(path string) (string, bool, error) {
	var out string
	err := s.db.QueryRow(`SELECT output FROM exported_files WHERE path = ?`, path).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// OutputOwner returns another plan file recorded as writing output, if any.
func (s *StateDB) OutputOwner(output, except string) (string, bool, error) {
	var path string
	err := s.db.QueryRow(
		`SELECT path FROM exported_files WHERE output = ? AND path != ? ORDER BY path LIMIT 1`,
		output, except,
	).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
