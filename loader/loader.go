// loader/loader.go
package loader

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"picklist/parsers"
)

//go:embed schema.sql
var schemaSQL string

// Uploader accepts a picklist file. cache.Store implements it.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// OpenDatabase opens the local SQLite file and applies the schema.
func OpenDatabase(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitDatabase applies the embedded schema.
func InitDatabase(db *sqlx.DB) error {
	zap.L().Debug("applying database schema")
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}
	return nil
}

// ImportFile uploads one picklist file from disk.
func ImportFile(ctx context.Context, up Uploader, path string) (string, error) {
	if !parsers.IsSupported(path) {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), parsers.ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	msg, err := up.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("failed to import %s: %w", filepath.Base(path), err)
	}
	return msg, nil
}

// ImportFolder imports every supported file in dir and moves each imported
// file to dir/processed. Files that fail stay where they are.
func ImportFolder(ctx context.Context, up Uploader, dir string) (imported []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read import folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !parsers.IsSupported(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if _, err := ImportFile(ctx, up, path); err != nil {
			zap.L().Warn("import failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if err := MoveToProcessed(path); err != nil {
			zap.L().Warn("failed to move imported file", zap.String("file", e.Name()), zap.Error(err))
		}
		imported = append(imported, e.Name())
	}
	return imported, nil
}

// MoveToProcessed moves path into a processed/ folder next to it.
func MoveToProcessed(path string) error {
	dest := filepath.Join(filepath.Dir(path), "processed")
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dest, filepath.Base(path)))
}
