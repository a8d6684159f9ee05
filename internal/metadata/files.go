package metadata

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/models"
)

const fileColumns = `id, name, category, description, content_type, size, checksum, storage_key, folder_id, created_at`

// CreateFile inserts a new file record. The caller supplies the generated
// identifier; inserting the same identifier twice is a no-op so acknowledged
// ingestions can be retried safely.
func (db *DB) CreateFile(f models.File) error {
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO files (id, name, category, description, content_type, size, checksum, storage_key, folder_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Name, f.Category, f.Description, f.ContentType, f.Size, f.Checksum, f.StorageKey, nullableID(f.FolderID), f.CreatedAt)
	if err != nil {
		return fmt.Errorf("metadata: create file: %w", err)
	}
	return nil
}

// GetFile returns one file record by identifier.
func (db *DB) GetFile(id string) (*models.File, error) {
	row := db.conn.QueryRow(`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	return scanFile(row)
}

// GetFileByStorageKey returns the file record owning the given blob key.
func (db *DB) GetFileByStorageKey(key string) (*models.File, error) {
	row := db.conn.QueryRow(`SELECT `+fileColumns+` FROM files WHERE storage_key = ?`, key)
	return scanFile(row)
}

// RenameFile persists a new display name and storage key for a file.
func (db *DB) RenameFile(id, name, storageKey string) error {
	res, err := db.conn.Exec(`UPDATE files SET name = ?, storage_key = ? WHERE id = ?`, name, storageKey, id)
	if err != nil {
		return fmt.Errorf("metadata: rename file: %w", err)
	}
	return notFoundOnZero(res)
}

// MoveFile reassigns a file's folder membership as a single conditional
// UPDATE keyed on the expected source folder, so a concurrent move cannot be
// silently overwritten.
func (db *DB) MoveFile(id, sourceFolderID, targetFolderID string) error {
	res, err := db.conn.Exec(`
		UPDATE files SET folder_id = ?
		WHERE id = ? AND folder_id IS ?
	`, nullableID(targetFolderID), id, nullableID(sourceFolderID))
	if err != nil {
		return fmt.Errorf("metadata: move file: %w", err)
	}
	return notFoundOnZero(res)
}

// DeleteFile removes a file record.
func (db *DB) DeleteFile(id string) error {
	res, err := db.conn.Exec(`DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("metadata: delete file: %w", err)
	}
	return notFoundOnZero(res)
}

// DeleteFileByStorageKey removes the record owning the given blob key.
// Used by the watcher when a blob disappears out of band.
func (db *DB) DeleteFileByStorageKey(key string) error {
	res, err := db.conn.Exec(`DELETE FROM files WHERE storage_key = ?`, key)
	if err != nil {
		return fmt.Errorf("metadata: delete by storage key: %w", err)
	}
	return notFoundOnZero(res)
}

// ListFiles returns all files in a folder, or the unfiled bucket when
// folderID is empty.
func (db *DB) ListFiles(folderID string) ([]models.File, error) {
	rows, err := db.conn.Query(`
		SELECT `+fileColumns+` FROM files WHERE folder_id IS ? ORDER BY created_at DESC
	`, nullableID(folderID))
	if err != nil {
		return nil, fmt.Errorf("metadata: list files: %w", err)
	}
	return collectFiles(rows)
}

// ListAllFiles returns every file record in the store.
func (db *DB) ListAllFiles() ([]models.File, error) {
	rows, err := db.conn.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("metadata: list all files: %w", err)
	}
	return collectFiles(rows)
}

// ListRecentFiles returns the newest records across all folders.
func (db *DB) ListRecentFiles(limit int) ([]models.File, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := db.conn.Query(`SELECT `+fileColumns+` FROM files ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("metadata: list recent: %w", err)
	}
	return collectFiles(rows)
}

// AllStorageKeys returns every storage key known to the metadata store,
// mapped to its file identifier.
func (db *DB) AllStorageKeys() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT storage_key, id FROM files`)
	if err != nil {
		return nil, fmt.Errorf("metadata: all storage keys: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		out[key] = id
	}
	return out, rows.Err()
}

func collectFiles(rows *sql.Rows) ([]models.File, error) {
	defer rows.Close()
	var out []models.File
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFileRow(s scanner) (*models.File, error) {
	var f models.File
	var folderID sql.NullString
	err := s.Scan(&f.ID, &f.Name, &f.Category, &f.Description, &f.ContentType,
		&f.Size, &f.Checksum, &f.StorageKey, &folderID, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.FolderID = folderID.String
	return &f, nil
}

func scanFile(row *sql.Row) (*models.File, error) {
	f, err := scanFileRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("metadata: get file: %w", err)
	}
	return f, nil
}

// nullableID maps the empty unfiled identifier to NULL so the folder_id
// column can carry a real foreign key.
func nullableID(id string) any {
	if id == models.UnfiledFolderID {
		return nil
	}
	return id
}

func notFoundOnZero(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
