package metadata

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/arkiv/internal/apperr"
	"github.com/starford/arkiv/internal/models"
)

// CreateFolder inserts a new folder record. Duplicate display names are
// permitted; uniqueness is enforced only on the identifier.
func (db *DB) CreateFolder(f models.Folder) error {
	_, err := db.conn.Exec(`
		INSERT OR IGNORE INTO folders (id, name, created_at) VALUES (?, ?, ?)
	`, f.ID, f.Name, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("metadata: create folder: %w", err)
	}
	return nil
}

// GetFolder returns one folder record by identifier.
func (db *DB) GetFolder(id string) (*models.Folder, error) {
	var f models.Folder
	err := db.conn.QueryRow(`SELECT id, name, created_at FROM folders WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("metadata: get folder: %w", err)
	}
	return &f, nil
}

// RenameFolder persists a new display name.
func (db *DB) RenameFolder(id, name string) error {
	res, err := db.conn.Exec(`UPDATE folders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("metadata: rename folder: %w", err)
	}
	return notFoundOnZero(res)
}

// DeleteFolder removes a folder record. Contained files are the caller's
// concern; the service rejects deletion of non-empty folders before this.
func (db *DB) DeleteFolder(id string) error {
	res, err := db.conn.Exec(`DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("metadata: delete folder: %w", err)
	}
	return notFoundOnZero(res)
}

// ListFolders returns every folder record, oldest first.
func (db *DB) ListFolders() ([]models.Folder, error) {
	rows, err := db.conn.Query(`SELECT id, name, created_at FROM folders ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("metadata: list folders: %w", err)
	}
	defer rows.Close()
	var out []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountFilesInFolder returns how many files a folder currently owns.
func (db *DB) CountFilesInFolder(id string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM files WHERE folder_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("metadata: count files: %w", err)
	}
	return n, nil
}
