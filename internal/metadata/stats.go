package metadata

import (
	"fmt"

	"github.com/starford/arkiv/internal/models"
)

// Stats aggregates stored byte totals into coarse type buckets.
func (db *DB) Stats() (models.StorageStats, error) {
	var s models.StorageStats
	err := db.conn.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(CASE WHEN content_type = 'application/pdf' THEN size ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN content_type LIKE '%msword%' OR content_type LIKE '%wordprocessingml%' OR content_type = 'text/plain' THEN size ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN content_type LIKE '%spreadsheetml%' OR content_type LIKE '%ms-excel%' OR content_type = 'text/csv' THEN size ELSE 0 END), 0)
		FROM files
	`).Scan(&s.FileCount, &s.TotalBytes, &s.PDFBytes, &s.DocBytes, &s.SheetBytes)
	if err != nil {
		return s, fmt.Errorf("metadata: stats: %w", err)
	}
	s.OtherBytes = s.TotalBytes - s.PDFBytes - s.DocBytes - s.SheetBytes
	return s, nil
}

// CategoryCounts returns the number of documents per category label.
func (db *DB) CategoryCounts() ([]models.CategoryCount, error) {
	rows, err := db.conn.Query(`
		SELECT category, COUNT(*) FROM files GROUP BY category ORDER BY COUNT(*) DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("metadata: category counts: %w", err)
	}
	defer rows.Close()
	var out []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
