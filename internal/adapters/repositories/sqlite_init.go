package repositories

import (
	"database/sql"
	"encoding/json"
	"epsg-map-service/internal/platform/db"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the catalog and cache schema for the given SQL dialect.
func InitSchema(conn *sql.DB, dialect string) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	floatType := "REAL"
	if dialect == db.DialectPostgres {
		floatType = "DOUBLE PRECISION"
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCatalogQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS srs_catalog (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		north %[1]s,
		west %[1]s,
		south %[1]s,
		east %[1]s
	);
	`, floatType)

	createTransformCacheQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS transform_cache (
        direction TEXT NOT NULL,
        srs TEXT NOT NULL,
        in_x %[1]s NOT NULL,
        in_y %[1]s NOT NULL,
        out_x %[1]s NOT NULL,
        out_y %[1]s NOT NULL,
        PRIMARY KEY (direction, srs, in_x, in_y)
    );
	`, floatType)

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_transform_cache_srs
    ON transform_cache(srs);
	`

	statements := []string{
		createCatalogQuery,
		createTransformCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SRSSeed is one catalog entry. BBox is the area of use as [n, w, s, e].
type SRSSeed struct {
	Code string    `json:"code"`
	Name string    `json:"name"`
	BBox []float64 `json:"bbox,omitempty"`
}

// Populate the SRS catalog from a JSON file.
func SeedFromJSON(conn *sql.DB, dialect string, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed srs catalog: read %q: %w", jsonPath, err)
	}

	var data []SRSSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed srs catalog: parse json: %w", err)
	}

	rows := make([]SRSSeed, 0, len(data))
	for i, item := range data {
		code := strings.TrimSpace(item.Code)
		if code == "" {
			return fmt.Errorf("seed srs catalog: item at index %d: code cannot be empty", i+1)
		}
		if len(item.BBox) != 0 && len(item.BBox) != 4 {
			return fmt.Errorf("seed srs catalog: code=%s: bbox must have 4 values, got %d", code, len(item.BBox))
		}
		rows = append(rows, SRSSeed{Code: code, Name: strings.TrimSpace(item.Name), BBox: item.BBox})
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("seed srs catalog: begin tx: %w", err)
	}
	defer tx.Rollback()

	ph := func(n int) string { return db.Placeholder(dialect, n) }
	query := fmt.Sprintf(`
	INSERT INTO srs_catalog (
		code,
		name,
		north,
		west,
		south,
		east
	)
	VALUES (%s, %s, %s, %s, %s, %s)
	ON CONFLICT (code) DO UPDATE
	SET name = EXCLUDED.name,
		north = EXCLUDED.north,
		west = EXCLUDED.west,
		south = EXCLUDED.south,
		east = EXCLUDED.east;
	`, ph(1), ph(2), ph(3), ph(4), ph(5), ph(6))

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed srs catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range rows {
		bbox := make([]any, 4)
		for i := range bbox {
			if len(s.BBox) == 4 {
				bbox[i] = s.BBox[i]
			}
		}
		if _, err := stmt.Exec(s.Code, s.Name, bbox[0], bbox[1], bbox[2], bbox[3]); err != nil {
			return fmt.Errorf("seed srs catalog: insert code=%s: %w", s.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed srs catalog: commit tx: %w", err)
	}

	return nil
}
