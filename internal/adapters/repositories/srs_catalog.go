package repositories

import (
	"context"
	"database/sql"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/platform/db"
	"errors"
	"fmt"
	"strings"
)

// SQL-backed implementation of the SRSCatalog port.
type SQLSRSCatalog struct {
	DB      *sql.DB
	Dialect string
}

func NewSQLSRSCatalog(conn *sql.DB, dialect string) *SQLSRSCatalog {
	return &SQLSRSCatalog{DB: conn, Dialect: dialect}
}

// Resolve one SRS code to its name and area of use.
func (s *SQLSRSCatalog) Lookup(ctx context.Context, code string) (domain.SRSSelection, error) {
	if s.DB == nil {
		return domain.SRSSelection{}, errors.New("srs catalog: DB is nil")
	}

	code = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(code)), "EPSG:")
	if code == "" {
		return domain.SRSSelection{}, fmt.Errorf("lookup srs %q: %w", code, domain.ErrSRSNotFound)
	}

	query := fmt.Sprintf(`
	SELECT
		name,
		north,
		west,
		south,
		east
	FROM srs_catalog
	WHERE code = %s;
	`, db.Placeholder(s.Dialect, 1))

	var name string
	var north, west, south, east sql.NullFloat64
	err := s.DB.QueryRowContext(ctx, query, code).Scan(&name, &north, &west, &south, &east)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SRSSelection{}, fmt.Errorf("lookup srs %q: %w", code, domain.ErrSRSNotFound)
	}
	if err != nil {
		return domain.SRSSelection{}, fmt.Errorf("lookup srs %q: query srs_catalog table: %w", code, err)
	}

	sel := domain.SRSSelection{Code: code, Name: name}
	if north.Valid && west.Valid && south.Valid && east.Valid {
		b := domain.BoundFromNWSE([4]float64{north.Float64, west.Float64, south.Float64, east.Float64})
		sel.BBox = &b
	}

	return sel, nil
}
