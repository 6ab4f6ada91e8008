package cache

import (
	"context"
	"database/sql"
	"epsg-map-service/internal/platform/obs"
	"epsg-map-service/internal/ports"
	"errors"
	"fmt"
	"strings"
)

// SQLite backed cache for transform results.
// Requests are keyed exactly; callers round inputs if they want looser hits.
type SqliteTransformCache struct {
	DB *sql.DB
}

func NewSqliteTransformCache(db *sql.DB) *SqliteTransformCache {
	return &SqliteTransformCache{DB: db}
}

// Fetch the cached result for one request.
func (s *SqliteTransformCache) Get(
	ctx context.Context,
	req ports.TransformRequest,
) (_ ports.TransformResult, _ bool, err error) {
	defer obs.Time(ctx, "transform.cache.Get")(&err)

	if s.DB == nil {
		return ports.TransformResult{}, false, errors.New("transform cache: db is nil")
	}

	if strings.TrimSpace(req.SRS) == "" {
		return ports.TransformResult{}, false, errors.New("get transform cache: srs must not be empty")
	}

	q := `
	SELECT
        out_x,
        out_y
    FROM transform_cache
    WHERE direction = ?
        AND srs = ?
        AND in_x = ?
        AND in_y = ?;
	`

	var res ports.TransformResult
	err = s.DB.QueryRowContext(ctx, q, string(req.Direction), req.SRS, req.X, req.Y).Scan(&res.X, &res.Y)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.TransformResult{}, false, nil
	}
	if err != nil {
		return ports.TransformResult{}, false, fmt.Errorf("get transform cache: query transform_cache table: %w", err)
	}

	return res, true, nil
}

// Store one transform result.
func (s *SqliteTransformCache) Put(
	ctx context.Context,
	req ports.TransformRequest,
	res ports.TransformResult,
) error {
	if s.DB == nil {
		return errors.New("transform cache: db is nil")
	}

	if strings.TrimSpace(req.SRS) == "" {
		return errors.New("insert transform cache: srs must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO transform_cache (
        direction,
        srs,
        in_x,
        in_y,
        out_x,
        out_y
    )
    VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := s.DB.ExecContext(ctx, q, string(req.Direction), req.SRS, req.X, req.Y, res.X, res.Y); err != nil {
		return fmt.Errorf("insert transform cache srs=%q: %w", req.SRS, err)
	}

	return nil
}
