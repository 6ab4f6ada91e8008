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

// SQLTransformCache is a Postgres-backed cache of transform results.
type SQLTransformCache struct {
	DB *sql.DB
}

func NewSQLTransformCache(db *sql.DB) *SQLTransformCache {
	return &SQLTransformCache{DB: db}
}

// Fetch the cached result for one request.
func (s *SQLTransformCache) Get(
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
	SELECT out_x, out_y
    FROM transform_cache
    WHERE direction = $1
        AND srs = $2
        AND in_x = $3
        AND in_y = $4;
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
func (s *SQLTransformCache) Put(
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
	INSERT INTO transform_cache (direction, srs, in_x, in_y, out_x, out_y)
    VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (direction, srs, in_x, in_y) DO UPDATE
	SET out_x = EXCLUDED.out_x,
		out_y = EXCLUDED.out_y;
	`

	if _, err := s.DB.ExecContext(ctx, q, string(req.Direction), req.SRS, req.X, req.Y, res.X, res.Y); err != nil {
		return fmt.Errorf("insert transform cache srs=%q: %w", req.SRS, err)
	}

	return nil
}
