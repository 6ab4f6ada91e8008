package cache

import (
	"context"
	"epsg-map-service/internal/adapters/repositories"
	"epsg-map-service/internal/domain"
	"epsg-map-service/internal/platform/db"
	"epsg-map-service/internal/ports"
	"path/filepath"
	"testing"
)

func TestSqliteTransformCache(t *testing.T) {
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	c := NewSqliteTransformCache(conn)
	ctx := context.Background()
	req := ports.TransformRequest{Direction: domain.Forward, SRS: "5514", X: 14.42125, Y: 50.08755}

	if _, ok, err := c.Get(ctx, req); err != nil || ok {
		t.Fatalf("empty cache Get = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Put(ctx, req, ports.TransformResult{X: -743093.4, Y: -1043376.2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, req, ports.TransformResult{X: -743093.5, Y: -1043376.3}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := c.Get(ctx, req)
	if err != nil || !ok {
		t.Fatalf("Get after Put = ok=%v err=%v", ok, err)
	}
	if got.X != -743093.5 || got.Y != -1043376.3 {
		t.Fatalf("Get = %+v, want overwritten value", got)
	}

	inverse := req
	inverse.Direction = domain.Inverse
	if _, ok, _ := c.Get(ctx, inverse); ok {
		t.Fatal("inverse request hit the forward entry")
	}

	if err := c.Put(ctx, ports.TransformRequest{Direction: domain.Forward}, got); err == nil {
		t.Fatal("expected error for empty srs")
	}
}
