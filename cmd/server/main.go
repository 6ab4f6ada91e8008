package main

import (
	"context"
	"database/sql"
	"epsg-map-service/internal/adapters/cache"
	"epsg-map-service/internal/adapters/repositories"
	"epsg-map-service/internal/adapters/transform"
	"epsg-map-service/internal/api"
	"epsg-map-service/internal/config"
	"epsg-map-service/internal/platform/db"
	"epsg-map-service/internal/ports"
	"epsg-map-service/internal/session"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// main is the application composition root.
// It wires concrete adapters (SQLite catalog, epsg.io transforms, cache backend) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	// Initialize schema and seed the SRS catalog on startup for local runs.
	if err := initAndSeed(conn, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}

	transformCache, closeCache, err := openCache(cfg, conn)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	opts := []transform.Option{}
	if transformCache != nil {
		opts = append(opts, transform.WithCache(transformCache))
	}
	provider, err := transform.NewEPSGTransformProvider(cfg.TransServiceURL, opts...)
	if err != nil {
		log.Fatal(err)
	}

	store := session.NewStore(session.Options{
		Provider:      provider,
		Catalog:       repositories.NewSQLSRSCatalog(conn, db.DialectSQLite),
		Limiter:       rate.NewLimiter(rate.Limit(cfg.TransRate), cfg.TransBurst),
		DebounceDelay: cfg.DebounceDelay,
		DefaultLayer:  cfg.DefaultLayer,
		MapWidth:      cfg.MapWidth,
		MapHeight:     cfg.MapHeight,

		RecenterOnSRSChange: cfg.RecenterOnSRSChange,
		SessionTTL:          cfg.SessionTTL,
		MaxSessions:         cfg.MaxSessions,
	})
	defer store.Close()

	router := api.NewRouter(store)

	log.Printf("Server listening addr=:%s cache=%s", cfg.Port, cfg.CacheBackend)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go store.Run(ctx, time.Minute)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}

// openCache returns the configured transform cache, or nil when caching is off.
func openCache(cfg config.Config, sqliteConn *sql.DB) (ports.TransformCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheNone:
		return nil, noop, nil
	case config.CacheSQLite:
		return cache.NewSqliteTransformCache(sqliteConn), noop, nil
	case config.CachePostgres:
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(pg, db.DialectPostgres); err != nil {
			pg.Close()
			return nil, noop, fmt.Errorf("open cache: %w", err)
		}
		return cache.NewSQLTransformCache(pg), func() { pg.Close() }, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open cache: ping redis %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisTransformCache(client, cfg.CacheTTL), func() { client.Close() }, nil
	}
	return nil, noop, fmt.Errorf("open cache: unknown backend %q", cfg.CacheBackend)
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn, db.DialectSQLite); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, db.DialectSQLite, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
