package main

import (
	"database/sql"
	"epsg-map-service/internal/adapters/repositories"
	"epsg-map-service/internal/config"
	"epsg-map-service/internal/platform/db"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	driver      string
	dbPath      string
	databaseURL string
	seedPath    string
)

var rootCmd = &cobra.Command{
	Use:   "dbtool",
	Short: "Manage the SRS catalog and transform cache schema",
	Long: `Create the schema and load the SRS catalog into SQLite or Postgres.

Examples:
  # Create tables and seed the local SQLite catalog
  dbtool seed --driver=sqlite --db=data/app.db

  # Prepare a shared Postgres transform cache
  dbtool init --driver=postgres --database-url=postgres://...`,
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, dialect, err := open()
		if err != nil {
			return err
		}
		defer conn.Close()

		log.Println("Initializing database schema...")
		if err := repositories.InitSchema(conn, dialect); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		log.Println("Schema ready.")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create tables and load the SRS catalog seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, dialect, err := open()
		if err != nil {
			return err
		}
		defer conn.Close()

		log.Println("Initializing database schema...")
		if err := repositories.InitSchema(conn, dialect); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		log.Println("Seeding database...")
		if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Println("Seeding complete.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", db.DialectSQLite, "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $DB_PATH or data/app.db)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default $DATABASE_URL)")
	seedCmd.Flags().StringVar(&seedPath, "seed", "", "SRS catalog seed file (default $SEED_PATH or data/seeds/srs.json)")

	rootCmd.AddCommand(initCmd, seedCmd)
}

func open() (*sql.DB, string, error) {
	if dbPath == "" {
		dbPath = config.Get("DB_PATH", "data/app.db")
	}
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if seedPath == "" {
		seedPath = config.Get("SEED_PATH", "data/seeds/srs.json")
	}

	switch strings.ToLower(driver) {
	case db.DialectSQLite:
		conn, err := db.OpenSQLite(dbPath)
		return conn, db.DialectSQLite, err
	case db.DialectPostgres:
		if strings.TrimSpace(databaseURL) == "" {
			return nil, "", errors.New("DATABASE_URL is required for postgres")
		}
		conn, err := db.Open(databaseURL)
		return conn, db.DialectPostgres, err
	}
	return nil, "", fmt.Errorf("unknown driver %q", driver)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
