// Seeds the schemes table from the JSON catalog file.
//
// Usage: go run scripts/seed_catalog.go [catalog.json]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	appConfig "scheme-recommendation-engine/internal/config"
	"scheme-recommendation-engine/internal/models"
	"scheme-recommendation-engine/internal/services/catalog"
	"scheme-recommendation-engine/internal/services/database"
	"scheme-recommendation-engine/internal/utils"
)

func main() {
	fmt.Println("=== Scheme Catalog Seeding Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	if err := utils.InitLogger(os.Getenv("LOG_LEVEL")); err != nil {
		fmt.Printf("❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	cfg, err := appConfig.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	catalogPath := cfg.CatalogPath
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Ensure the target database exists before connecting to it.
	databaseURL := cfg.DatabaseURL()
	postgresURL := strings.Replace(databaseURL, "/"+cfg.DBName, "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("📦 Creating '%s' database...\n", cfg.DBName)
		_, err = adminConn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", cfg.DBName))
		if err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Printf("✅ Database '%s' created!\n", cfg.DBName)
	} else {
		fmt.Printf("✅ Database '%s' already exists\n", cfg.DBName)
	}
	adminConn.Close(ctx)

	fmt.Println("📡 Connecting to application database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📖 Reading SQL schema file...")
	sqlBytes, err := os.ReadFile("scripts/init_database.sql")
	if err != nil {
		fmt.Printf("❌ Failed to read SQL file: %v\n", err)
		conn.Close(ctx)
		os.Exit(1)
	}

	fmt.Println("🚀 Executing database schema...")
	if _, err := conn.Exec(ctx, string(sqlBytes)); err != nil {
		fmt.Printf("❌ Failed to execute SQL: %v\n", err)
		conn.Close(ctx)
		os.Exit(1)
	}
	conn.Close(ctx)

	fmt.Println("✅ Schema ready!")
	fmt.Println()

	// Load and validate the catalog file, then upsert records.
	fmt.Printf("📖 Loading catalog from %s...\n", catalogPath)
	loaded, err := catalog.LoadFile(catalogPath)
	if err != nil {
		fmt.Printf("❌ Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	report := loaded.Report()
	fmt.Printf("✅ Catalog loaded: %d records, %d valid, %d skipped\n",
		report.TotalRecords, report.Loaded, report.Skipped)

	db, err := database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to create database pool: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewSchemeRepository(db)

	creates := make([]*models.SchemeCreate, 0, loaded.Len())
	for _, scheme := range loaded.All() {
		creates = append(creates, &models.SchemeCreate{
			ID:               scheme.ID,
			Name:             scheme.Name,
			Description:      scheme.Description,
			Ministry:         scheme.Ministry,
			Level:            scheme.Level,
			Category:         scheme.Category,
			Benefits:         scheme.Benefits,
			Documents:        scheme.Documents,
			HowToApply:       scheme.HowToApply,
			ApplyLink:        scheme.ApplyLink,
			Popularity:       scheme.Popularity,
			EligibilityRules: scheme.EligibilityRules,
		})
	}

	// One transaction for the whole batch; re-running the seeder leaves
	// existing rows untouched.
	inserted, err := repo.CreateAll(ctx, creates)
	if err != nil {
		fmt.Printf("❌ Failed to seed schemes: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("🎉 Seeding complete: %d inserted, %d already present\n", inserted, len(creates)-inserted)

	count, err := repo.Count(ctx)
	if err == nil {
		fmt.Printf("   📦 Active schemes in database: %d\n", count)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Start the API server: go run cmd/server/main.go")
	fmt.Println("  2. POST a profile to /api/recommend")
}
