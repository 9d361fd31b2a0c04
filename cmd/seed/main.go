package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/domain/models/artifact"
	"quill/internal/repository/postgres"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Resolve the seed user: create a confirmed test user through the
	// Supabase admin API when a service key is available, otherwise fall
	// back to SEED_USER_ID.
	userID := ensureSeedUser(cfg)
	log.Printf("👤 Seeding as user %s", userID)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	versionRepo := postgres.NewVersionRepository(repoConfig)
	suggestionRepo := postgres.NewSuggestionRepository(repoConfig)

	// Seed a demo document with a three-version history
	log.Println("📝 Seeding demo document history...")
	gen := loremgen.New()
	documentID := uuid.New().String()
	title := gen.Sentence(3, 6)
	base := time.Now().UTC().Add(-30 * time.Minute)

	content := ""
	for i := 0; i < 3; i++ {
		content += gen.Paragraph(3, 5) + "\n\n"
		v := &artifact.Version{
			DocumentID: documentID,
			CreatedAt:  base.Add(time.Duration(i) * 10 * time.Minute),
			Title:      title,
			Kind:       artifact.KindText,
			Content:    content,
			AuthorID:   userID,
		}
		if err := versionRepo.SaveVersion(ctx, v); err != nil {
			log.Fatalf("Failed to seed version %d: %v", i+1, err)
		}
	}
	log.Printf("✅ Seeded 3 versions for document %s", documentID)

	// Seed suggestions anchored to words from the final content
	words := gen.Sentence(5, 8)
	suggestions := []artifact.Suggestion{
		{
			ID:            uuid.New().String(),
			DocumentID:    documentID,
			OriginalText:  firstWords(content, 4),
			SuggestedText: words,
			Description:   "Tighten the opening sentence",
			AuthorID:      userID,
			CreatedAt:     time.Now().UTC(),
		},
	}
	if err := suggestionRepo.SaveSuggestions(ctx, suggestions); err != nil {
		log.Fatalf("Failed to seed suggestions: %v", err)
	}
	log.Printf("✅ Seeded %d suggestion(s)", len(suggestions))

	log.Println("🎉 Seeding complete")
}

// ensureSeedUser creates (or reuses) the test user via the Supabase admin
// API; without a service key it falls back to the SEED_USER_ID env var.
func ensureSeedUser(cfg *config.Config) string {
	email := getenvDefault("SEED_USER_EMAIL", "seed@example.com")
	password := getenvDefault("SEED_USER_PASSWORD", "seed-password-123")

	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

		// Recreate for a known password; DeleteUserByEmail is idempotent
		if err := admin.DeleteUserByEmail(email); err != nil {
			log.Printf("Warning: could not delete existing seed user: %v", err)
		}

		userID, err := admin.CreateUser(email, password)
		if err == nil {
			return userID
		}
		log.Printf("Warning: could not create seed user via admin API: %v", err)
	}

	if id := os.Getenv("SEED_USER_ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// runSchema creates the version and suggestion tables
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	// Versions are append-only; (document_id, created_at) is the composite
	// identity key, so a duplicate save surfaces as a unique violation.
	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Versions + ` (
			document_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			title TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'text',
			content TEXT NOT NULL DEFAULT '',
			author_id UUID NOT NULL,
			PRIMARY KEY (document_id, created_at)
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	createSuggestions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Suggestions + ` (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL,
			original_text TEXT NOT NULL,
			suggested_text TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
			author_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSuggestions); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `versions_document ON ` + tables.Versions + `(document_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `suggestions_document ON ` + tables.Suggestions + `(document_id, created_at)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops everything this module owns
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	drops := []string{
		`DROP TABLE IF EXISTS ` + tables.Suggestions + ` CASCADE`,
		`DROP TABLE IF EXISTS ` + tables.Versions + ` CASCADE`,
	}
	for _, dropSQL := range drops {
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
	}
	return nil
}

// firstWords returns the first n whitespace-separated words of s
func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
