// Command seed inserts a small sample catalog and pending submissions
// for local development.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/tooldex/internal/config"
	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
	"github.com/jonesrussell/tooldex/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", logger.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	if err := seedTools(ctx, db); err != nil {
		log.Fatal("Failed to seed tools", logger.Error(err))
	}
	if err := seedSubmissions(ctx, db); err != nil {
		log.Fatal("Failed to seed submissions", logger.Error(err))
	}

	log.Info("Seed data inserted")
}

func seedTools(ctx context.Context, db *sql.DB) error {
	tools := storage.NewToolStore(db)

	samples := []domain.Tool{
		{
			Name:       "Draftsmith",
			Tagline:    "AI writing companion for technical docs",
			Category:   "writing",
			Tags:       []string{"writing", "docs"},
			Pricing:    "freemium",
			WebsiteURL: "https://draftsmith.example.com",
		},
		{
			Name:       "Pixelforge",
			Tagline:    "Generate production-ready icon sets",
			Category:   "design",
			Tags:       []string{"design", "icons"},
			Pricing:    "paid",
			WebsiteURL: "https://pixelforge.example.com",
		},
	}

	for i := range samples {
		t := &samples[i]
		t.ID = uuid.NewString()
		t.Slug = domain.Slugify(t.Name)
		t.Status = domain.ToolStatusPublished
		t.CreatedAt = time.Now().UTC()
		if err := tools.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func seedSubmissions(ctx context.Context, db *sql.DB) error {
	submissions := storage.NewSubmissionStore(db)

	samples := []domain.NewSubmission{
		{
			ToolName:       "Querybird",
			WebsiteURL:     "https://querybird.example.com",
			Description:    "Natural-language SQL assistant",
			Category:       "data",
			SubmitterEmail: "maker@querybird.example.com",
		},
		{
			ToolName:   "Shipnote",
			WebsiteURL: "https://shipnote.example.com",
			Category:   "productivity",
		},
	}

	for i := range samples {
		if _, err := submissions.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}
	return nil
}
