package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jonesrussell/tooldex/internal/domain"
)

// ToolStore persists the published tool catalog.
type ToolStore struct {
	db *sql.DB
}

// NewToolStore creates a ToolStore backed by db.
func NewToolStore(db *sql.DB) *ToolStore {
	return &ToolStore{db: db}
}

// Create inserts a catalog entry.
func (s *ToolStore) Create(ctx context.Context, tool *domain.Tool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tools
		 (id, name, slug, tagline, description, category, tags, pricing, logo, website_url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		tool.ID, tool.Name, tool.Slug, tool.Tagline, tool.Description,
		tool.Category, pq.Array(tool.Tags), tool.Pricing, tool.Logo,
		tool.WebsiteURL, tool.Status, tool.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tool: %w", err)
	}
	return nil
}

// ListPublished returns every published tool ordered by name.
func (s *ToolStore) ListPublished(ctx context.Context) ([]domain.Tool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name,
			COALESCE(slug, ''),
			COALESCE(tagline, ''),
			COALESCE(description, ''),
			COALESCE(category, ''),
			tags,
			COALESCE(pricing, ''),
			COALESCE(logo, ''),
			COALESCE(website_url, ''),
			status,
			COALESCE(created_at, now())
		 FROM tools
		 WHERE status = $1
		 ORDER BY name`,
		domain.ToolStatusPublished,
	)
	if err != nil {
		return nil, fmt.Errorf("query tools: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tools []domain.Tool
	for rows.Next() {
		var t domain.Tool
		var tags pq.StringArray
		scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Slug, &t.Tagline, &t.Description,
			&t.Category, &tags, &t.Pricing, &t.Logo,
			&t.WebsiteURL, &t.Status, &t.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan tool: %w", scanErr)
		}
		t.Tags = tags
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tools: %w", err)
	}
	return tools, nil
}
