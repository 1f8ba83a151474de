package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/tooldex/internal/domain"
)

// ErrNotFound is returned when an addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// SubmissionStore persists proposed tool listings.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore creates a SubmissionStore backed by db.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionColumns = `id,
	tool_name,
	website_url,
	COALESCE(description, ''),
	COALESCE(category, ''),
	COALESCE(submitter_email, ''),
	COALESCE(NULLIF(status, ''), 'pending'),
	COALESCE(created_at, now())`

// Create validates and stores a new submission. The store assigns the id
// and timestamp; the record always enters the pending state.
func (s *SubmissionStore) Create(ctx context.Context, n *domain.NewSubmission) (*domain.Submission, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	sub := &domain.Submission{
		ID:             uuid.NewString(),
		ToolName:       n.ToolName,
		WebsiteURL:     n.WebsiteURL,
		Description:    n.Description,
		Category:       n.Category,
		SubmitterEmail: n.SubmitterEmail,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions
		 (id, tool_name, website_url, description, category, submitter_email, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.ToolName, sub.WebsiteURL, sub.Description,
		sub.Category, sub.SubmitterEmail, string(sub.Status), sub.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return sub, nil
}

// List returns every submission ordered by creation time, most recent
// first. Ties fall back to id so the order is stable. The page is
// all-or-nothing: a single bad row fails the whole call.
func (s *SubmissionStore) List(ctx context.Context) ([]domain.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []domain.Submission
	for rows.Next() {
		sub, scanErr := scanSubmission(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// Get returns the submission with the given id, or ErrNotFound.
func (s *SubmissionStore) Get(ctx context.Context, id string) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE id = $1`,
		id,
	)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateStatus persists the new status on the addressed record, leaving
// every other field untouched.
func (s *SubmissionStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var sub domain.Submission
	var status string

	err := row.Scan(
		&sub.ID,
		&sub.ToolName,
		&sub.WebsiteURL,
		&sub.Description,
		&sub.Category,
		&sub.SubmitterEmail,
		&status,
		&sub.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	// The status column is constrained, but a tolerant read still maps
	// anything unexpected to pending rather than failing the page.
	parsed, parseErr := domain.ParseStatus(status)
	if parseErr != nil {
		parsed = domain.StatusPending
	}
	sub.Status = parsed

	return &sub, nil
}
