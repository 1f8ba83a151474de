// Package moderation implements the submission review workflow: listing,
// guarded status transitions, and promotion of approved submissions into
// the public catalog.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
)

// Sentinel errors. Not-found is reported via the store's sentinel so the
// boundary can always tell "no such record" apart from a bad request.
var (
	ErrInvalidStatus     = errors.New("status must be approved or rejected")
	ErrInvalidTransition = errors.New("submission is not in a state that allows this transition")
)

// SubmissionStore is the persistence contract the service depends on.
type SubmissionStore interface {
	Create(ctx context.Context, n *domain.NewSubmission) (*domain.Submission, error)
	List(ctx context.Context) ([]domain.Submission, error)
	Get(ctx context.Context, id string) (*domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// ToolStore receives approved submissions as published catalog entries.
type ToolStore interface {
	Create(ctx context.Context, tool *domain.Tool) error
}

// PublishListener is notified after a submission is promoted into the
// catalog, so downstream consumers (search index, caches) can refresh.
type PublishListener interface {
	ToolPublished(ctx context.Context)
}

// NopListener is a PublishListener that does nothing.
type NopListener struct{}

// ToolPublished does nothing.
func (NopListener) ToolPublished(context.Context) {}

// Service coordinates the moderation workflow.
type Service struct {
	submissions SubmissionStore
	tools       ToolStore
	listener    PublishListener
	logger      logger.Logger
}

// NewService creates a moderation Service. A nil listener is replaced
// with a no-op.
func NewService(
	submissions SubmissionStore,
	tools ToolStore,
	listener PublishListener,
	log logger.Logger,
) *Service {
	if listener == nil {
		listener = NopListener{}
	}
	return &Service{
		submissions: submissions,
		tools:       tools,
		listener:    listener,
		logger:      log,
	}
}

// Submit validates and stores a new pending submission.
func (s *Service) Submit(ctx context.Context, n *domain.NewSubmission) (*domain.Submission, error) {
	sub, err := s.submissions.Create(ctx, n)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission received",
		logger.String("id", sub.ID),
		logger.String("tool", sub.ToolName),
	)
	return sub, nil
}

// List returns every submission, most recent first.
func (s *Service) List(ctx context.Context) ([]domain.Submission, error) {
	return s.submissions.List(ctx)
}

// SetStatus applies a moderator decision. Only a pending submission can
// be decided; deciding an already-decided submission fails with
// ErrInvalidTransition rather than silently overwriting. Approval also
// promotes the submission into the published catalog.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.IsDecision() {
		return ErrInvalidStatus
	}

	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return err
	}

	if !sub.Status.CanTransition(status) {
		return ErrInvalidTransition
	}

	if err := s.submissions.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info("Submission decided",
		logger.String("id", id),
		logger.String("status", string(status)),
	)

	if status == domain.StatusApproved {
		if err := s.publish(ctx, sub); err != nil {
			return fmt.Errorf("promote approved submission: %w", err)
		}
	}
	return nil
}

// Reopen returns a decided submission to the pending state. This is the
// explicit reversal path; there is no implicit re-review.
func (s *Service) Reopen(ctx context.Context, id string) error {
	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return err
	}

	if !sub.Status.CanTransition(domain.StatusPending) {
		return ErrInvalidTransition
	}

	if err := s.submissions.UpdateStatus(ctx, id, domain.StatusPending); err != nil {
		return err
	}

	s.logger.Info("Submission reopened", logger.String("id", id))
	return nil
}

// publish creates a published catalog entry from an approved submission
// and notifies the listener.
func (s *Service) publish(ctx context.Context, sub *domain.Submission) error {
	tool := &domain.Tool{
		ID:          uuid.NewString(),
		Name:        sub.ToolName,
		Slug:        domain.Slugify(sub.ToolName),
		Description: sub.Description,
		Category:    sub.Category,
		WebsiteURL:  sub.WebsiteURL,
		Status:      domain.ToolStatusPublished,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.tools.Create(ctx, tool); err != nil {
		return err
	}

	s.logger.Info("Tool published",
		logger.String("tool_id", tool.ID),
		logger.String("slug", tool.Slug),
	)

	s.listener.ToolPublished(ctx)
	return nil
}
