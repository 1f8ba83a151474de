package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/tooldex/internal/domain"
	"github.com/jonesrussell/tooldex/internal/logger"
)

const (
	// columnsPerRow is the number of columns inserted per click event row.
	columnsPerRow = 4

	// insertBatchSize is the maximum number of rows per INSERT statement.
	insertBatchSize = 50

	// flushTimeout is the context timeout for each flush operation.
	flushTimeout = 5 * time.Second
)

// Buffer is a channel-based event buffer for non-blocking click ingestion.
// The redirect path never waits on the database.
type Buffer struct {
	events chan domain.ClickEvent
	closed chan struct{}
	once   sync.Once
}

// NewBuffer creates a buffer with a buffered channel of the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		events: make(chan domain.ClickEvent, capacity),
		closed: make(chan struct{}),
	}
}

// Send performs a non-blocking send of an event into the buffer.
// It returns false if the buffer channel is full.
func (b *Buffer) Send(event domain.ClickEvent) bool {
	select {
	case b.events <- event:
		return true
	default:
		return false
	}
}

// Len returns the number of events currently in the buffer channel.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Close signals the buffer to stop accepting events.
// It is safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}

// ClickStore manages buffered writes of click events to PostgreSQL.
type ClickStore struct {
	db             *sql.DB
	buffer         *Buffer
	log            logger.Logger
	flushInterval  time.Duration
	flushThreshold int
	wg             sync.WaitGroup
}

// NewClickStore creates a ClickStore that reads events from buffer and
// batch-inserts them.
func NewClickStore(
	db *sql.DB,
	buffer *Buffer,
	log logger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *ClickStore {
	return &ClickStore{
		db:             db,
		buffer:         buffer,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// Start launches the background goroutine that reads events and flushes batches.
func (s *ClickStore) Start() {
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop signals the buffer to close and waits for the flush goroutine to finish.
func (s *ClickStore) Stop() {
	s.buffer.Close()
	s.wg.Wait()
}

// flushLoop accumulates a batch and flushes when it reaches flushThreshold
// or the flushInterval ticker fires.
func (s *ClickStore) flushLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ClickEvent, 0, s.flushThreshold)

	for {
		select {
		case event := <-s.buffer.events:
			batch = append(batch, event)
			if len(batch) >= s.flushThreshold {
				s.flush(batch)
				batch = make([]domain.ClickEvent, 0, s.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = make([]domain.ClickEvent, 0, s.flushThreshold)
			}

		case <-s.buffer.closed:
			s.drain(&batch)
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

// drain reads all remaining events from the buffer channel into the batch.
func (s *ClickStore) drain(batch *[]domain.ClickEvent) {
	for {
		select {
		case event := <-s.buffer.events:
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

// flush writes a batch of events to PostgreSQL in chunks of insertBatchSize.
func (s *ClickStore) flush(batch []domain.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for start := 0; start < len(batch); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(batch) {
			end = len(batch)
		}

		if err := s.batchInsert(ctx, batch[start:end]); err != nil {
			s.log.Error("Failed to insert click events",
				logger.Error(err),
				logger.Int("batch_size", end-start),
			)
		}
	}

	s.log.Debug("Flushed click events",
		logger.Int("total", len(batch)),
	)
}

// batchInsert builds and executes a single INSERT statement with multiple
// value tuples.
func (s *ClickStore) batchInsert(ctx context.Context, events []domain.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	args := make([]any, 0, len(events)*columnsPerRow)
	var sb strings.Builder

	sb.WriteString("INSERT INTO click_events (tool_id, destination_hash, user_agent_hash, clicked_at) VALUES ")

	for i := range events {
		if i > 0 {
			sb.WriteString(", ")
		}

		base := i * columnsPerRow
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4)

		args = append(args,
			events[i].ToolID, events[i].DestinationHash,
			events[i].UserAgentHash, events[i].ClickedAt,
		)
	}

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return fmt.Errorf("exec batch insert: %w", err)
	}

	return nil
}
