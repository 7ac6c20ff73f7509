package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"recruitflow/internal/logger"
	"recruitflow/internal/model"
	"recruitflow/internal/repository"
)

const (
	activityBatchSize     = 10
	activityFlushInterval = time.Second
	activityBufferSize    = 100
)

// ActivityService records the audit trail asynchronously.
type ActivityService interface {
	// Record queues an entry. It never blocks the caller for long and never fails.
	Record(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID uuid.UUID, details string)
	List(ctx context.Context, opts repository.ListOptions) (*Page[model.ActivityLog], error)
	// Close flushes queued entries and stops the worker.
	Close()
}

type activityService struct {
	repo    repository.ActivityLogRepository
	entries chan model.ActivityLog

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewActivityService starts the background writer.
func NewActivityService(repo repository.ActivityLogRepository) ActivityService {
	s := &activityService{
		repo:    repo,
		entries: make(chan model.ActivityLog, activityBufferSize),
		done:    make(chan struct{}),
	}
	go s.worker()
	return s
}

// worker writes entries in batches, flushing on size or on the ticker.
func (s *activityService) worker() {
	defer close(s.done)

	batch := make([]model.ActivityLog, 0, activityBatchSize)
	ticker := time.NewTicker(activityFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		err := s.repo.CreateBatch(context.Background(), batch)
		logger.WorkerLog("activity", "flush", err)
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-s.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= activityBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *activityService) Record(ctx context.Context, actorID *uuid.UUID, action, entityType string, entityID uuid.UUID, details string) {
	entry := model.ActivityLog{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.entries <- entry:
	default:
		// Channel full, write synchronously.
		if err := s.repo.Create(context.WithoutCancel(ctx), &entry); err != nil {
			logger.WithError(err).Error("failed to write activity log", "action", action)
		}
	}
}

func (s *activityService) List(ctx context.Context, opts repository.ListOptions) (*Page[model.ActivityLog], error) {
	entries, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newPage(entries, total, opts), nil
}

func (s *activityService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()
	<-s.done
}

// actorRef returns a pointer suitable for ActivityLog.ActorID.
func actorRef(a Actor) *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}
