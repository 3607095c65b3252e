// Package comment provides queued, fire-and-forget comment creation.
package comment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	commentModel "github.com/codecollab/reviewd/internal/comment/model"
	"github.com/codecollab/reviewd/internal/comment/repository"
)

// DefaultQueueSize is the default buffer for pending comments.
const DefaultQueueSize = 64

// writeTimeout bounds a single comment insert once it is dequeued.
const writeTimeout = 10 * time.Second

// Queue persists comments asynchronously. Enqueue never blocks the caller;
// a full queue drops the comment and logs it.
type Queue struct {
	repo   repository.Repository
	logger *zap.SugaredLogger

	jobs chan commentModel.Comment
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewQueue creates a comment queue with the given buffer size. A size of 0
// falls back to DefaultQueueSize.
func NewQueue(repo repository.Repository, logger *zap.SugaredLogger, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		repo:   repo,
		logger: logger,
		jobs:   make(chan commentModel.Comment, size),
	}
}

// Start launches the background worker.
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.wg.Add(1)
		go q.run()
	})
}

// Stop drains pending comments and waits for the worker to exit. Comments
// enqueued after Stop are dropped.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})
	q.wg.Wait()
}

// Enqueue queues a silenced comment on the given topic. Notifications stay
// suppressed downstream via the silenced flag on the row.
func (q *Queue) Enqueue(topic, userID, body string) {
	c := commentModel.Comment{
		CommentID: uuid.NewString(),
		Topic:     topic,
		UserID:    userID,
		Body:      body,
		Silenced:  true,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warnw("comment queue stopped, dropping comment",
			"topic", topic,
			"user_id", userID,
		)
		return
	}

	select {
	case q.jobs <- c:
	default:
		q.logger.Warnw("comment queue full, dropping comment",
			"topic", topic,
			"user_id", userID,
		)
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	for c := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := q.repo.Create(ctx, &c); err != nil {
			q.logger.Errorw("failed to persist queued comment",
				"topic", c.Topic,
				"user_id", c.UserID,
				"error", err,
			)
		}
		cancel()
	}
}
