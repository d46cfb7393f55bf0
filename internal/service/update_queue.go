package service

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"bitwise74/codedrop/internal/metrics"

	"go.uber.org/zap"
)

var ErrQueueClosed = errors.New("update queue is closed")

type Job struct {
	SessionID int64
	Run       func(ctx context.Context)
}

// UpdateQueue is a fixed pool of workers. Jobs of one session always land on
// the same worker, so a chat's messages are handled in the order they came
// in while different chats run in parallel.
type UpdateQueue struct {
	shards []chan Job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewUpdateQueue creates a queue with the given number of workers, each
// buffering up to buffer jobs
func NewUpdateQueue(workers, buffer int) *UpdateQueue {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}

	zap.L().Debug("Initializing update queue", zap.Int("workers", workers), zap.Int("buffer", buffer))

	q := &UpdateQueue{shards: make([]chan Job, workers)}
	for i := range q.shards {
		q.shards[i] = make(chan Job, buffer)
	}

	return q
}

func (q *UpdateQueue) StartWorkerPool(ctx context.Context) {
	for _, jobs := range q.shards {
		q.wg.Add(1)
		go q.worker(ctx, jobs)
	}
}

func (q *UpdateQueue) worker(ctx context.Context, jobs <-chan Job) {
	defer q.wg.Done()

	for job := range jobs {
		metrics.QueueDepth.Dec()
		q.run(ctx, job)
	}
}

// A panicking handler must not take the whole bot down
func (q *UpdateQueue) run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Update handler panicked",
				zap.Int64("session_id", job.SessionID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	job.Run(ctx)
}

// Enqueue blocks until a worker accepts the job or ctx is done
func (q *UpdateQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	shard := q.shards[uint64(job.SessionID)%uint64(len(q.shards))]

	metrics.QueueDepth.Inc()

	select {
	case shard <- job:
		return nil
	case <-ctx.Done():
		metrics.QueueDepth.Dec()
		return ctx.Err()
	}
}

// Stop refuses new jobs, lets the workers drain what's queued and waits
// for them
func (q *UpdateQueue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, jobs := range q.shards {
		close(jobs)
	}
	q.mu.Unlock()

	q.wg.Wait()
}
