package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bitwise74/codedrop/internal/metrics"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var ErrBroadcastRunning = errors.New("a broadcast is already running")

type SendFunc func(ctx context.Context, chatID int64, text string) error

type BroadcastConfig struct {
	// Pause after every BatchSize sends. Telegram allows ~30 messages per second
	BatchSize int
	Pause     time.Duration
}

type BroadcastResult struct {
	ID        string
	Total     int
	Sent      int
	Failed    int
	Cancelled bool
}

// Broadcaster sends one text to many chats at a fixed rate. Failed sends are
// counted and skipped, nothing is retried. Only one broadcast runs at a time.
type Broadcaster struct {
	send SendFunc
	cfg  BroadcastConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBroadcaster(send SendFunc, cfg BroadcastConfig) *Broadcaster {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 30
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}

	return &Broadcaster{send: send, cfg: cfg}
}

// Run blocks until every id was tried or ctx is cancelled
func (b *Broadcaster) Run(ctx context.Context, ids []int64, text string) BroadcastResult {
	res := BroadcastResult{ID: newJobID(), Total: len(ids)}

	zap.L().Info("Broadcast started", zap.String("broadcast_id", res.ID), zap.Int("recipients", len(ids)))

	for i, id := range ids {
		if i > 0 && i%b.cfg.BatchSize == 0 {
			if !sleepCtx(ctx, b.cfg.Pause) {
				res.Cancelled = true
				break
			}
		}

		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		if err := b.send(ctx, id, text); err != nil {
			res.Failed++
			metrics.BroadcastMessagesTotal.WithLabelValues("failed").Inc()

			zap.L().Debug("Failed to deliver broadcast message",
				zap.String("broadcast_id", res.ID),
				zap.Int64("chat_id", id),
				zap.Error(err))
			continue
		}

		res.Sent++
		metrics.BroadcastMessagesTotal.WithLabelValues("sent").Inc()
	}

	zap.L().Info("Broadcast finished",
		zap.String("broadcast_id", res.ID),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Bool("cancelled", res.Cancelled))

	return res
}

// Start runs the broadcast in the background and calls onDone with the
// result. It refuses to start while another broadcast is running.
func (b *Broadcaster) Start(ctx context.Context, ids []int64, text string, onDone func(BroadcastResult)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return ErrBroadcastRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done

	go func() {
		defer close(done)

		res := b.Run(ctx, ids, text)

		b.mu.Lock()
		b.cancel = nil
		b.done = nil
		b.mu.Unlock()
		cancel()

		if onDone != nil {
			onDone(res)
		}
	}()

	return nil
}

// Cancel stops the running broadcast and reports whether there was one
func (b *Broadcaster) Cancel() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel == nil {
		return false
	}

	b.cancel()
	return true
}

func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cancel != nil
}

// Wait blocks until the running broadcast, if any, is done
func (b *Broadcaster) Wait() {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	if done != nil {
		<-done
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func newJobID() string {
	id, err := gonanoid.New(8)
	if err != nil {
		return "unknown"
	}

	return id
}
