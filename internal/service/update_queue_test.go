package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bitwise74/codedrop/internal/metrics"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateQueuePreservesSessionOrder(t *testing.T) {
	q := NewUpdateQueue(4, 8)
	q.StartWorkerPool(context.Background())

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		for _, session := range []int64{1, 2, -100123} {
			i, session := i, session
			require.NoError(t, q.Enqueue(ctx, Job{SessionID: session, Run: func(context.Context) {
				mu.Lock()
				defer mu.Unlock()
				got[session] = append(got[session], i)
			}}))
		}
	}

	q.Stop()

	for _, session := range []int64{1, 2, -100123} {
		seq := got[session]
		require.Len(t, seq, 50)
		for i, v := range seq {
			assert.Equal(t, i, v)
		}
	}
}

func TestUpdateQueueSurvivesPanic(t *testing.T) {
	q := NewUpdateQueue(1, 1)
	q.StartWorkerPool(context.Background())

	var ran atomic.Bool
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Job{SessionID: 1, Run: func(context.Context) { panic("boom") }}))
	require.NoError(t, q.Enqueue(ctx, Job{SessionID: 1, Run: func(context.Context) { ran.Store(true) }}))

	q.Stop()
	assert.True(t, ran.Load())
}

func TestUpdateQueueClosed(t *testing.T) {
	q := NewUpdateQueue(1, 0)
	q.StartWorkerPool(context.Background())
	q.Stop()
	q.Stop()

	err := q.Enqueue(context.Background(), Job{SessionID: 1, Run: func(context.Context) {}})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestUpdateQueueEnqueueRespectsContext(t *testing.T) {
	// No workers started, so the unbuffered shard never accepts
	q := NewUpdateQueue(1, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Enqueue(ctx, Job{SessionID: 1, Run: func(context.Context) {}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func queueDepth() float64 {
	var m dto.Metric
	if err := metrics.QueueDepth.Write(&m); err != nil {
		return -1
	}
	return m.GetGauge().GetValue()
}

func TestUpdateQueueDepthGauge(t *testing.T) {
	base := queueDepth()

	q := NewUpdateQueue(1, 1)

	// Buffered but not picked up yet
	require.NoError(t, q.Enqueue(context.Background(), Job{SessionID: 1, Run: func(context.Context) {}}))
	assert.Equal(t, base+1, queueDepth())

	// Shard is full and nobody reads, the abandoned job must not be counted
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{SessionID: 1, Run: func(context.Context) {}}), context.DeadlineExceeded)
	assert.Equal(t, base+1, queueDepth())

	var seen []float64
	var mu sync.Mutex
	q.StartWorkerPool(context.Background())
	for n := 0; n < 20; n++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{SessionID: 1, Run: func(context.Context) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, queueDepth())
		}}))
	}
	q.Stop()

	assert.Equal(t, base, queueDepth())
	for _, v := range seen {
		assert.GreaterOrEqual(t, v, base)
	}
}
