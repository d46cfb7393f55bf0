// Package ratelimit keeps one token bucket per key (a user id, an IP...)
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

type Config struct {
	// Requests allowed per Period, also the burst size
	Requests int
	Period   time.Duration
	// How many keys are remembered at most
	MaxKeys int
	// Idle keys are forgotten after TTL, defaults to Period
	TTL time.Duration
}

type Limiter[K comparable] struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors *expirable.LRU[K, *rate.Limiter]
}

func New[K comparable](cfg Config) *Limiter[K] {
	if cfg.Requests <= 0 {
		cfg.Requests = 5
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 10_000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cfg.Period
	}

	return &Limiter[K]{
		limit:    rate.Every(cfg.Period / time.Duration(cfg.Requests)),
		burst:    cfg.Requests,
		visitors: expirable.NewLRU[K, *rate.Limiter](cfg.MaxKeys, nil, cfg.TTL),
	}
}

// Allow reports whether key may do one more request right now
func (l *Limiter[K]) Allow(key K) bool {
	return l.get(key).Allow()
}

func (l *Limiter[K]) get(key K) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Get doesn't extend the TTL, re-adding does
	v, ok := l.visitors.Get(key)
	if !ok {
		v = rate.NewLimiter(l.limit, l.burst)
	}
	l.visitors.Add(key, v)

	return v
}
