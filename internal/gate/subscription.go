// Package gate decides whether a user may retrieve files based on their
// membership in a required channel
package gate

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

type MembershipStatus string

const (
	StatusMember     MembershipStatus = "member"
	StatusAdmin      MembershipStatus = "administrator"
	StatusOwner      MembershipStatus = "creator"
	StatusRestricted MembershipStatus = "restricted"
	StatusLeft       MembershipStatus = "left"
	StatusKicked     MembershipStatus = "kicked"
	StatusUnknown    MembershipStatus = "unknown"
)

// Membership is what the platform knows about a user in a channel.
// IsMember only matters for restricted users.
type Membership struct {
	Status   MembershipStatus
	IsMember bool
}

func (m Membership) Joined() bool {
	switch m.Status {
	case StatusMember, StatusAdmin, StatusOwner:
		return true
	case StatusRestricted:
		return m.IsMember
	}

	return false
}

type MembershipOracle interface {
	Membership(ctx context.Context, channel string, userID int64) (Membership, error)
}

type Config struct {
	// Empty disables the gate
	Channel  string
	Timeout  time.Duration
	CacheTTL time.Duration
	// Max cached positive answers
	CacheSize int
}

// SubscriptionGate fails closed: an oracle error or an unknown status means
// "not a member". Positive answers are cached for a short while.
type SubscriptionGate struct {
	oracle  MembershipOracle
	channel string
	timeout time.Duration
	members *expirable.LRU[int64, struct{}]
}

func New(oracle MembershipOracle, cfg Config) *SubscriptionGate {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 10_000
	}

	g := &SubscriptionGate{
		oracle:  oracle,
		channel: cfg.Channel,
		timeout: cfg.Timeout,
	}

	if cfg.CacheTTL > 0 {
		g.members = expirable.NewLRU[int64, struct{}](cfg.CacheSize, nil, cfg.CacheTTL)
	}

	return g
}

func (g *SubscriptionGate) Enabled() bool {
	return g.channel != ""
}

func (g *SubscriptionGate) IsMember(ctx context.Context, userID int64) bool {
	if !g.Enabled() {
		return true
	}

	if g.members != nil {
		if _, ok := g.members.Get(userID); ok {
			return true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	m, err := g.oracle.Membership(ctx, g.channel, userID)
	if err != nil {
		zap.L().Warn("Membership check failed, treating as not subscribed",
			zap.Int64("user_id", userID),
			zap.String("channel", g.channel),
			zap.Error(err))
		return false
	}

	if !m.Joined() {
		return false
	}

	if g.members != nil {
		g.members.Add(userID, struct{}{})
	}

	return true
}

// Forget drops a cached answer, used when a user asks for a re-check
func (g *SubscriptionGate) Forget(userID int64) {
	if g.members != nil {
		g.members.Remove(userID)
	}
}
