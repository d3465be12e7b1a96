package watcher

import (
	"math/rand"
	"sync"
	"time"
)

type Rand interface {
	Intn(n int) int
}

type PlannerConfig struct {
	// NextCheck is the base delay between checks of a pending order.
	NextCheck time.Duration // default: 1 minute
	// Jitter spreads checks of sessions created together.
	Jitter time.Duration // default: 10 seconds

	// AbandonAfter is measured from session creation.
	AbandonAfter time.Duration // default: 30 minutes

	Backoff1 time.Duration // default: 30 seconds
	Backoff2 time.Duration // default: 1 minute
	Backoff3 time.Duration // default: 2 minutes
	Backoff4 time.Duration // default: 5 minutes
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		NextCheck:    1 * time.Minute,
		Jitter:       10 * time.Second,
		AbandonAfter: 30 * time.Minute,

		Backoff1: 30 * time.Second,
		Backoff2: 1 * time.Minute,
		Backoff3: 2 * time.Minute,
		Backoff4: 5 * time.Minute,
	}
}

// Planner is shared by the watcher goroutines; mu guards r.
type Planner struct {
	cfg PlannerConfig

	mu sync.Mutex
	r  Rand
}

func NewPlanner(cfg PlannerConfig, r Rand) *Planner {
	def := DefaultPlannerConfig()
	if cfg.NextCheck <= 0 {
		cfg.NextCheck = def.NextCheck
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}
	if cfg.AbandonAfter <= 0 {
		cfg.AbandonAfter = def.AbandonAfter
	}
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Backoff4 <= 0 {
		cfg.Backoff4 = def.Backoff4
	}
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{cfg: cfg, r: r}
}

func (p *Planner) NextCheckDelay() time.Duration {
	sec := int(p.cfg.Jitter.Seconds())
	if sec <= 0 {
		return p.cfg.NextCheck
	}
	p.mu.Lock()
	n := p.r.Intn(sec + 1)
	p.mu.Unlock()
	return p.cfg.NextCheck + time.Duration(n)*time.Second
}

func (p *Planner) BackoffDelay(nextFailCount int32) time.Duration {
	switch {
	case nextFailCount <= 1:
		return p.cfg.Backoff1
	case nextFailCount == 2:
		return p.cfg.Backoff2
	case nextFailCount == 3:
		return p.cfg.Backoff3
	default:
		return p.cfg.Backoff4
	}
}

// Stale reports whether a session created at createdAt should be given up.
func (p *Planner) Stale(createdAt, now time.Time) bool {
	return !createdAt.IsZero() && now.Sub(createdAt) >= p.cfg.AbandonAfter
}
