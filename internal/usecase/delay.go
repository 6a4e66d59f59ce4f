package usecase

import (
	"context"
	"time"
)

// DelayKind identifies which pause the search loop is about to take.
type DelayKind int

const (
	// DelayPacing follows every successfully fetched result.
	DelayPacing DelayKind = iota
	// DelayCooldown follows a rate limited call.
	DelayCooldown
	// DelayKeyword separates consecutive keywords.
	DelayKeyword
)

func (k DelayKind) String() string {
	switch k {
	case DelayPacing:
		return "pacing"
	case DelayCooldown:
		return "cooldown"
	case DelayKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// DelayContext describes a requested pause.
type DelayContext struct {
	Kind    DelayKind
	Keyword string // set for DelayKeyword
	Index   int    // result index for DelayPacing and DelayCooldown
}

// DelayStrategy decides how long the search loop pauses.
type DelayStrategy func(DelayContext) time.Duration

// Delays holds fixed pause durations per DelayKind.
type Delays struct {
	Pacing   time.Duration
	Cooldown time.Duration
	Keyword  time.Duration
}

// DefaultDelays returns 2s pacing, 60s cooldown and 120s between keywords.
func DefaultDelays() Delays {
	return Delays{
		Pacing:   2 * time.Second,
		Cooldown: 60 * time.Second,
		Keyword:  120 * time.Second,
	}
}

// FixedDelays returns a strategy that always answers with the durations in d.
func FixedDelays(d Delays) DelayStrategy {
	return func(c DelayContext) time.Duration {
		switch c.Kind {
		case DelayPacing:
			return d.Pacing
		case DelayCooldown:
			return d.Cooldown
		case DelayKeyword:
			return d.Keyword
		default:
			return 0
		}
	}
}

// NoDelay never pauses.
func NoDelay(DelayContext) time.Duration { return 0 }

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
