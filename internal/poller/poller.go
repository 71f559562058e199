// Package poller waits for the backend to finish a chat turn. Submitting a
// user message returns immediately; the assistant reply shows up in the
// conversation's message sequence some time later. The poller re-fetches that
// sequence on a fixed schedule until a terminal state is observed or the
// attempt budget runs out.
package poller

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/blacktop/multipost/internal/logutil"
	"github.com/blacktop/multipost/internal/multired"
)

// State of one polling run.
type State int

const (
	// Pending means the run has not started ticking yet.
	Pending State = iota
	// Polling means ticks are in progress.
	Polling
	// Resolved means an assistant message was observed.
	Resolved
	// Exhausted means the attempt budget ran out with no assistant message.
	// It is a quiet outcome, not an error.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Polling:
		return "polling"
	case Resolved:
		return "resolved"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Defaults: 15 attempts at 2-second spacing, a 30-second overall budget.
const (
	DefaultInitialDelay = 1 * time.Second
	DefaultInterval     = 2 * time.Second
	DefaultMaxAttempts  = 15
)

// Fetch returns the authoritative message sequence for the conversation
// being watched.
type Fetch func(ctx context.Context) ([]multired.Message, error)

// Config tunes a Poller. The After hook injects a virtual clock in tests.
type Config struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
	After        func(time.Duration) <-chan time.Time
}

// Poller runs the pending/polling/resolved/exhausted state machine for one
// chat turn. Each tick is independent and idempotent: it fetches the current
// sequence and checks the last entry, so the check is level-triggered and
// insensitive to how many assistant messages accumulated between ticks.
type Poller struct {
	fetch        Fetch
	initialDelay time.Duration
	interval     backoff.BackOff
	maxAttempts  int
	after        func(time.Duration) <-chan time.Time
	state        State
}

// New builds a Poller for the given fetch function.
func New(fetch Fetch, cfg Config) *Poller {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.After == nil {
		cfg.After = time.After
	}
	return &Poller{
		fetch:        fetch,
		initialDelay: cfg.InitialDelay,
		interval:     backoff.NewConstantBackOff(cfg.Interval),
		maxAttempts:  cfg.MaxAttempts,
		after:        cfg.After,
		state:        Pending,
	}
}

// State reports the machine's current state.
func (p *Poller) State() State { return p.state }

// Wait blocks until the conversation resolves, the attempt budget is spent,
// or ctx is cancelled. On Resolved it returns the authoritative message
// sequence. Exhausted returns no messages and no error: the caller clears its
// loading state without surfacing a failure. A transport error during a tick
// counts as a failed attempt and the schedule continues.
func (p *Poller) Wait(ctx context.Context) ([]multired.Message, State, error) {
	p.state = Pending
	select {
	case <-ctx.Done():
		return nil, p.state, ctx.Err()
	case <-p.after(p.initialDelay):
	}

	p.state = Polling
	p.interval.Reset()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		messages, err := p.fetch(ctx)
		if err != nil {
			logutil.Debugf("poll attempt %d/%d failed: %v", attempt, p.maxAttempts, err)
		} else if resolved(messages) {
			p.state = Resolved
			return messages, p.state, nil
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, p.state, ctx.Err()
		case <-p.after(p.interval.NextBackOff()):
		}
	}

	logutil.Warnf("poll budget exhausted after %d attempts", p.maxAttempts)
	p.state = Exhausted
	return nil, p.state, nil
}

// resolved reports whether the sequence ends with an assistant message.
func resolved(messages []multired.Message) bool {
	if len(messages) == 0 {
		return false
	}
	return messages[len(messages)-1].Role == multired.RoleAssistant
}
