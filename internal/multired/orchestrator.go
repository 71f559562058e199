package multired

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/blacktop/multipost/internal/logutil"
)

// Dispatcher issues publish requests against the backend. Implemented by the
// api client; tests substitute fakes.
type Dispatcher interface {
	PublishSingle(ctx context.Context, target Target, text string) (*SingleResponse, error)
	PublishMulti(ctx context.Context, text string, targets []Target) (*MultiResponse, error)
}

// ErrInFlight signals that a publish cycle is already running. The attempt is
// dropped silently: no request is issued and no journal entry is written.
var ErrInFlight = errors.New("publish already in flight")

// Publisher coordinates one publish cycle: precondition checks, single vs.
// multi dispatch, normalization, and journaling. At most one cycle runs at a
// time, enforced by a guard that is released on every exit path.
type Publisher struct {
	dispatcher Dispatcher
	targets    *TargetSet
	journal    *Journal
	inFlight   atomic.Bool
}

// NewPublisher wires a Publisher around a dispatcher and target set.
func NewPublisher(d Dispatcher, targets *TargetSet, journal *Journal) *Publisher {
	if journal == nil {
		journal = NewJournal()
	}
	return &Publisher{dispatcher: d, targets: targets, journal: journal}
}

// Targets exposes the selection owned by this publisher.
func (p *Publisher) Targets() *TargetSet { return p.targets }

// Journal exposes the audit log.
func (p *Publisher) Journal() *Journal { return p.journal }

// Publish runs one publication cycle for text against the current target
// selection. Preconditions are checked in order: an in-flight cycle drops the
// attempt silently; blank text and an empty selection are journaled
// rejections. Per-target failures inside a multi-target outcome do not fail
// the call; only a total dispatch failure does.
func (p *Publisher) Publish(ctx context.Context, text string) (*Report, error) {
	if p.inFlight.Load() {
		logutil.Debugf("publish dropped: cycle already in flight")
		return nil, ErrInFlight
	}

	if strings.TrimSpace(text) == "" {
		err := ValidationError{Reason: "text required"}
		p.journal.Failure(err.Reason)
		return nil, err
	}

	targets := p.targets.Members()
	if len(targets) == 0 {
		err := ValidationError{Reason: "at least one target required"}
		p.journal.Failure(err.Reason)
		return nil, err
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer p.inFlight.Store(false)

	p.journal.Submission(text, targets)

	if p.targets.Multi() {
		return p.publishMulti(ctx, text, targets)
	}
	return p.publishSingle(ctx, text, targets[0])
}

func (p *Publisher) publishSingle(ctx context.Context, text string, target Target) (*Report, error) {
	logutil.Infof("publishing to %s", target)
	resp, err := p.dispatcher.PublishSingle(ctx, target, text)
	if err != nil {
		p.journal.Failure(err.Error())
		return nil, err
	}

	result := NormalizeSingle(target, resp)
	p.journal.Success(&result, nil)
	logutil.Infof("published to %s: id=%s", target, result.PublishedID)
	return &Report{Single: &result}, nil
}

func (p *Publisher) publishMulti(ctx context.Context, text string, targets []Target) (*Report, error) {
	logutil.Infof("publishing to %d networks", len(targets))
	resp, err := p.dispatcher.PublishMulti(ctx, text, targets)
	if err != nil {
		p.journal.Failure(err.Error())
		return nil, err
	}

	outcome := NormalizeMulti(resp)
	p.journal.Success(nil, outcome)
	logutil.Infof("multi publish done: %d ok, %d failed in %.1fs",
		outcome.Summary.Succeeded, outcome.Summary.Failed, outcome.Summary.Elapsed)
	return &Report{Multi: outcome}, nil
}
