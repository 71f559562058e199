package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blacktop/multipost/internal/multired"
)

// instant is a virtual clock: every wait elapses immediately.
func instant(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func userMsg(content string) multired.Message {
	return multired.Message{Role: multired.RoleUser, Content: content}
}

func assistantMsg(content string) multired.Message {
	return multired.Message{Role: multired.RoleAssistant, Content: content}
}

func TestWaitResolvesOnAssistantMessage(t *testing.T) {
	attempts := 0
	fetch := func(ctx context.Context) ([]multired.Message, error) {
		attempts++
		if attempts < 3 {
			return []multired.Message{userMsg("publish this")}, nil
		}
		return []multired.Message{userMsg("publish this"), assistantMsg("done")}, nil
	}

	p := New(fetch, Config{After: instant})
	messages, state, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != Resolved {
		t.Fatalf("state = %v", state)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(messages) != 2 || messages[1].Content != "done" {
		t.Errorf("messages = %+v", messages)
	}
}

// The check is level-triggered: only the final message's role matters, however
// many messages accumulated between ticks.
func TestWaitIgnoresIntermediateMessages(t *testing.T) {
	fetch := func(ctx context.Context) ([]multired.Message, error) {
		return []multired.Message{
			userMsg("one"),
			assistantMsg("working on it"),
			userMsg("two"),
		}, nil
	}

	p := New(fetch, Config{MaxAttempts: 2, After: instant})
	_, state, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != Exhausted {
		t.Fatalf("state = %v, want Exhausted when last message is the user's", state)
	}
}

func TestWaitExhaustsQuietly(t *testing.T) {
	attempts := 0
	fetch := func(ctx context.Context) ([]multired.Message, error) {
		attempts++
		return []multired.Message{userMsg("pending")}, nil
	}

	p := New(fetch, Config{After: instant})
	messages, state, err := p.Wait(context.Background())

	if err != nil {
		t.Fatalf("exhaustion surfaced as error: %v", err)
	}
	if state != Exhausted {
		t.Fatalf("state = %v", state)
	}
	if messages != nil {
		t.Errorf("messages = %+v, want nil", messages)
	}
	if attempts != DefaultMaxAttempts {
		t.Errorf("attempts = %d, want %d", attempts, DefaultMaxAttempts)
	}
	if p.State() != Exhausted {
		t.Errorf("poller state = %v", p.State())
	}
}

func TestWaitCountsFetchErrors(t *testing.T) {
	attempts := 0
	fetch := func(ctx context.Context) ([]multired.Message, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	p := New(fetch, Config{MaxAttempts: 4, After: instant})
	_, state, err := p.Wait(context.Background())

	if err != nil {
		t.Fatalf("transport errors must not abort the run: %v", err)
	}
	if state != Exhausted {
		t.Fatalf("state = %v", state)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}

func TestWaitRecoversAfterFetchError(t *testing.T) {
	attempts := 0
	fetch := func(ctx context.Context) ([]multired.Message, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("temporary")
		}
		return []multired.Message{assistantMsg("done")}, nil
	}

	p := New(fetch, Config{After: instant})
	_, state, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != Resolved {
		t.Fatalf("state = %v", state)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestWaitHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(func(ctx context.Context) ([]multired.Message, error) {
		t.Fatal("fetch ran despite cancelled context")
		return nil, nil
	}, Config{})

	_, _, err := p.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Pending, "pending"},
		{Polling, "polling"},
		{Resolved, "resolved"},
		{Exhausted, "exhausted"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
