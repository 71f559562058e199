// Package chat drives the conversational flow: optimistic local messages,
// submission with the selected networks attached, and poll-until-assistant
// reconciliation against the backend's authoritative sequence.
package chat

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/blacktop/multipost/internal/api"
	"github.com/blacktop/multipost/internal/logutil"
	"github.com/blacktop/multipost/internal/multired"
	"github.com/blacktop/multipost/internal/poller"
)

// Backend is the slice of the api client the session needs.
type Backend interface {
	Conversations(ctx context.Context) ([]multired.Conversation, error)
	Conversation(ctx context.Context, id int64) (*api.ConversationDetail, error)
	PostMessage(ctx context.Context, conversationID int64, role, content string, networks []multired.Target) (*multired.Message, error)
}

// Session owns one conversation's message sequence plus the cached
// conversation list. Messages are append-only locally and replaced wholesale
// whenever the authoritative sequence is fetched.
type Session struct {
	backend       Backend
	conv          multired.Conversation
	targets       *multired.TargetSet
	pollCfg       poller.Config
	messages      []multired.Message
	conversations []multired.Conversation
	busy          atomic.Bool
}

// NewSession opens a session over an existing conversation.
func NewSession(backend Backend, conv multired.Conversation, targets *multired.TargetSet, pollCfg poller.Config) *Session {
	return &Session{backend: backend, conv: conv, targets: targets, pollCfg: pollCfg}
}

// Conversation returns the conversation this session is bound to.
func (s *Session) Conversation() multired.Conversation { return s.conv }

// Messages returns the current local message sequence.
func (s *Session) Messages() []multired.Message {
	return append([]multired.Message(nil), s.messages...)
}

// Conversations returns the cached conversation list.
func (s *Session) Conversations() []multired.Conversation {
	return append([]multired.Conversation(nil), s.conversations...)
}

// Refresh fetches the conversation detail and the conversation list
// concurrently and replaces the local copies.
func (s *Session) Refresh(ctx context.Context) error {
	var (
		detail *api.ConversationDetail
		list   []multired.Conversation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = s.backend.Conversation(gctx, s.conv.ID)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = s.backend.Conversations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.conv = detail.Conversation
	s.messages = detail.Messages
	s.conversations = list
	return nil
}

// Send submits a user message carrying the selected networks, appends it
// optimistically, then polls until the assistant reply lands or the attempt
// budget runs out. On resolve the local sequence is replaced wholesale with
// the authoritative one and the conversation list is refreshed. An exhausted
// poll is not an error: the sequence keeps the optimistic message and the
// caller's loading state simply clears.
func (s *Session) Send(ctx context.Context, content string) (poller.State, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return poller.Pending, multired.ErrInFlight
	}
	defer s.busy.Store(false)

	if strings.TrimSpace(content) == "" {
		return poller.Pending, multired.ValidationError{Reason: "text required"}
	}

	s.messages = append(s.messages, multired.Message{Role: multired.RoleUser, Content: content})

	if _, err := s.backend.PostMessage(ctx, s.conv.ID, multired.RoleUser, content, s.targets.Members()); err != nil {
		return poller.Pending, err
	}

	p := poller.New(func(ctx context.Context) ([]multired.Message, error) {
		detail, err := s.backend.Conversation(ctx, s.conv.ID)
		if err != nil {
			return nil, err
		}
		return detail.Messages, nil
	}, s.pollCfg)

	messages, state, err := p.Wait(ctx)
	if err != nil {
		return state, err
	}
	if state == poller.Resolved {
		s.messages = messages
		if list, err := s.backend.Conversations(ctx); err == nil {
			s.conversations = list
		} else {
			logutil.Debugf("conversation list refresh failed: %v", err)
		}
	}
	return state, nil
}
