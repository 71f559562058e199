package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blacktop/multipost/internal/api"
	"github.com/blacktop/multipost/internal/multired"
	"github.com/blacktop/multipost/internal/poller"
)

type fakeBackend struct {
	conv     multired.Conversation
	messages []multired.Message
	list     []multired.Conversation

	posted      []postedMessage
	postErr     error
	fetchErr    error
	replyAfter  int // fetches before the assistant reply appears
	fetchCount  int
	assistantAt string
}

type postedMessage struct {
	conversationID int64
	role, content  string
	networks       []multired.Target
}

func (f *fakeBackend) Conversations(ctx context.Context) ([]multired.Conversation, error) {
	return f.list, nil
}

func (f *fakeBackend) Conversation(ctx context.Context, id int64) (*api.ConversationDetail, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.fetchCount++
	messages := append([]multired.Message(nil), f.messages...)
	if f.assistantAt != "" && f.fetchCount > f.replyAfter {
		messages = append(messages, multired.Message{
			ID: 99, Role: multired.RoleAssistant, Content: f.assistantAt,
		})
	}
	return &api.ConversationDetail{Conversation: f.conv, Messages: messages}, nil
}

func (f *fakeBackend) PostMessage(ctx context.Context, conversationID int64, role, content string, networks []multired.Target) (*multired.Message, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posted = append(f.posted, postedMessage{conversationID, role, content, networks})
	f.messages = append(f.messages, multired.Message{ID: int64(len(f.messages) + 1), Role: role, Content: content})
	return &f.messages[len(f.messages)-1], nil
}

func instant(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newTestSession(backend *fakeBackend, targets ...multired.Target) *Session {
	return NewSession(backend, backend.conv, multired.NewTargetSet(targets...), poller.Config{
		MaxAttempts: 3,
		After:       instant,
	})
}

func TestSendResolvesWithAssistantReply(t *testing.T) {
	backend := &fakeBackend{
		conv:        multired.Conversation{ID: 5, Title: "enrollment"},
		assistantAt: "published to facebook",
	}
	session := newTestSession(backend, multired.Facebook, multired.Instagram)

	state, err := session.Send(context.Background(), "publish the enrollment notice")
	if err != nil {
		t.Fatal(err)
	}
	if state != poller.Resolved {
		t.Fatalf("state = %v", state)
	}

	if len(backend.posted) != 1 {
		t.Fatalf("posted = %d messages", len(backend.posted))
	}
	post := backend.posted[0]
	if post.conversationID != 5 || post.role != multired.RoleUser {
		t.Errorf("posted = %+v", post)
	}
	if len(post.networks) != 2 {
		t.Errorf("networks = %v", post.networks)
	}

	messages := session.Messages()
	last := messages[len(messages)-1]
	if last.Role != multired.RoleAssistant || last.Content != "published to facebook" {
		t.Errorf("last message = %+v", last)
	}
}

func TestSendExhaustedKeepsOptimisticMessage(t *testing.T) {
	backend := &fakeBackend{conv: multired.Conversation{ID: 5}}
	session := newTestSession(backend, multired.Facebook)

	state, err := session.Send(context.Background(), "still working")
	if err != nil {
		t.Fatal(err)
	}
	if state != poller.Exhausted {
		t.Fatalf("state = %v", state)
	}

	messages := session.Messages()
	if len(messages) != 1 || messages[0].Content != "still working" {
		t.Errorf("messages = %+v, want the optimistic user message kept", messages)
	}
}

func TestSendRejectsBlankContent(t *testing.T) {
	backend := &fakeBackend{conv: multired.Conversation{ID: 5}}
	session := newTestSession(backend, multired.Facebook)

	_, err := session.Send(context.Background(), "  ")
	var verr multired.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if len(backend.posted) != 0 {
		t.Error("blank message reached the backend")
	}
}

func TestSendPostFailureSurfaces(t *testing.T) {
	backend := &fakeBackend{
		conv:    multired.Conversation{ID: 5},
		postErr: errors.New("boom"),
	}
	session := newTestSession(backend, multired.Facebook)

	if _, err := session.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected post error")
	}

	// guard released: a following send goes through
	backend.postErr = nil
	backend.assistantAt = "done"
	if _, err := session.Send(context.Background(), "hello again"); err != nil {
		t.Fatalf("second send failed: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	backend := &fakeBackend{
		conv: multired.Conversation{ID: 5, Title: "renamed"},
		messages: []multired.Message{
			{ID: 1, Role: multired.RoleUser, Content: "hi"},
			{ID: 2, Role: multired.RoleAssistant, Content: "hello"},
		},
		list: []multired.Conversation{{ID: 5}, {ID: 6}},
	}
	session := newTestSession(backend, multired.Facebook)

	if err := session.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := session.Conversation().Title; got != "renamed" {
		t.Errorf("title = %q", got)
	}
	if got := len(session.Messages()); got != 2 {
		t.Errorf("messages = %d", got)
	}
	if got := len(session.Conversations()); got != 2 {
		t.Errorf("conversations = %d", got)
	}
}

func TestRefreshPropagatesError(t *testing.T) {
	backend := &fakeBackend{
		conv:     multired.Conversation{ID: 5},
		fetchErr: errors.New("unauthorized"),
	}
	session := newTestSession(backend, multired.Facebook)

	if err := session.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
}
