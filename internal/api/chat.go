package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/blacktop/multipost/internal/multired"
)

type createConversationRequest struct {
	Title string `json:"title,omitempty"`
}

type messageRequest struct {
	Role             string   `json:"role"`
	Content          string   `json:"content"`
	SelectedNetworks []string `json:"selected_networks"`
}

// ConversationDetail is one conversation plus its full message sequence.
type ConversationDetail struct {
	multired.Conversation
	Messages []multired.Message `json:"messages"`
}

// Conversations lists the user's conversations, most recently updated first.
func (c *Client) Conversations(ctx context.Context) ([]multired.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out []multired.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConversation starts a new conversation, optionally titled.
func (c *Client) CreateConversation(ctx context.Context, title string) (*multired.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out multired.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/chat/conversations", createConversationRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversation fetches one conversation with its authoritative message
// sequence. Re-fetching without an intervening submission yields the same
// sequence both times.
func (c *Client) Conversation(ctx context.Context, id int64) (*ConversationDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out ConversationDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/chat/conversations/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation removes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/chat/conversations/%d", id), nil, nil)
}

// PostMessage appends a message to a conversation. For user messages the
// selected networks ride along so the backend can generate and publish; the
// assistant reply is produced asynchronously after this call returns.
func (c *Client) PostMessage(ctx context.Context, conversationID int64, role, content string, networks []multired.Target) (*multired.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names := make([]string, 0, len(networks))
	for _, t := range networks {
		names = append(names, string(t))
	}

	var out multired.Message
	path := fmt.Sprintf("/api/chat/conversations/%d/messages", conversationID)
	req := messageRequest{Role: role, Content: content, SelectedNetworks: names}
	if err := c.do(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
