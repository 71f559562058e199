package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/multipost/internal/multired"
)

func TestConversationDetailDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/conversations/5", r.URL.Path)
		w.Write([]byte(`{
			"id": 5, "title": "enrollment",
			"created_at": "2026-03-01T10:00:00Z", "updated_at": "2026-03-01T10:05:00Z",
			"messages": [
				{"id": 1, "role": "user", "content": "publish this", "created_at": "2026-03-01T10:00:00Z"},
				{"id": 2, "role": "assistant", "content": "done", "created_at": "2026-03-01T10:05:00Z"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	detail, err := client.Conversation(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), detail.ID)
	assert.Equal(t, "enrollment", detail.Title)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, multired.RoleAssistant, detail.Messages[1].Role)
}

func TestPostMessageCarriesNetworks(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/conversations/5/messages", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id": 3, "role": "user", "content": "publish this"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	msg, err := client.PostMessage(context.Background(), 5, multired.RoleUser, "publish this",
		[]multired.Target{multired.Facebook, multired.WhatsApp})
	require.NoError(t, err)

	assert.Equal(t, []string{"facebook", "whatsapp"}, got.SelectedNetworks)
	assert.Equal(t, multired.RoleUser, got.Role)
	assert.Equal(t, int64(3), msg.ID)
}

func TestDeleteConversation(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, client.DeleteConversation(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/chat/conversations/9", gotPath)
}
