package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"message": "welcome",
			"token": {
				"access_token": "jwt-abc",
				"token_type": "bearer",
				"user": {"id": 7, "username": "maria", "email": "maria@example.com"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	creds, err := client.Login(context.Background(), "maria", "secret")
	require.NoError(t, err)

	assert.Equal(t, "jwt-abc", creds.AccessToken)
	assert.Equal(t, "maria", creds.User.Username)
	assert.Equal(t, "jwt-abc", client.Token(), "token installed for subsequent calls")
}

func TestLoginFailureMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "bad credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.Login(context.Background(), "maria", "wrong")
	require.EqualError(t, err, "bad credentials")
	assert.Empty(t, client.Token(), "no token on failed login")
}

func TestRegister(t *testing.T) {
	var got registerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{
			"success": true,
			"token": {"access_token": "jwt-new", "token_type": "bearer",
				"user": {"id": 8, "username": "jose", "email": "jose@example.com"}}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	creds, err := client.Register(context.Background(), "jose", "jose@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, registerRequest{Username: "jose", Email: "jose@example.com", Password: "secret"}, got)
	assert.Equal(t, "jwt-new", creds.AccessToken)
}

func TestLogout(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/api/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Token: "tok"})
	require.NoError(t, client.Logout(context.Background()))
	assert.True(t, called)
}
