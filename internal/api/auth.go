package api

import (
	"context"
	"errors"
	"net/http"
)

// User identifies the authenticated account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenBlock struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   *tokenBlock `json:"token"`
}

// Credentials is the outcome of a successful login or registration.
type Credentials struct {
	AccessToken string
	User        User
}

// Login exchanges username/password for a bearer token. The token is also
// installed on the client for subsequent authenticated calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	return c.installCredentials(resp)
}

// Register creates an account and logs straight into it.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := registerRequest{Username: username, Email: email, Password: password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return c.installCredentials(resp)
}

// Logout invalidates the server-side session. The caller clears the local
// session regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) installCredentials(resp loginResponse) (*Credentials, error) {
	if !resp.Success || resp.Token == nil {
		msg := resp.Message
		if msg == "" {
			msg = "authentication failed"
		}
		return nil, errors.New(msg)
	}
	c.token = resp.Token.AccessToken
	return &Credentials{AccessToken: resp.Token.AccessToken, User: resp.Token.User}, nil
}
