// Package client provides the Go API client for a pressroom server. It pairs
// a plain HTTP client with the session guard: credentials go in, a guarded
// session comes out, and every authenticated call attaches the bearer token
// for as long as the guard's idle window allows. The server independently
// enforces the token's own, longer lifetime.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pressroom/pressroom/internal/client/session"
	"github.com/pressroom/pressroom/internal/news"
	"github.com/pressroom/pressroom/internal/shared"
)

// ErrSessionExpired signals that the local idle window lapsed; the caller
// should prompt for a fresh login.
var ErrSessionExpired = errors.New("local session expired")

// Client talks to a pressroom server.
type Client struct {
	baseURL string
	http    *http.Client
	guard   *session.Guard
}

// New constructs a Client against baseURL using the given session guard.
func New(baseURL string, guard *session.Guard) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		guard:   guard,
	}
}

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login authenticates and, on success, starts a guarded session.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	return c.startSession(ctx, "/api/auth/login", credentialsRequest{Email: email, Password: password})
}

// Register creates an account and starts a guarded session.
func (c *Client) Register(ctx context.Context, name, email, password string) (session.Identity, error) {
	return c.startSession(ctx, "/api/auth/register", credentialsRequest{Name: name, Email: email, Password: password})
}

// Logout discards the local session. The token itself stays valid on the
// server until its natural expiry; there is no revocation call to make.
func (c *Client) Logout() error {
	return c.guard.Logout()
}

func (c *Client) startSession(ctx context.Context, path string, creds credentialsRequest) (session.Identity, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, path, creds, &resp, false); err != nil {
		return session.Identity{}, err
	}
	identity := session.Identity{ID: resp.ID, Name: resp.Name, Email: resp.Email, Role: resp.Role}
	if err := c.guard.Login(identity, resp.Token); err != nil {
		return session.Identity{}, err
	}
	return identity, nil
}

// Articles lists live articles, newest published first.
func (c *Client) Articles(ctx context.Context) ([]news.Article, error) {
	var articles []news.Article
	err := c.do(ctx, http.MethodGet, "/api/news", nil, &articles, false)
	return articles, err
}

// Article fetches one article.
func (c *Client) Article(ctx context.Context, id string) (*news.Article, error) {
	var article news.Article
	if err := c.do(ctx, http.MethodGet, "/api/news/"+id, nil, &article, false); err != nil {
		return nil, err
	}
	return &article, nil
}

// LikedArticles lists articles liked by the current identity.
func (c *Client) LikedArticles(ctx context.Context) ([]news.Article, error) {
	var articles []news.Article
	err := c.do(ctx, http.MethodGet, "/api/news/liked", nil, &articles, true)
	return articles, err
}

// ToggleLike flips the current identity's like on an article and returns the
// updated like-set. A call ambiguous due to a network failure must not be
// blindly retried; re-fetch the article first, since a retried toggle
// inverts the earlier effect.
func (c *Client) ToggleLike(ctx context.Context, id string) ([]string, error) {
	var likes []string
	err := c.do(ctx, http.MethodPut, "/api/news/"+id+"/like", nil, &likes, true)
	return likes, err
}

// AddComment appends a comment and returns the updated log.
func (c *Client) AddComment(ctx context.Context, id, text string) ([]news.Comment, error) {
	var log []news.Comment
	err := c.do(ctx, http.MethodPost, "/api/news/"+id+"/comment", map[string]string{"text": text}, &log, true)
	return log, err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any, authed bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, ok := c.guard.Token()
		if !ok {
			return ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 400 {
		return statusError(res)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

func statusError(res *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	_ = json.NewDecoder(res.Body).Decode(&payload)
	switch res.StatusCode {
	case http.StatusUnauthorized:
		return shared.ErrUnauthenticated
	case http.StatusForbidden:
		return shared.ErrForbidden
	case http.StatusNotFound:
		return shared.ErrNotFound
	case http.StatusBadRequest:
		if payload.Field != "" {
			return shared.NewValidationError(payload.Field, payload.Message)
		}
		return shared.ErrInvalidCredentials
	default:
		return fmt.Errorf("server returned %d: %s", res.StatusCode, payload.Message)
	}
}
