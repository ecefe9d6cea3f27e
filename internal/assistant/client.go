package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/d60-Lab/storyblog/internal/model"
)

var (
	ErrAmbiguousTitle = errors.New("multiple posts match that title")
	ErrNoTitleMatch   = errors.New("no post matches that title")
)

// APIError carries the HTTP status and server-reported message of a
// failed API call so actions can render it for the chat transcript.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the blog API over the same HTTP surface a browser
// client uses. Actions never touch the store directly.
type Client struct {
	baseURL   string
	http      *http.Client
	token     string
	serverKey string
}

type Option func(*Client)

// WithToken attaches a session token to every request.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// WithServerKey attaches the trusted-caller shared secret.
func WithServerKey(key string) Option { return func(c *Client) { c.serverKey = key } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(payload)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.serverKey != "" {
		req.Header.Set("x-copilot-server-key", c.serverKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error
		if msg == "" {
			msg = errBody.Message
		}
		if msg == "" {
			msg = "Unknown error"
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) ListPosts(ctx context.Context) ([]*model.Post, error) {
	var out struct {
		Posts []*model.Post `json:"posts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *Client) CreatePost(ctx context.Context, title, content string) (*model.Post, error) {
	var out struct {
		Post *model.Post `json:"post"`
	}
	body := map[string]string{"title": strings.TrimSpace(title), "content": strings.TrimSpace(content)}
	if err := c.do(ctx, http.MethodPost, "/api/posts", body, &out); err != nil {
		return nil, err
	}
	return out.Post, nil
}

// UpdatePost sends only the provided fields; empty strings are omitted.
func (c *Client) UpdatePost(ctx context.Context, id, title, content string) error {
	body := map[string]string{}
	if t := strings.TrimSpace(title); t != "" {
		body["title"] = t
	}
	if ct := strings.TrimSpace(content); ct != "" {
		body["content"] = ct
	}
	return c.do(ctx, http.MethodPut, "/api/posts/"+id, body, nil)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, nil)
}

func (c *Client) ToggleLike(ctx context.Context, id string) (bool, string, error) {
	var out struct {
		Liked   bool   `json:"liked"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+id+"/like", nil, &out); err != nil {
		return false, "", err
	}
	return out.Liked, out.Message, nil
}

func (c *Client) LikeStatus(ctx context.Context, id string) (int64, bool, error) {
	var out struct {
		LikeCount            int64 `json:"likeCount"`
		IsLikedByCurrentUser bool  `json:"isLikedByCurrentUser"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id+"/like", nil, &out); err != nil {
		return 0, false, err
	}
	return out.LikeCount, out.IsLikedByCurrentUser, nil
}

func (c *Client) Comments(ctx context.Context, id string) ([]*model.Comment, error) {
	var out struct {
		Comments []*model.Comment `json:"comments"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id+"/comments", nil, &out); err != nil {
		return nil, err
	}
	return out.Comments, nil
}

func (c *Client) CreateComment(ctx context.Context, id, content string) (*model.Comment, error) {
	var out struct {
		Comment *model.Comment `json:"comment"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+id+"/comments", map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return out.Comment, nil
}

// Login exchanges credentials for a session token. The token is not
// stored on the client; pass it back via WithToken.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "User registered successfully."
	}
	return out.Message, nil
}

// FindPostByTitle resolves a post by title: exact case-insensitive match
// first, then substring. More than one hit at either stage is reported as
// ambiguous rather than silently picking the first.
func (c *Client) FindPostByTitle(ctx context.Context, title string) (*model.Post, error) {
	posts, err := c.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil, ErrNoTitleMatch
	}

	var exact, partial []*model.Post
	for _, p := range posts {
		t := strings.ToLower(p.Title)
		if t == needle {
			exact = append(exact, p)
		} else if strings.Contains(t, needle) {
			partial = append(partial, p)
		}
	}
	switch {
	case len(exact) == 1:
		return exact[0], nil
	case len(exact) > 1:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousTitle, title)
	case len(partial) == 1:
		return partial[0], nil
	case len(partial) > 1:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousTitle, title)
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoTitleMatch, title)
	}
}
