// Package remote implements domain.DocumentStore against a document-server
// HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cinelog/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Cinelog/1.0"
)

// Client implements domain.DocumentStore over HTTP.
//
// The API surface is the minimal document-store capability:
//
//	GET    /collections/{name}/documents       -> {"documents": [{id, fields}]}
//	POST   /collections/{name}/documents       -> {"id": "..."}
//	PATCH  /collections/{name}/documents/{id}  <- {"fields": {...}}
//	DELETE /collections/{name}/documents/{id}
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *slog.Logger

	// token is read on command goroutines while the session layer replaces
	// it on sign-in and sign-out
	mu    sync.RWMutex
	token string
}

// NewClient creates a new document-server client.
func NewClient(baseURL, collection, token string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid store URL %q", baseURL)
	}
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		token:      token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}, nil
}

// SetToken replaces the bearer token used for mutations. The session layer
// calls this after login/logout so writes carry the current credentials.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SessionSubscriber returns a callback for the session tracker that keeps
// the client's bearer token in sync with the current user. A nil user
// (sign-out) drops the token so later writes go out unauthenticated.
func (c *Client) SessionSubscriber() func(*domain.User) {
	return func(user *domain.User) {
		if user == nil {
			c.SetToken("")
			return
		}
		c.SetToken(user.Token)
	}
}

func (c *Client) Close() error { return nil }

// ListAll returns every document in the collection.
func (c *Client) ListAll(ctx context.Context) ([]domain.Document, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.documentsPath(), nil)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Documents []domain.Document `json:"documents"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	c.logger.Debug("listed documents", "collection", c.collection, "count", len(listing.Documents))
	return listing.Documents, nil
}

// Insert stores a new document and returns the server-assigned id.
func (c *Client) Insert(ctx context.Context, fields map[string]any) (string, error) {
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}

	body, err := c.doRequest(ctx, http.MethodPost, c.documentsPath(), payload)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse insert response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("server returned no document id")
	}

	c.logger.Debug("inserted document", "id", created.ID)
	return created.ID, nil
}

// UpdateFields merges the given fields into an existing document.
func (c *Client) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return err
	}

	_, err = c.doRequest(ctx, http.MethodPatch, c.documentPath(id), payload)
	return err
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, c.documentPath(id), nil)
	return err
}

func (c *Client) documentsPath() string {
	return fmt.Sprintf("/collections/%s/documents", url.PathEscape(c.collection))
}

func (c *Client) documentPath(id string) string {
	return fmt.Sprintf("%s/%s", c.documentsPath(), url.PathEscape(id))
}

// doRequest performs an authenticated HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	reqURL := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("store request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("store request failed", "error", err)
		return nil, domain.ErrStoreUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrMovieNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode >= 400:
		c.logger.Error("store request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
