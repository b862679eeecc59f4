// Package identity implements the external identity provider client.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cinelog/internal/domain"
)

// Provider-specific errors
var (
	// ErrCodeExpired indicates the login code was never claimed
	ErrCodeExpired = errors.New("login code has expired")

	// ErrProviderOffline indicates the identity provider is unreachable
	ErrProviderOffline = errors.New("identity provider is unreachable")

	errNotFound = errors.New("not found")
)

const (
	codesEndpoint  = "/auth/codes"
	sessionPath    = "/auth/session"
	defaultTimeout = 30 * time.Second
	clientID       = "cinelog-tui-client"
)

// LinkCodeProvider implements domain.IdentityProvider with a device link-code
// flow: request a short code, have the user claim it on the provider's link
// page in a browser, poll until a token is issued.
type LinkCodeProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	// WaitTimeout bounds how long WaitLogin polls before giving up.
	WaitTimeout time.Duration
}

// NewLinkCodeProvider creates a provider client for the given base URL.
func NewLinkCodeProvider(baseURL string, logger *slog.Logger) *LinkCodeProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkCodeProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:      logger,
		WaitTimeout: 5 * time.Minute,
	}
}

// BeginLogin requests a fresh link code.
func (p *LinkCodeProvider) BeginLogin(ctx context.Context) (*domain.LinkCode, error) {
	body, err := p.doRequest(ctx, http.MethodPost, codesEndpoint, map[string]any{
		"client": clientID,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		ID        int    `json:"id"`
		Code      string `json:"code"`
		VerifyURL string `json:"verifyUrl"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse code response: %w", err)
	}
	if resp.VerifyURL == "" {
		resp.VerifyURL = p.baseURL + "/link"
	}

	p.logger.Info("login code generated", "id", resp.ID)
	return &domain.LinkCode{ID: resp.ID, Code: resp.Code, VerifyURL: resp.VerifyURL}, nil
}

// WaitLogin polls for the code claim with backoff and returns the user.
func (p *LinkCodeProvider) WaitLogin(ctx context.Context, code *domain.LinkCode) (*domain.User, error) {
	deadline := time.Now().Add(p.WaitTimeout)
	interval := 1 * time.Second
	maxInterval := 5 * time.Second

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
			user, claimed, err := p.checkCode(ctx, code.ID)
			if err != nil {
				if errors.Is(err, ErrCodeExpired) {
					return nil, err
				}
				p.logger.Warn("code check error, retrying", "error", err)
				continue
			}
			if claimed {
				return user, nil
			}
			interval = min(interval*2, maxInterval)
		}
	}

	return nil, ErrCodeExpired
}

// checkCode polls the claim status of a login code.
func (p *LinkCodeProvider) checkCode(ctx context.Context, codeID int) (*domain.User, bool, error) {
	body, err := p.doRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%d", codesEndpoint, codeID), nil)
	if err != nil {
		if errors.Is(err, errNotFound) {
			// Expired codes are deleted provider-side
			return nil, false, ErrCodeExpired
		}
		return nil, false, err
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to parse code status: %w", err)
	}

	if resp.Token == "" {
		return nil, false, nil // Not yet claimed
	}

	p.logger.Info("login code claimed", "user", resp.User.Name)
	return &domain.User{ID: resp.User.ID, Name: resp.User.Name, Token: resp.Token}, true, nil
}

// Validate resolves a saved token into a user.
func (p *LinkCodeProvider) Validate(ctx context.Context, token string) (*domain.User, error) {
	body, err := p.doAuthed(ctx, http.MethodGet, sessionPath, token)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	return &domain.User{ID: resp.User.ID, Name: resp.User.Name, Token: token}, nil
}

// Logout invalidates the token server-side.
func (p *LinkCodeProvider) Logout(ctx context.Context, token string) error {
	_, err := p.doAuthed(ctx, http.MethodDelete, sessionPath, token)
	return err
}

func (p *LinkCodeProvider) doRequest(ctx context.Context, method, path string, payload map[string]any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return p.send(req)
}

func (p *LinkCodeProvider) doAuthed(ctx context.Context, method, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return p.send(req)
}

func (p *LinkCodeProvider) send(req *http.Request) ([]byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("identity request failed", "error", err)
		return nil, ErrProviderOffline
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode >= 400:
		p.logger.Error("identity request error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
