package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// tokenExpiryBuffer is subtracted from the lifetime the token endpoint reports.
const tokenExpiryBuffer = 60 * time.Second

// tokenRefreshTimeout bounds a shared refresh, which outlives any single caller.
const tokenRefreshTimeout = 15 * time.Second

// TokenSource fetches client-credentials tokens for the admin API and
// caches them until shortly before they expire.
type TokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	group singleflight.Group

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

func NewTokenSource(baseURL, clientID, clientSecret string, httpClient *http.Client) *TokenSource {
	return &TokenSource{
		tokenURL:     baseURL + "/oauth/token",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// Token returns a valid access token. Concurrent callers share one refresh.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiry := s.accessToken, s.tokenExpiry
	s.mu.RUnlock()

	if token != "" && s.now().Before(expiry) {
		return token, nil
	}

	ch := s.group.DoChan("token", func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenRefreshTimeout)
		defer cancel()
		return s.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token, e.g. after the API rejected it.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.accessToken = ""
	s.tokenExpiry = time.Time{}
	s.mu.Unlock()
}

func (s *TokenSource) refresh(ctx context.Context) (string, error) {
	const operation = "POST /oauth/token"

	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Operation: operation, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Body: respBody}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response without access_token")
	}

	s.mu.Lock()
	s.accessToken = tokenResp.AccessToken
	s.tokenExpiry = s.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryBuffer)
	s.mu.Unlock()

	return tokenResp.AccessToken, nil
}
