// Package client implements a stateful session against the repository's
// entity REST API: credential-based login with a background token
// refresher, entity lookup and metadata mutation, and streaming package
// upload.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

// DefaultRefreshInterval matches the source's 10-minute refresh cadence.
const DefaultRefreshInterval = 600 * time.Second

const tokenHeader = "Preservica-Access-Token"

// Session is bound to one host/tenant/credential triple for its lifetime.
// It owns an HTTP client, the current token pair, and a background
// refresher goroutine. Not safe for concurrent Close calls.
type Session struct {
	host, tenant string
	httpClient   *http.Client

	baseURL   string
	entityURL string
	authURL   string

	mu           sync.RWMutex
	token        string
	refreshToken string

	refreshInterval time.Duration
	stop            chan struct{}
	stopped         chan struct{}
}

type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh-token"`
}

// Open authenticates against host/tenant with username/password and starts
// the background refresher. Callers must Close the returned Session.
func Open(ctx context.Context, host, tenant, username, password string) (*Session, error) {
	s := &Session{
		host:            host,
		tenant:          tenant,
		httpClient:      &http.Client{},
		baseURL:         "https://" + host,
		refreshInterval: DefaultRefreshInterval,
		stop:            make(chan struct{}),
		stopped:         make(chan struct{}),
	}
	s.entityURL = s.baseURL + "/api/entity"
	s.authURL = s.baseURL + "/api/accesstoken"

	if err := s.login(ctx, username, password); err != nil {
		return nil, err
	}
	go s.refreshLoop()
	dcontext.GetLogger(ctx).WithField("host", host).WithField("tenant", tenant).Info("session authenticated")
	return s, nil
}

func (s *Session) login(ctx context.Context, username, password string) error {
	q := url.Values{"username": {username}, "password": {password}, "tenant": {s.tenant}}
	resp, err := s.authRequest(ctx, s.authURL+"/login", q)
	if err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Op: "login", StatusCode: resp.StatusCode}
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return &AuthError{Op: "login", Err: err}
	}
	s.setToken(tr.Token, tr.RefreshToken)
	return nil
}

// refreshLoop wakes on whichever fires first: the refresh interval, or
// Close's stop signal. It never blocks Close beyond the in-flight refresh
// request, if any.
func (s *Session) refreshLoop() {
	defer close(s.stopped)
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.refresh(context.Background()); err != nil {
				dcontext.GetLogger(context.Background()).WithError(err).Warn("token refresh failed, retrying next interval")
			}
		}
	}
}

func (s *Session) refresh(ctx context.Context) error {
	q := url.Values{"refreshToken": {s.getRefreshToken()}}
	resp, err := s.authRequest(ctx, s.authURL+"/refresh", q)
	if err != nil {
		return &AuthError{Op: "refresh", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Op: "refresh", StatusCode: resp.StatusCode}
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return &AuthError{Op: "refresh", Err: err}
	}
	s.setToken(tr.Token, tr.RefreshToken)
	dcontext.GetLogger(ctx).Info("refreshed authentication token")
	return nil
}

// Close revokes the current token and waits for the background refresher
// to exit before returning.
func (s *Session) Close(ctx context.Context) error {
	close(s.stop)
	<-s.stopped

	q := url.Values{"access-token": {s.getToken()}}
	resp, err := s.authRequest(ctx, s.authURL+"/revoke", q)
	if err != nil {
		return &AuthError{Op: "revoke", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Op: "revoke", StatusCode: resp.StatusCode}
	}
	dcontext.GetLogger(ctx).Info("session closed")
	return nil
}

func (s *Session) authRequest(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Content-Length", "0")
	return s.httpClient.Do(req)
}

func (s *Session) setToken(token, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.refreshToken = refreshToken
}

func (s *Session) getToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) getRefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// do executes an authenticated request, attaching the current access token.
// The caller is responsible for closing resp.Body.
func (s *Session) do(req *http.Request) (*http.Response, error) {
	req.Header.Set(tokenHeader, s.getToken())
	return s.httpClient.Do(req)
}

func httpErrorFor(op, url string, resp *http.Response) *HTTPError {
	return &HTTPError{Op: op, URL: url, StatusCode: resp.StatusCode}
}
