// Package client is the browser-side counterpart of the session middleware:
// an HTTP client that owns the current token pair, attaches it to every
// request, and transparently recovers once from an expired access token.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"jobboard/internal/domain"
)

// ErrSessionExpired is returned when the refresh credential itself no longer
// works. The held tokens are cleared before it is returned.
var ErrSessionExpired = errors.New("session expired, please log in again")

// TokenStore mirrors the token pair to durable client storage so a session
// survives a restart.
type TokenStore interface {
	Load() (access, refresh string, err error)
	Save(access, refresh string) error
	Clear() error
}

// SessionManager is a single owned instance injected into whatever issues
// outbound calls. There is no ambient global state; everything it needs
// lives on the struct.
type SessionManager struct {
	base  string
	httpc *http.Client
	store TokenStore

	mu      sync.RWMutex
	access  string
	refresh string

	// one in-flight refresh shared by every request that hits a 401
	group singleflight.Group
}

// NewSessionManager builds a manager for the API at baseURL. A nil
// httpClient falls back to http.DefaultClient; a nil store means tokens live
// only in memory. Tokens found in the store are restored.
func NewSessionManager(baseURL string, httpClient *http.Client, store TokenStore) *SessionManager {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	m := &SessionManager{base: baseURL, httpc: httpClient, store: store}
	if store != nil {
		if access, refresh, err := store.Load(); err == nil {
			m.access, m.refresh = access, refresh
		}
	}
	return m
}

// SetTokens installs a pair obtained from login or OTP verification.
func (m *SessionManager) SetTokens(access, refresh string) {
	m.mu.Lock()
	m.access, m.refresh = access, refresh
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Save(access, refresh)
	}
}

// Subject decodes the identity claims out of the held access token without
// verifying it; the server re-verifies on every request anyway.
func (m *SessionManager) Subject() (domain.Subject, bool) {
	m.mu.RLock()
	raw := m.access
	m.mu.RUnlock()
	if raw == "" {
		return domain.Subject{}, false
	}
	sub, err := decodeSubject(raw)
	if err != nil {
		return domain.Subject{}, false
	}
	return sub, true
}

func (m *SessionManager) clear() {
	m.mu.Lock()
	m.access, m.refresh = "", ""
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Clear()
	}
}

func (m *SessionManager) currentAccess() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

// Do sends the request with the current token attached. On a 401 it
// performs exactly one refresh-and-replay: the refresh is coalesced across
// concurrent failures, and the replayed request is never retried again no
// matter what it returns.
func (m *SessionManager) Do(req *http.Request) (*http.Response, error) {
	if tok := m.currentAccess(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := m.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// cannot rebuild the body, so the 401 stands
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	newToken, err := m.refreshOnce()
	if err != nil {
		return nil, err
	}

	replay := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	replay.Header.Set("Authorization", "Bearer "+newToken)
	return m.httpc.Do(replay)
}

// refreshOnce funnels all concurrent callers through one refresh call.
func (m *SessionManager) refreshOnce() (string, error) {
	v, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		return m.doRefresh()
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

type refreshEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

func (m *SessionManager) doRefresh() (interface{}, error) {
	m.mu.RLock()
	refresh := m.refresh
	m.mu.RUnlock()
	if refresh == "" {
		m.clear()
		return nil, ErrSessionExpired
	}

	payload, _ := json.Marshal(map[string]string{"refreshToken": refresh})
	resp, err := m.httpc.Post(m.base+"/api/auth/refresh", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("refresh call: %w", err)
	}
	defer resp.Body.Close()

	var env refreshEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || !env.Success || env.Data.Token == "" {
		m.clear()
		return nil, ErrSessionExpired
	}

	m.mu.Lock()
	m.access = env.Data.Token
	if env.Data.RefreshToken != "" {
		m.refresh = env.Data.RefreshToken
	}
	access, refreshTok := m.access, m.refresh
	m.mu.Unlock()
	if m.store != nil {
		_ = m.store.Save(access, refreshTok)
	}
	return env.Data.Token, nil
}
