package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub is a server that treats exactly one access token as valid and
// counts how many times the refresh endpoint is hit.
type apiStub struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	refreshCalls int32
}

func (s *apiStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.refreshCalls, 1)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		ok := body.RefreshToken == s.validRefresh && s.validRefresh != ""
		if ok {
			s.validAccess = fmt.Sprintf("access-%d", atomic.LoadInt32(&s.refreshCalls))
		}
		access := s.validAccess
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid or expired token"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"token": access},
		})
	})
	mux.HandleFunc("/api/jobs/my-applications", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+s.validAccess && s.validAccess != ""
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
	})
	return mux
}

func newStub(t *testing.T) (*apiStub, *httptest.Server) {
	t.Helper()
	stub := &apiStub{validAccess: "good-access", validRefresh: "good-refresh"}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	return stub, srv
}

func getApplications(t *testing.T, m *SessionManager, base string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, base+"/api/jobs/my-applications", nil)
	require.NoError(t, err)
	resp, err := m.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDoPassesThroughWithValidToken(t *testing.T) {
	stub, srv := newStub(t)
	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("good-access", "good-refresh")

	resp := getApplications(t, m, srv.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, atomic.LoadInt32(&stub.refreshCalls))
}

func TestDoRefreshesOnceAndReplays(t *testing.T) {
	stub, srv := newStub(t)
	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("stale-access", "good-refresh")

	resp := getApplications(t, m, srv.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&stub.refreshCalls))
}

func TestConcurrentUnauthorizedCoalesceIntoOneRefresh(t *testing.T) {
	const callers = 8

	var refreshCalls, rejected int32
	allRejected := make(chan struct{})
	validAccess := "refreshed-access"

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		// hold the response until every caller has taken its 401, then a
		// little longer so stragglers join the in-flight refresh
		<-allRejected
		time.Sleep(20 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"token": validAccess},
		})
	})
	mux.HandleFunc("/api/jobs/my-applications", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validAccess {
			if atomic.AddInt32(&rejected, 1) == callers {
				close(allRejected)
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("stale-access", "good-refresh")

	var wg sync.WaitGroup
	codes := make(chan int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/jobs/my-applications", nil)
			if err != nil {
				codes <- -1
				return
			}
			resp, err := m.Do(req)
			if err != nil {
				codes <- -1
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))
}

func TestReplayedUnauthorizedDoesNotRefreshAgain(t *testing.T) {
	// refresh succeeds but hands back a token the API still rejects, so the
	// replay 401s. That response must come back as-is with no second refresh.
	stub := &apiStub{validRefresh: "good-refresh"}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&stub.refreshCalls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"token": "still-wrong"},
		})
	})
	mux.HandleFunc("/api/jobs/my-applications", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("stale-access", "good-refresh")

	resp := getApplications(t, m, srv.URL)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&stub.refreshCalls))
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	stub, srv := newStub(t)
	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("stale-access", "revoked-refresh")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/jobs/my-applications", nil)
	require.NoError(t, err)
	_, err = m.Do(req)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.EqualValues(t, 1, atomic.LoadInt32(&stub.refreshCalls))

	// tokens are gone, identity no longer decodable
	_, ok := m.Subject()
	assert.False(t, ok)
}

func TestNoRefreshTokenMeansExpired(t *testing.T) {
	_, srv := newStub(t)
	m := NewSessionManager(srv.URL, srv.Client(), nil)
	m.SetTokens("stale-access", "")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/jobs/my-applications", nil)
	require.NoError(t, err)
	_, err = m.Do(req)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	store := NewFileTokenStore(path)

	require.NoError(t, store.Save("acc", "ref"))
	access, refresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "acc", access)
	assert.Equal(t, "ref", refresh)

	// a fresh manager restores the pair from disk
	m := NewSessionManager("http://unused", nil, NewFileTokenStore(path))
	assert.Equal(t, "acc", m.currentAccess())

	require.NoError(t, store.Clear())
	_, _, err = store.Load()
	assert.Error(t, err)
}
