package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/adapter/repository"
	"jobboard/internal/domain"
	"jobboard/internal/infrastructure/storage"
	"jobboard/internal/usecase"
	"jobboard/pkg/token"
)

var testSecret = []byte("test-secret-0123456789abcdef")

// captureSender records the last code delivered per address so flow
// tests can complete verification without reading log output.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *captureSender) Send(ctx context.Context, email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = code
	return nil
}

type testServer struct {
	app    *fiber.App
	codec  *token.Codec
	ledger *repository.MemoryLedger
	sender *captureSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	codec, err := token.NewCodec(testSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	ledger := repository.NewMemoryLedger()
	files, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	log := zerolog.Nop()
	sender := &captureSender{codes: make(map[string]string)}
	auth := usecase.NewAuth(repository.NewMemoryUsers(), repository.NewMemoryCodes(), sender, codec)
	apps := usecase.NewApplications(ledger, files)
	jobs := usecase.NewJobs(repository.NewMemoryJobs(ledger))

	app := fiber.New(fiber.Config{BodyLimit: 10 << 20})
	RegisterRoutes(app, NewGuard(codec, log), NewHandler(apps, jobs, log), NewAuthHandler(auth, log))

	return &testServer{app: app, codec: codec, ledger: ledger, sender: sender}
}

func (s *testServer) tokenFor(t *testing.T, sub domain.Subject) string {
	t.Helper()
	tok, err := s.codec.Issue(sub)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Pages int `json:"pages"`
	} `json:"pagination"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func applyRequest(t *testing.T, token, jobID, filename string, fileSize int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range map[string]string{
		"jobId":          jobID,
		"jobTitle":       "Backend Engineer",
		"jobCompany":     "Acme",
		"applicantName":  "Alice",
		"applicantEmail": "alice@example.com",
		"coverLetter":    "Hello",
	} {
		require.NoError(t, w.WriteField(key, val))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("x"), fileSize))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/apply", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestGuardMissingToken(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-applications", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env := decode(t, resp)
	assert.False(t, env.Success)
}

func TestGuardGarbageTokenShortCircuits(t *testing.T) {
	s := newTestServer(t)

	for _, cred := range []string{"garbage", "only.two", "Bearer nonsense"} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-applications", nil)
		req.Header.Set("Authorization", cred)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "credential %q", cred)
		env := decode(t, resp)
		assert.Contains(t, env.Message, "Invalid token format")
	}
}

func TestGuardExpiredTokenMessageDoesNotDisambiguate(t *testing.T) {
	s := newTestServer(t)

	past := time.Now().Add(-2 * time.Hour)
	stale, err := token.NewCodec(testSecret, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	expired, err := stale.WithClock(func() time.Time { return past }).Issue(domain.Subject{ID: newUUID(t), Email: "a@b.c"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-applications", nil)
	req.Header.Set("Authorization", expired)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env := decode(t, resp)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestGuardAcceptsRawAndBearer(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "alice@example.com"})

	for _, header := range []string{tok, "Bearer " + tok} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/my-applications", nil)
		req.Header.Set("Authorization", header)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestApplyAndDuplicate(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "alice@example.com"})

	resp, err := s.app.Test(applyRequest(t, tok, "job-1", "resume.pdf", 2<<10), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	env := decode(t, resp)
	var created domain.JobApplication
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, domain.StatusPending, created.Status)

	resp, err = s.app.Test(applyRequest(t, tok, "job-1", "resume.pdf", 2<<10), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env = decode(t, resp)
	assert.Contains(t, env.Message, "already applied")
}

func TestApplyUploadGate(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "alice@example.com"})

	resp, err := s.app.Test(applyRequest(t, tok, "job-1", "resume.exe", 1<<10), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = s.app.Test(applyRequest(t, tok, "job-2", "", 0), 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env := decode(t, resp)
	assert.Contains(t, env.Message, "required")
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	s := newTestServer(t)
	tok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "alice@example.com"})

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/jobs/all-applications"},
		{http.MethodPatch, "/api/jobs/approve/" + newUUID(t).String()},
		{http.MethodPatch, "/api/jobs/reject/" + newUUID(t).String()},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := s.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", p.method, p.path)
		resp.Body.Close()
	}
}

func TestModerationScenario(t *testing.T) {
	s := newTestServer(t)
	userTok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "alice@example.com"})
	adminTok := s.tokenFor(t, domain.Subject{ID: newUUID(t), Email: "admin@example.com", IsAdmin: true})

	resp, err := s.app.Test(applyRequest(t, userTok, "job-1", "resume.pdf", 2<<10), 5000)
	require.NoError(t, err)
	env := decode(t, resp)
	var created domain.JobApplication
	require.NoError(t, json.Unmarshal(env.Data, &created))

	// admin sees it in the pending list
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/all-applications?status=pending", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	env = decode(t, resp)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Total)

	// reject with a reason
	body := bytes.NewBufferString(`{"reason":"Not a fit"}`)
	req = httptest.NewRequest(http.MethodPatch, "/api/jobs/reject/"+created.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env = decode(t, resp)
	var rejected domain.JobApplication
	require.NoError(t, json.Unmarshal(env.Data, &rejected))
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	assert.Equal(t, "Not a fit", rejected.RejectionReason)

	// approving a decided application is a conflict
	req = httptest.NewRequest(http.MethodPatch, "/api/jobs/approve/"+created.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err = s.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterVerifyLoginRefreshFlow(t *testing.T) {
	s := newTestServer(t)

	resp := s.postJSON(t, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"long-enough-pass"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	code := s.issuedCode(t, "alice@example.com")

	resp = s.postJSON(t, "/auth/verify-otp", fmt.Sprintf(`{"email":"alice@example.com","otp":"%s"}`, code))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env := decode(t, resp)
	var pair usecase.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.RefreshToken)

	resp = s.postJSON(t, "/api/auth/refresh", fmt.Sprintf(`{"refreshToken":"%s"}`, pair.RefreshToken))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	env = decode(t, resp)
	var refreshed usecase.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEmpty(t, refreshed.Token)

	// refusing an access token on the refresh endpoint
	resp = s.postJSON(t, "/api/auth/refresh", fmt.Sprintf(`{"refreshToken":"%s"}`, pair.Token))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *testServer) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (s *testServer) issuedCode(t *testing.T, email string) string {
	t.Helper()
	s.sender.mu.Lock()
	defer s.sender.mu.Unlock()
	code, ok := s.sender.codes[email]
	require.True(t, ok, "no code sent to %s", email)
	return code
}

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}
