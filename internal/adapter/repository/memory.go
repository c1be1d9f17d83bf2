package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
)

// MemoryLedger is an in-memory ApplicationLedger. A single mutex spans the
// uniqueness check and the insert, so TryCreate gives the same one-winner
// guarantee as the Postgres constraint. Used by tests and by the server when
// no database is configured.
type MemoryLedger struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*domain.JobApplication
	byPair map[pairKey]uuid.UUID
}

type pairKey struct {
	applicant uuid.UUID
	job       string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byID:   map[uuid.UUID]*domain.JobApplication{},
		byPair: map[pairKey]uuid.UUID{},
	}
}

func (m *MemoryLedger) TryCreate(ctx context.Context, app *domain.JobApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{applicant: app.ApplicantID, job: app.JobID}
	if _, exists := m.byPair[key]; exists {
		return domain.ErrDuplicateApplication
	}

	cp := *app
	m.byID[app.ID] = &cp
	m.byPair[key] = app.ID
	return nil
}

func (m *MemoryLedger) Get(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (m *MemoryLedger) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apps := []domain.JobApplication{}
	for _, app := range m.byID {
		if app.ApplicantID == applicantID {
			apps = append(apps, *app)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (m *MemoryLedger) ListAll(ctx context.Context, filter domain.ApplicationFilter, page domain.Page) ([]domain.JobApplication, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []domain.JobApplication{}
	for _, app := range m.byID {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.JobID != "" && app.JobID != filter.JobID {
			continue
		}
		matched = append(matched, *app)
	}
	sortNewestFirst(matched)

	total := len(matched)
	page = page.Normalize()
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MemoryLedger) Transition(ctx context.Context, id uuid.UUID, target domain.Status, reason string) (*domain.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	app.Status = target
	app.RejectionReason = reason
	app.UpdatedAt = time.Now().UTC()
	cp := *app
	return &cp, nil
}

// deleteByJob removes every application filed against jobID. Called by the
// job store's cascading delete.
func (m *MemoryLedger) deleteByJob(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, app := range m.byID {
		if app.JobID == jobID {
			delete(m.byPair, pairKey{applicant: app.ApplicantID, job: app.JobID})
			delete(m.byID, id)
		}
	}
}

func sortNewestFirst(apps []domain.JobApplication) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

// MemoryUsers is an in-memory UserStore.
type MemoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byEmail: map[string]*domain.User{}}
}

func (m *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[u.Email]; exists {
		return domain.ErrEmailTaken
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUsers) MarkVerified(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byEmail {
		if u.ID == id {
			u.Verified = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// MemoryCodes is an in-memory CodeStore for tests and redis-less dev runs.
type MemoryCodes struct {
	mu    sync.Mutex
	codes map[string]memoryCode
}

type memoryCode struct {
	code    string
	expires time.Time
}

func NewMemoryCodes() *MemoryCodes {
	return &MemoryCodes{codes: map[string]memoryCode{}}
}

func (m *MemoryCodes) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[email] = memoryCode{code: code, expires: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryCodes) Consume(ctx context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.codes[email]
	if !ok || code == "" || entry.code != code || time.Now().After(entry.expires) {
		return domain.ErrCodeInvalid
	}
	delete(m.codes, email)
	return nil
}

// MemoryJobs is an in-memory JobStore. Delete cascades through the ledger
// the same way JobsRepo's transactional delete does.
type MemoryJobs struct {
	mu     sync.Mutex
	jobs   map[string]*domain.Job
	ledger *MemoryLedger
}

func NewMemoryJobs(ledger *MemoryLedger) *MemoryJobs {
	return &MemoryJobs{jobs: map[string]*domain.Job{}, ledger: ledger}
}

func (m *MemoryJobs) Create(ctx context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *MemoryJobs) List(ctx context.Context) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := []domain.Job{}
	for _, j := range m.jobs {
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	return jobs, nil
}

func (m *MemoryJobs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.jobs, id)
	m.ledger.deleteByJob(id)
	return nil
}
