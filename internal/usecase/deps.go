package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
)

// ApplicationLedger is the persistence contract for application records.
// TryCreate must perform the uniqueness check and the insert as one atomic
// storage operation; implementations must not approximate it with a
// query-then-insert.
type ApplicationLedger interface {
	TryCreate(ctx context.Context, app *domain.JobApplication) error
	Get(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.JobApplication, error)
	ListAll(ctx context.Context, filter domain.ApplicationFilter, page domain.Page) ([]domain.JobApplication, int, error)
	Transition(ctx context.Context, id uuid.UUID, target domain.Status, reason string) (*domain.JobApplication, error)
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

// CodeStore holds one-time registration codes for their TTL. Consume removes
// the code on a match so it cannot be replayed.
type CodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) error
}

// CodeSender delivers a one-time code to the user. Mail transport is an
// external collaborator; the server only depends on this interface.
type CodeSender interface {
	Send(ctx context.Context, email, code string) error
}

// ResumeStorage is the file sink for accepted uploads. Save returns the
// locator persisted on the application record and the stored file name.
type ResumeStorage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (locator, storedName string, err error)
}

// JobStore persists job postings. Delete removes the posting and, as its
// side effect, the applications that point at it.
type JobStore interface {
	Create(ctx context.Context, j *domain.Job) error
	List(ctx context.Context) ([]domain.Job, error)
	Delete(ctx context.Context, id string) error
}
