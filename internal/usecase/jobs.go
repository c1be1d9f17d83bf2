package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/model"
)

// Jobs manages job postings, the owning side of applications. Creation and
// deletion are admin operations; listing is public.
type Jobs struct {
	store JobStore
}

func NewJobs(store JobStore) *Jobs {
	return &Jobs{store: store}
}

// Create validates the posting payload against the job schema and persists
// it with the posting admin recorded.
func (j *Jobs) Create(ctx context.Context, sub domain.Subject, payload map[string]interface{}) (*domain.Job, error) {
	if err := requireModerator(sub); err != nil {
		return nil, err
	}
	if err := model.ValidateJob(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	job := &domain.Job{
		ID:        uuid.NewString(),
		Title:     stringField(payload, "title"),
		Company:   stringField(payload, "company"),
		Location:  stringField(payload, "location"),
		PostedBy:  sub.ID,
		CreatedAt: time.Now().UTC(),
	}
	job.Description = stringField(payload, "description")

	if err := j.store.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// List returns all postings.
func (j *Jobs) List(ctx context.Context) ([]domain.Job, error) {
	return j.store.List(ctx)
}

// Delete removes a posting and, as its documented side effect, the
// applications filed against it.
func (j *Jobs) Delete(ctx context.Context, sub domain.Subject, id string) error {
	if err := requireModerator(sub); err != nil {
		return err
	}
	return j.store.Delete(ctx, id)
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
