package usecase

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/domain"
)

// Applications orchestrates the job-application workflow: submission by
// applicants and moderation by admins. It holds no per-request state; every
// call is safe to run concurrently.
type Applications struct {
	ledger ApplicationLedger
	files  ResumeStorage
}

// NewApplications builds the workflow over a ledger and a file sink.
func NewApplications(ledger ApplicationLedger, files ResumeStorage) *Applications {
	return &Applications{ledger: ledger, files: files}
}

// SubmitInput carries the application form plus the uploaded resume.
type SubmitInput struct {
	JobID          string
	JobTitle       string
	JobCompany     string
	ApplicantName  string
	ApplicantEmail string
	CoverLetter    string
	Resume         *multipart.FileHeader
}

func (in SubmitInput) validate() error {
	required := []struct{ name, value string }{
		{"jobId", in.JobID},
		{"jobTitle", in.JobTitle},
		{"jobCompany", in.JobCompany},
		{"applicantName", in.ApplicantName},
		{"applicantEmail", in.ApplicantEmail},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: missing required field %s", domain.ErrValidation, f.name)
		}
	}
	return nil
}

// Submit validates the form and the resume, stores the file, and records the
// application as pending. Duplicate detection is left entirely to the
// ledger's atomic insert: two racing submissions for the same (subject, job)
// pair end with exactly one created record.
func (a *Applications) Submit(ctx context.Context, sub domain.Subject, in SubmitInput) (*domain.JobApplication, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := ValidateResume(in.Resume); err != nil {
		return nil, err
	}

	file, err := in.Resume.Open()
	if err != nil {
		return nil, fmt.Errorf("open resume upload: %w", err)
	}
	defer file.Close()

	locator, storedName, err := a.files.Save(ctx, in.Resume.Filename, file)
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	now := time.Now().UTC()
	app := &domain.JobApplication{
		ID:             uuid.New(),
		ApplicantID:    sub.ID,
		JobID:          in.JobID,
		JobTitle:       in.JobTitle,
		JobCompany:     in.JobCompany,
		ApplicantName:  in.ApplicantName,
		ApplicantEmail: in.ApplicantEmail,
		CoverLetter:    in.CoverLetter,
		ResumePath:     locator,
		ResumeFileName: storedName,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.ledger.TryCreate(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// ListOwn returns the subject's applications, most recent first.
func (a *Applications) ListOwn(ctx context.Context, sub domain.Subject) ([]domain.JobApplication, error) {
	return a.ledger.ListByApplicant(ctx, sub.ID)
}

// ListAll returns a page of applications plus the total count. Moderator
// only.
func (a *Applications) ListAll(ctx context.Context, sub domain.Subject, filter domain.ApplicationFilter, page domain.Page) ([]domain.JobApplication, int, error) {
	if err := requireModerator(sub); err != nil {
		return nil, 0, err
	}
	return a.ledger.ListAll(ctx, filter, page.Normalize())
}

// Approve moves a pending application to accepted. Moderator only.
func (a *Applications) Approve(ctx context.Context, sub domain.Subject, id uuid.UUID) (*domain.JobApplication, error) {
	return a.moderate(ctx, sub, id, domain.StatusAccepted, "")
}

// Reject moves a pending application to rejected, recording a reason. An
// empty reason falls back to a generic message. Moderator only.
func (a *Applications) Reject(ctx context.Context, sub domain.Subject, id uuid.UUID, reason string) (*domain.JobApplication, error) {
	if reason == "" {
		reason = "Application rejected"
	}
	return a.moderate(ctx, sub, id, domain.StatusRejected, reason)
}

// moderate enforces the state machine: accepted and rejected are terminal,
// so only pending applications may transition. A call against a decided
// application fails rather than silently re-transitioning.
func (a *Applications) moderate(ctx context.Context, sub domain.Subject, id uuid.UUID, target domain.Status, reason string) (*domain.JobApplication, error) {
	if err := requireModerator(sub); err != nil {
		return nil, err
	}

	current, err := a.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, domain.ErrApplicationDecided
	}

	return a.ledger.Transition(ctx, id, target, reason)
}

// requireModerator is the one role gate for every admin-only operation.
func requireModerator(sub domain.Subject) error {
	if !sub.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
