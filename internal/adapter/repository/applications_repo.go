package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"jobboard/internal/domain"
)

// ApplicationsRepo is the Postgres-backed application ledger. The
// job_applications table carries a compound unique constraint on
// (applicant_id, job_id); TryCreate leans on it instead of a prior
// existence query, so racing submissions resolve inside the insert.
type ApplicationsRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationsRepo(pool *pgxpool.Pool) *ApplicationsRepo {
	return &ApplicationsRepo{pool: pool}
}

const applicationColumns = `id, applicant_id, job_id, job_title, job_company,
	applicant_name, applicant_email, cover_letter, resume_path,
	resume_file_name, status, rejection_reason, created_at, updated_at`

// TryCreate inserts app unless a record for its (applicant, job) pair
// already exists. The check and the insert are one statement.
func (r *ApplicationsRepo) TryCreate(ctx context.Context, app *domain.JobApplication) error {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO job_applications (id, applicant_id, job_id, job_title, job_company,
			applicant_name, applicant_email, cover_letter, resume_path,
			resume_file_name, status, rejection_reason, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (applicant_id, job_id) DO NOTHING
		RETURNING id`,
		app.ID, app.ApplicantID, app.JobID, app.JobTitle, app.JobCompany,
		app.ApplicantName, app.ApplicantEmail, app.CoverLetter, app.ResumePath,
		app.ResumeFileName, app.Status, app.RejectionReason, app.CreatedAt, app.UpdatedAt).
		Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateApplication
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Get fetches one application by id.
func (r *ApplicationsRepo) Get(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ListByApplicant returns the applicant's records, most recent first.
func (r *ApplicationsRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]domain.JobApplication, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE applicant_id = $1 ORDER BY created_at DESC`, applicantID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// ListAll returns one page of applications matching the filter plus the
// total matching count.
func (r *ApplicationsRepo) ListAll(ctx context.Context, filter domain.ApplicationFilter, page domain.Page) ([]domain.JobApplication, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM job_applications
		 WHERE ($1 = '' OR status = $1) AND ($2 = '' OR job_id = $2)
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		string(filter.Status), filter.JobID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps, err := collectApplications(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_applications
		 WHERE ($1 = '' OR status = $1) AND ($2 = '' OR job_id = $2)`,
		string(filter.Status), filter.JobID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// Transition updates the status (and reason) of one application. It does not
// check the current status; the workflow layer decides whether the source
// state permits the move.
func (r *ApplicationsRepo) Transition(ctx context.Context, id uuid.UUID, target domain.Status, reason string) (*domain.JobApplication, error) {
	if !target.Terminal() {
		return nil, fmt.Errorf("transition target must be terminal, got %q", target)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE job_applications
		SET status = $2, rejection_reason = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+applicationColumns,
		id, target, reason)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("transition application: %w", err)
	}
	return app, nil
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var app domain.JobApplication
	err := row.Scan(&app.ID, &app.ApplicantID, &app.JobID, &app.JobTitle,
		&app.JobCompany, &app.ApplicantName, &app.ApplicantEmail,
		&app.CoverLetter, &app.ResumePath, &app.ResumeFileName, &app.Status,
		&app.RejectionReason, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func collectApplications(rows pgx.Rows) ([]domain.JobApplication, error) {
	apps := []domain.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}
