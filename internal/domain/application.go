package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the moderation state of a job application. An application is
// created pending; accepted and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// JobApplication is one user's application for one job posting. At most one
// record exists per (ApplicantID, JobID); the storage layer enforces that.
type JobApplication struct {
	ID              uuid.UUID `json:"id"`
	ApplicantID     uuid.UUID `json:"applicantId"`
	JobID           string    `json:"jobId"`
	JobTitle        string    `json:"jobTitle"`
	JobCompany      string    `json:"jobCompany"`
	ApplicantName   string    `json:"applicantName"`
	ApplicantEmail  string    `json:"applicantEmail"`
	CoverLetter     string    `json:"coverLetter"`
	ResumePath      string    `json:"resumePath"`
	ResumeFileName  string    `json:"resumeFileName"`
	Status          Status    `json:"status"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ApplicationFilter narrows ListAll results.
type ApplicationFilter struct {
	Status Status
	JobID  string
}

// Page is a pagination request. Normalize clamps it to sane values.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Job is a posting applications point at. Listings are owned by the admin
// side of the app; deleting one cascades to its applications.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	PostedBy    uuid.UUID `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
