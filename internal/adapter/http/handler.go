package http

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jobboard/internal/domain"
	"jobboard/internal/usecase"
)

// Handler serves the job and application routes.
type Handler struct {
	apps *usecase.Applications
	jobs *usecase.Jobs
	log  zerolog.Logger
}

func NewHandler(apps *usecase.Applications, jobs *usecase.Jobs, log zerolog.Logger) *Handler {
	return &Handler{apps: apps, jobs: jobs, log: log}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, "", fiber.Map{"status": "up"})
}

// SubmitApplication handles the multipart application form. The resume
// arrives in the "resume" field; a missing file is reported by the workflow,
// not here.
func (h *Handler) SubmitApplication(c *fiber.Ctx) error {
	var resume *multipart.FileHeader
	if fh, err := c.FormFile("resume"); err == nil {
		resume = fh
	}

	in := usecase.SubmitInput{
		JobID:          c.FormValue("jobId"),
		JobTitle:       c.FormValue("jobTitle"),
		JobCompany:     c.FormValue("jobCompany"),
		ApplicantName:  c.FormValue("applicantName"),
		ApplicantEmail: c.FormValue("applicantEmail"),
		CoverLetter:    c.FormValue("coverLetter"),
		Resume:         resume,
	}

	app, err := h.apps.Submit(c.Context(), SubjectFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "Application submitted successfully", app)
}

func (h *Handler) MyApplications(c *fiber.Ctx) error {
	apps, err := h.apps.ListOwn(c.Context(), SubjectFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "", apps)
}

func (h *Handler) AllApplications(c *fiber.Ctx) error {
	filter := domain.ApplicationFilter{
		Status: domain.Status(c.Query("status")),
		JobID:  c.Query("jobId"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return fail(c, fiber.StatusBadRequest, "unknown status filter")
	}
	page := domain.Page{
		Number: c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}.Normalize()

	apps, total, err := h.apps.ListAll(c.Context(), SubjectFrom(c), filter, page)
	if err != nil {
		return respondError(c, h.log, err)
	}

	pages := total / page.Limit
	if total%page.Limit != 0 {
		pages++
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    apps,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Number,
			"limit": page.Limit,
			"pages": pages,
		},
	})
}

func (h *Handler) ApproveApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("applicationId"))
	if err != nil {
		return respondError(c, h.log, domain.ErrNotFound)
	}
	app, err := h.apps.Approve(c.Context(), SubjectFrom(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "Application approved successfully", app)
}

func (h *Handler) RejectApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("applicationId"))
	if err != nil {
		return respondError(c, h.log, domain.ErrNotFound)
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// an empty body just means no reason given
	_ = c.BodyParser(&body)

	app, err := h.apps.Reject(c.Context(), SubjectFrom(c), id, body.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "Application rejected successfully", app)
}

func (h *Handler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobs.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "", jobs)
}

func (h *Handler) CreateJob(c *fiber.Ctx) error {
	payload := map[string]interface{}{}
	if err := c.BodyParser(&payload); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid payload")
	}
	job, err := h.jobs.Create(c.Context(), SubjectFrom(c), payload)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "Job posted successfully", job)
}

func (h *Handler) DeleteJob(c *fiber.Ctx) error {
	if err := h.jobs.Delete(c.Context(), SubjectFrom(c), c.Params("jobId")); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "Job deleted successfully", nil)
}
