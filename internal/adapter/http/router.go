package http

import "github.com/gofiber/fiber/v2"

// RegisterRoutes wires every route onto the app. Guarded routes share the
// one Authenticate middleware; admin enforcement happens in the use cases.
func RegisterRoutes(app *fiber.App, guard *Guard, h *Handler, ah *AuthHandler) {
	app.Get("/health", h.Health)

	auth := app.Group("/auth")
	auth.Post("/login", ah.Login)
	auth.Post("/register", ah.Register)
	auth.Post("/verify-otp", ah.VerifyOTP)

	api := app.Group("/api")
	api.Post("/auth/refresh", ah.Refresh)

	jobs := api.Group("/jobs")
	jobs.Get("/", h.ListJobs)
	jobs.Post("/", guard.Authenticate, h.CreateJob)
	jobs.Post("/apply", guard.Authenticate, h.SubmitApplication)
	jobs.Get("/my-applications", guard.Authenticate, h.MyApplications)
	jobs.Get("/all-applications", guard.Authenticate, h.AllApplications)
	jobs.Patch("/approve/:applicationId", guard.Authenticate, h.ApproveApplication)
	jobs.Patch("/reject/:applicationId", guard.Authenticate, h.RejectApplication)
	jobs.Delete("/:jobId", guard.Authenticate, h.DeleteJob)
}
