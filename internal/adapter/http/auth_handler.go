package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"jobboard/internal/usecase"
)

// AuthHandler serves the account lifecycle routes.
type AuthHandler struct {
	auth *usecase.Auth
	log  zerolog.Logger
}

func NewAuthHandler(auth *usecase.Auth, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, "Verification code sent", fiber.Map{"email": user.Email})
}

type verifyReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid payload")
	}

	pair, err := h.auth.VerifyCode(c.Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "Account verified", pair)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid payload")
	}

	pair, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "Login successful", pair)
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh credential for a new access token. The
// credential normally travels in the body; the Authorization header is
// accepted as a fallback for older clients.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	_ = c.BodyParser(&req)
	if req.RefreshToken == "" {
		req.RefreshToken = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}

	pair, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, "", pair)
}
