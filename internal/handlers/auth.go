package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/types"
	"github.com/localnerve/designerhub/internal/utils"
)

// AuthHandler handles identity routes
type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

const passwordResetSent = "If an account with this email exists, a password reset link has been sent"

// Register handles POST /api/register
// @Summary Register an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account"
// @Success 201 {object} utils.StatusResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body services.RegisterInput
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if _, err := h.Auth.Register(c.UserContext(), body); err != nil {
		return err
	}
	return utils.StatusResponse(c, "registered", fiber.StatusCreated)
}

// Login handles POST /api/login
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	pair, err := h.Auth.Authenticate(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, pair, fiber.StatusOK)
}

// Refresh handles POST /api/token/refresh
// @Summary Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} services.TokenPair
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /token/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body refreshRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	pair, err := h.Auth.Refresh(c.UserContext(), body.Refresh)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, pair, fiber.StatusOK)
}

// PasswordReset handles POST /api/password-reset.
// The answer does not reveal whether the email is registered.
// @Summary Request a password reset email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body passwordResetRequest true "Email"
// @Success 200 {object} utils.StatusResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /password-reset [post]
func (h *AuthHandler) PasswordReset(c *fiber.Ctx) error {
	var body passwordResetRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	err := h.Auth.RequestPasswordReset(c.UserContext(), body.Email)
	if errors.Is(err, types.ErrNotFound) {
		slog.InfoContext(c.UserContext(), "password reset requested for unknown email")
	} else if err != nil {
		slog.ErrorContext(c.UserContext(), "password reset request failed", "error", err)
	}
	return utils.StatusResponse(c, passwordResetSent, fiber.StatusOK)
}

// PasswordResetConfirm handles POST /api/password-reset-confirm
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body passwordResetConfirmRequest true "Token and new password"
// @Success 200 {object} utils.StatusResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /password-reset-confirm [post]
func (h *AuthHandler) PasswordResetConfirm(c *fiber.Ctx) error {
	var body passwordResetConfirmRequest
	if err := bindJSON(c, &body); err != nil {
		return err
	}
	if err := h.Auth.ConfirmPasswordReset(c.UserContext(), body.Token, body.NewPassword, body.ConfirmPassword); err != nil {
		return err
	}
	return utils.StatusResponse(c, "password changed", fiber.StatusOK)
}

// Me handles GET /api/me
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Account
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	account, err := h.Auth.Me(c.UserContext(), callerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, account, fiber.StatusOK)
}
