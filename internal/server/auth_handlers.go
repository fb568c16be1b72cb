package server

import (
	"log/slog"
	"time"

	"foodgram/internal/cache"
	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /api/auth/token/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/token/login/
// @Summary Obtain an auth token
// @Description Authenticate by email and password and return a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} object{auth_token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/token/login/ [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	token, _, err := s.auth.Issue(user.ID, user.Username)
	if err != nil {
		return mapServiceError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"auth_token": token})
}

// Logout handles POST /api/auth/token/logout/
// @Summary Revoke the current token
// @Tags auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token/logout/ [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals(middleware.LocalTokenJTI).(string)
	exp, _ := c.Locals(middleware.LocalTokenExp).(time.Time)

	if err := cache.RevokeToken(c.UserContext(), jti, time.Until(exp)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token",
			slog.String("jti", jti),
			slog.String("error", err.Error()),
		)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
