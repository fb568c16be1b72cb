package server

import (
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AvatarRequest is the body of PUT /api/users/me/avatar/.
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

// Register handles POST /api/users/
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "New user"
// @Success 201 {object} RegisteredUserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/ [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisteredUserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers handles GET /api/users/
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Page[UserResponse]
// @Router /users/ [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	p := s.pagination(c)
	users, total, err := s.userService.ListUsers(c.UserContext(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, s.userResponse(&users[i]))
	}
	return c.JSON(newPage(s, c, p, total, results))
}

// GetUser handles GET /api/users/:id/
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/ [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// GetMe handles GET /api/users/me/
// @Summary Current user profile
// @Tags users
// @Security TokenAuth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me/ [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID := currentUserID(c)
	user, err := s.userService.GetProfile(c.UserContext(), userID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.userResponse(user))
}

// SetPassword handles POST /api/users/set_password/
// @Summary Change password
// @Tags users
// @Security TokenAuth
// @Accept json
// @Param request body service.SetPasswordInput true "Passwords"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /users/set_password/ [post]
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var req service.SetPasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.userService.SetPassword(c.UserContext(), currentUserID(c), req); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetAvatar handles PUT /api/users/me/avatar/
// @Summary Upload an avatar
// @Tags users
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param request body AvatarRequest true "Base64 data URI"
// @Success 200 {object} object{avatar=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/avatar/ [put]
func (s *Server) SetAvatar(c *fiber.Ctx) error {
	var req AvatarRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.SetAvatar(c.UserContext(), currentUserID(c), req.Avatar)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"avatar": s.userService.ImageURL(user.Avatar)})
}

// DeleteAvatar handles DELETE /api/users/me/avatar/
// @Summary Remove the avatar
// @Tags users
// @Security TokenAuth
// @Success 204
// @Router /users/me/avatar/ [delete]
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	if err := s.userService.DeleteAvatar(c.UserContext(), currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

