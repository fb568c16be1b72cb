package server

import (
	"errors"

	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListSubscriptions handles GET /api/users/subscriptions/
// @Summary Authors the current user follows
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} Page[AuthorResponse]
// @Router /users/subscriptions/ [get]
func (s *Server) ListSubscriptions(c *fiber.Ctx) error {
	p := s.pagination(c)
	authors, total, err := s.subscriptionService.ListSubscriptions(
		c.UserContext(), currentUserID(c), recipesLimit(c), p.Limit, p.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	results := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		results = append(results, s.authorResponse(&authors[i]))
	}
	return c.JSON(newPage(s, c, p, total, results))
}

// Subscribe handles POST /api/users/:id/subscribe/
// @Summary Follow an author
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes to embed"
// @Success 201 {object} AuthorResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe/ [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	author, err := s.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.authorResponse(author))
}

// Unsubscribe handles DELETE /api/users/:id/subscribe/. Removing a
// subscription that does not exist still answers 204.
// @Summary Unfollow an author
// @Tags subscriptions
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe/ [delete]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	err = s.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), authorID)
	if err != nil && !errors.Is(err, service.ErrNotSubscribed) {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
