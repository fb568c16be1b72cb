package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetShortLink handles GET /api/recipes/:id/get-link/
// @Summary Short link for a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} object{short-link=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/get-link/ [get]
func (s *Server) GetShortLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	token, err := s.shortLinkService.Token(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"short-link": s.baseURL(c) + "/s/" + token})
}

// ResolveShortLink handles GET /s/:token and redirects to the recipe page.
func (s *Server) ResolveShortLink(c *fiber.Ctx) error {
	path, err := s.shortLinkService.Resolve(c.UserContext(), c.Params("token"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(path, fiber.StatusFound)
}
