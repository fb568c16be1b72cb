package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListIngredients handles GET /api/ingredients/?name=prefix
// @Summary List ingredients
// @Description Case-insensitive name prefix filter, ordered by name, not paginated
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /ingredients/ [get]
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	items, err := s.ingredientService.List(c.UserContext(), c.Query("name"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}

// GetIngredient handles GET /api/ingredients/:id/
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id}/ [get]
func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.ingredientService.Get(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}
