package server

import (
	"strconv"

	"foodgram/internal/models"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListRecipes handles GET /api/recipes/
// @Summary List recipes
// @Description Newest first. is_favorited and is_in_shopping_cart only apply to an authenticated viewer.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param is_favorited query int false "1 to keep favorites only"
// @Param is_in_shopping_cart query int false "1 to keep carted recipes only"
// @Param name query string false "Name substring"
// @Success 200 {object} Page[RecipeResponse]
// @Router /recipes/ [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	p := s.pagination(c)
	q := service.RecipeQuery{
		Favorited: queryFlag(c, "is_favorited"),
		InCart:    queryFlag(c, "is_in_shopping_cart"),
		Name:      c.Query("name"),
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || author == 0 {
			return mapServiceError(c, models.NewFieldValidationError("author", "Select a valid author."))
		}
		q.AuthorID = uint(author)
	}

	recipes, total, err := s.recipeService.List(c.UserContext(), currentUserID(c), q)
	if err != nil {
		return mapServiceError(c, err)
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, s.recipeResponse(&recipes[i]))
	}
	return c.JSON(newPage(s, c, p, total, results))
}

// GetRecipe handles GET /api/recipes/:id/
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/ [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.recipeResponse(recipe))
}

// CreateRecipe handles POST /api/recipes/
// @Summary Create a recipe
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param request body service.RecipeInput true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes/ [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req service.RecipeInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.recipeResponse(recipe))
}

// UpdateRecipe handles PATCH /api/recipes/:id/
// @Summary Update a recipe
// @Description Omitted fields keep their stored value. An omitted ingredient list keeps the stored lines.
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body service.RecipePatch true "Changed fields"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/ [patch]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.RecipePatch
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Update(c.UserContext(), currentUserID(c), id, req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.recipeResponse(recipe))
}

// DeleteRecipe handles DELETE /api/recipes/:id/
// @Summary Delete a recipe
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/ [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddRelation handles POST /api/recipes/:id/favorite/ and
// POST /api/recipes/:id/shopping_cart/.
// @Summary Add a recipe to favorites or the shopping cart
// @Tags relations
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite/ [post]
// @Router /recipes/{id}/shopping_cart/ [post]
func (s *Server) AddRelation(kind models.RelationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		recipe, err := s.relationService.Add(c.UserContext(), kind, currentUserID(c), id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(s.shortRecipeResponse(recipe))
	}
}

// RemoveRelation handles DELETE /api/recipes/:id/favorite/ and
// DELETE /api/recipes/:id/shopping_cart/.
// @Summary Remove a recipe from favorites or the shopping cart
// @Tags relations
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite/ [delete]
// @Router /recipes/{id}/shopping_cart/ [delete]
func (s *Server) RemoveRelation(kind models.RelationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		if err := s.relationService.Remove(c.UserContext(), kind, currentUserID(c), id); err != nil {
			return mapServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/
// @Summary Download the shopping list
// @Tags relations
// @Security TokenAuth
// @Produce plain
// @Success 200 {string} string "shopping_list.txt"
// @Router /recipes/download_shopping_cart/ [get]
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	text, err := s.shoppingListService.Download(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Attachment("shopping_list.txt")
	return c.SendString(text)
}
