package server

import "foodgram/internal/models"

// UserResponse is the public user projection.
type UserResponse struct {
	ID           uint    `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// RegisteredUserResponse is returned once by POST /api/users/.
type RegisteredUserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// RecipeIngredientResponse is one ingredient line of a recipe.
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full recipe projection.
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact projection used by relation endpoints
// and author listings.
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// AuthorResponse is a user with a capped recipe list.
type AuthorResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func (s *Server) userResponse(u *models.User) UserResponse {
	out := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: u.IsSubscribed,
	}
	if u.Avatar != "" {
		avatar := s.userService.ImageURL(u.Avatar)
		out.Avatar = &avatar
	}
	return out
}

func (s *Server) recipeResponse(r *models.Recipe) RecipeResponse {
	lines := make([]RecipeIngredientResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, RecipeIngredientResponse{
			ID:              l.IngredientID,
			Name:            l.Ingredient.Name,
			MeasurementUnit: l.Ingredient.MeasurementUnit,
			Amount:          l.Amount,
		})
	}
	return RecipeResponse{
		ID:               r.ID,
		Author:           s.userResponse(&r.Author),
		Ingredients:      lines,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            s.recipeService.ImageURL(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func (s *Server) shortRecipeResponse(r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.recipeService.ImageURL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (s *Server) authorResponse(a *models.AuthorWithRecipes) AuthorResponse {
	recipes := make([]ShortRecipeResponse, 0, len(a.Recipes))
	for i := range a.Recipes {
		recipes = append(recipes, s.shortRecipeResponse(&a.Recipes[i]))
	}
	return AuthorResponse{
		UserResponse: s.userResponse(&a.User),
		Recipes:      recipes,
		RecipesCount: a.RecipesCount,
	}
}
