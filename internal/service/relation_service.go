package service

import (
	"context"

	"foodgram/internal/cache"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// RelationService guards favorite and shopping cart membership: at most one
// relation per (kind, user, recipe), with the store's unique index deciding races.
type RelationService struct {
	relations repository.RelationRepository
	recipes   repository.RecipeRepository
}

func NewRelationService(relations repository.RelationRepository, recipes repository.RecipeRepository) *RelationService {
	return &RelationService{relations: relations, recipes: recipes}
}

// Add links the recipe to the user and returns the recipe for the short
// projection. Unknown recipes are NOT_FOUND; duplicates are ALREADY_EXISTS.
func (s *RelationService) Add(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.add(ctx, kind, userID, recipeID)
	observability.RelationChanges.WithLabelValues(string(kind), "add", observability.Outcome(err)).Inc()
	return recipe, err
}

func (s *RelationService) add(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*models.Recipe, error) {
	if !kind.Valid() {
		return nil, models.NewValidationError("Unknown relation kind")
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}
	if _, err := s.relations.Add(ctx, kind, userID, recipeID); err != nil {
		return nil, err
	}
	cache.InvalidateRecipe(ctx, recipeID)
	return recipe, nil
}

// Remove unlinks the recipe. Unknown recipes and absent relations are NOT_FOUND.
func (s *RelationService) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error {
	err := s.remove(ctx, kind, userID, recipeID)
	observability.RelationChanges.WithLabelValues(string(kind), "remove", observability.Outcome(err)).Inc()
	return err
}

func (s *RelationService) remove(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error {
	if !kind.Valid() {
		return models.NewValidationError("Unknown relation kind")
	}
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Recipe", recipeID)
	}
	if err := s.relations.Remove(ctx, kind, userID, recipeID); err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, recipeID)
	return nil
}
