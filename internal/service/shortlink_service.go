package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"foodgram/internal/cache"
	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

const shortLinkBase = 36

// ShortLinkService maps recipes to compact tokens and back. The token is
// the recipe id in base 36, so no mapping table exists.
type ShortLinkService struct {
	recipes repository.RecipeRepository
	flags   *featureflags.Manager
}

func NewShortLinkService(recipes repository.RecipeRepository, flags *featureflags.Manager) *ShortLinkService {
	return &ShortLinkService{recipes: recipes, flags: flags}
}

// EncodeToken returns the token for a recipe id.
func EncodeToken(recipeID uint) string {
	return strconv.FormatUint(uint64(recipeID), shortLinkBase)
}

// DecodeToken parses a token back into a recipe id.
func DecodeToken(token string) (uint, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || len(token) > 13 {
		return 0, false
	}
	id, err := strconv.ParseUint(token, shortLinkBase, 64)
	if err != nil || id == 0 || uint64(uint(id)) != id {
		return 0, false
	}
	return uint(id), true
}

// Token returns the short token for an existing recipe.
func (s *ShortLinkService) Token(ctx context.Context, recipeID uint) (string, error) {
	exists, err := s.recipes.Exists(ctx, recipeID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", models.NewNotFoundError("Recipe", recipeID)
	}
	return EncodeToken(recipeID), nil
}

// Resolve returns the detail path for token, or NOT_FOUND when the token is
// malformed or the recipe does not exist.
func (s *ShortLinkService) Resolve(ctx context.Context, token string) (string, error) {
	id, ok := DecodeToken(token)
	if !ok {
		return "", models.NewNotFoundMessage("Short link not found")
	}

	exists, err := s.exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", models.NewNotFoundMessage("Short link not found")
	}
	return fmt.Sprintf("/recipes/%d/", id), nil
}

// exists consults the short-link cache first when enabled. Only positive
// answers are cached; deleting a recipe drops its entry.
func (s *ShortLinkService) exists(ctx context.Context, id uint) (bool, error) {
	if !s.flags.EnabledGlobally(featureflags.ShortLinkCache) {
		return s.recipes.Exists(ctx, id)
	}

	key := cache.ShortLinkKey(EncodeToken(id))
	var cached bool
	if found, err := cache.GetJSON(ctx, key, &cached); err == nil && found && cached {
		observability.CacheLookups.WithLabelValues("shortlink", "hit").Inc()
		return true, nil
	}
	observability.CacheLookups.WithLabelValues("shortlink", "miss").Inc()

	exists, err := s.recipes.Exists(ctx, id)
	if err != nil {
		return false, err
	}
	if exists {
		_ = cache.SetJSON(ctx, key, true, cache.ShortLinkTTL)
	}
	return exists, nil
}
