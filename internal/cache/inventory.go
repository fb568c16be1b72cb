package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	RecipeKeyPrefix    = "recipe:%d"
	ShortLinkKeyPrefix = "shortlink:%s"
	IngredientKey      = "ingredients:all"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	RecipeTTL     = 10 * time.Minute
	ShortLinkTTL  = 24 * time.Hour
	IngredientTTL = 30 * time.Minute
)

// RecipeKey addresses the viewer-independent part of a recipe aggregate.
func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

func ShortLinkKey(token string) string {
	return fmt.Sprintf(ShortLinkKeyPrefix, token)
}

// Invalidate deletes key. A missing client is a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID))
}

// RevokeToken blacklists a token id until ttl elapses.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, fmt.Sprintf(BlacklistKeyPrefix, jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was blacklisted. Without Redis nothing is revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, fmt.Sprintf(BlacklistKeyPrefix, jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
