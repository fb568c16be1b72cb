package service

import (
	"context"
	"errors"

	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// ErrNotSubscribed marks the NOT_FOUND returned when unsubscribing from an
// author the user does not follow.
var ErrNotSubscribed = errors.New("subscription does not exist")

type SubscriptionService struct {
	subs    repository.SubscriptionRepository
	users   repository.UserRepository
	recipes repository.RecipeRepository
}

func NewSubscriptionService(subs repository.SubscriptionRepository, users repository.UserRepository, recipes repository.RecipeRepository) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, recipes: recipes}
}

// Subscribe makes userID follow authorID and returns the author with up to
// recipesLimit recipes (all when recipesLimit <= 0).
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.AuthorWithRecipes, error) {
	out, err := s.subscribe(ctx, userID, authorID, recipesLimit)
	observability.SubscriptionChanges.WithLabelValues("subscribe", observability.Outcome(err)).Inc()
	return out, err
}

func (s *SubscriptionService) subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.AuthorWithRecipes, error) {
	if userID == authorID {
		return nil, models.NewSelfSubscriptionError()
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.subs.Create(ctx, userID, authorID); err != nil {
		return nil, err
	}

	author.IsSubscribed = true
	authors, err := s.withRecipes(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &authors[0], nil
}

// Unsubscribe removes the subscription. An unknown author is NOT_FOUND; an
// absent subscription is NOT_FOUND wrapping ErrNotSubscribed.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	err := s.unsubscribe(ctx, userID, authorID)
	observability.SubscriptionChanges.WithLabelValues("unsubscribe", observability.Outcome(err)).Inc()
	return err
}

func (s *SubscriptionService) unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	if err := s.subs.Delete(ctx, userID, authorID); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return &models.AppError{
				Code:    models.CodeNotFound,
				Message: "You are not subscribed to this user",
				Err:     ErrNotSubscribed,
			}
		}
		return err
	}
	return nil
}

// ListSubscriptions returns one page of the authors userID follows, ordered
// by username, each with capped recipes and the full recipe count.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID uint, recipesLimit, limit, offset int) ([]models.AuthorWithRecipes, int64, error) {
	authors, total, err := s.subs.ListAuthors(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range authors {
		authors[i].IsSubscribed = true
	}
	out, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SubscriptionService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]models.AuthorWithRecipes, error) {
	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	byAuthor, err := s.recipes.ListByAuthors(ctx, ids, recipesLimit)
	if err != nil {
		return nil, err
	}

	out := make([]models.AuthorWithRecipes, 0, len(authors))
	for _, a := range authors {
		out = append(out, models.AuthorWithRecipes{
			User:         a,
			Recipes:      byAuthor[a.ID],
			RecipesCount: counts[a.ID],
		})
	}
	return out, nil
}
