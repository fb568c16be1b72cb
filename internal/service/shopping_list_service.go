package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// ShoppingListService aggregates a user's cart into ingredient totals.
type ShoppingListService struct {
	relations repository.RelationRepository
	users     repository.UserRepository
	now       func() time.Time
}

func NewShoppingListService(relations repository.RelationRepository, users repository.UserRepository) *ShoppingListService {
	return &ShoppingListService{relations: relations, users: users, now: time.Now}
}

// Build sums line amounts over every recipe in the user's cart, merged by
// (ingredient name, unit), and lists the carted recipes with their authors.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) (*models.ShoppingList, error) {
	ctx, span := observability.StartSpan(ctx, "service", "ShoppingListService.Build")
	list, err := s.build(ctx, userID)
	observability.EndSpan(span, err)
	return list, err
}

func (s *ShoppingListService) build(ctx context.Context, userID uint) (*models.ShoppingList, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.relations.CartIngredientTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.relations.CartRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.ShoppingList{
		Username:         user.Username,
		GeneratedAt:      s.now(),
		IngredientTotals: totals,
		Recipes:          recipes,
	}, nil
}

// Download builds the list and renders it as plain text.
func (s *ShoppingListService) Download(ctx context.Context, userID uint) (string, error) {
	list, err := s.Build(ctx, userID)
	if err != nil {
		return "", err
	}
	observability.ShoppingListDownloads.Inc()
	return RenderShoppingList(list), nil
}

// RenderShoppingList formats a list as the downloadable text document.
func RenderShoppingList(list *models.ShoppingList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\n", list.Username)
	fmt.Fprintf(&b, "Generated: %s\n\n", list.GeneratedAt.Format("02.01.2006 15:04"))

	b.WriteString("Products:\n")
	if len(list.IngredientTotals) == 0 {
		b.WriteString("(empty)\n")
	}
	for i, t := range list.IngredientTotals {
		fmt.Fprintf(&b, "%d. %s (%s) - %d\n", i+1, capitalize(t.Name), t.MeasurementUnit, t.TotalAmount)
	}

	b.WriteString("\nRecipes:\n")
	for i, r := range list.Recipes {
		fmt.Fprintf(&b, "%d. %s (author: %s)\n", i+1, r.Name, r.AuthorUsername)
	}
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
