package service

import (
	"context"
	"errors"
	"testing"

	"foodgram/internal/models"
	"foodgram/internal/repository"

	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	updateAvatarFn   func(context.Context, uint, string) error
	listFn           func(context.Context, int, int) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	return s.updateAvatarFn(ctx, id, avatar)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn:     func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:  func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:         func(context.Context, *models.User) error { return nil },
		updatePasswordFn: func(context.Context, uint, string) error { return nil },
		updateAvatarFn:   func(context.Context, uint, string) error { return nil },
		listFn:           func(context.Context, int, int) ([]models.User, int64, error) { return nil, 0, nil },
	}
}

type subRepoStub struct {
	createFn       func(context.Context, uint, uint) error
	deleteFn       func(context.Context, uint, uint) error
	subscribedToFn func(context.Context, uint, []uint) (map[uint]bool, error)
	listAuthorsFn  func(context.Context, uint, int, int) ([]models.User, int64, error)
}

func (s *subRepoStub) Create(ctx context.Context, userID, authorID uint) error {
	return s.createFn(ctx, userID, authorID)
}
func (s *subRepoStub) Delete(ctx context.Context, userID, authorID uint) error {
	return s.deleteFn(ctx, userID, authorID)
}
func (s *subRepoStub) SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	return s.subscribedToFn(ctx, userID, authorIDs)
}
func (s *subRepoStub) ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	return s.listAuthorsFn(ctx, userID, limit, offset)
}

func noopSubRepo() *subRepoStub {
	return &subRepoStub{
		createFn: func(context.Context, uint, uint) error { return nil },
		deleteFn: func(context.Context, uint, uint) error { return nil },
		subscribedToFn: func(context.Context, uint, []uint) (map[uint]bool, error) {
			return map[uint]bool{}, nil
		},
		listAuthorsFn: func(context.Context, uint, int, int) ([]models.User, int64, error) { return nil, 0, nil },
	}
}

type recipeRepoStub struct {
	createFn         func(context.Context, *models.Recipe) error
	updateFn         func(context.Context, uint, repository.RecipeFields, []models.RecipeIngredient, bool) error
	deleteFn         func(context.Context, uint) error
	getByIDFn        func(context.Context, uint, uint) (*models.Recipe, error)
	existsFn         func(context.Context, uint) (bool, error)
	listFn           func(context.Context, repository.RecipeFilter, int, int, uint) ([]models.Recipe, int64, error)
	listByAuthorsFn  func(context.Context, []uint, int) (map[uint][]models.Recipe, error)
	countByAuthorsFn func(context.Context, []uint) (map[uint]int64, error)
}

func (s *recipeRepoStub) Create(ctx context.Context, r *models.Recipe) error {
	return s.createFn(ctx, r)
}
func (s *recipeRepoStub) Update(ctx context.Context, id uint, f repository.RecipeFields, lines []models.RecipeIngredient, replace bool) error {
	return s.updateFn(ctx, id, f, lines, replace)
}
func (s *recipeRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *recipeRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *recipeRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *recipeRepoStub) List(ctx context.Context, f repository.RecipeFilter, limit, offset int, viewerID uint) ([]models.Recipe, int64, error) {
	return s.listFn(ctx, f, limit, offset, viewerID)
}
func (s *recipeRepoStub) ListByAuthors(ctx context.Context, ids []uint, limit int) (map[uint][]models.Recipe, error) {
	return s.listByAuthorsFn(ctx, ids, limit)
}
func (s *recipeRepoStub) CountByAuthors(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countByAuthorsFn(ctx, ids)
}

func noopRecipeRepo() *recipeRepoStub {
	return &recipeRepoStub{
		createFn: func(_ context.Context, r *models.Recipe) error { r.ID = 1; return nil },
		updateFn: func(context.Context, uint, repository.RecipeFields, []models.RecipeIngredient, bool) error {
			return nil
		},
		deleteFn: func(context.Context, uint) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Recipe, error) {
			return &models.Recipe{ID: id, AuthorID: 1, Name: "Soup", Text: "t", Image: "recipes/a.png", CookingTime: 10}, nil
		},
		existsFn: func(context.Context, uint) (bool, error) { return true, nil },
		listFn: func(context.Context, repository.RecipeFilter, int, int, uint) ([]models.Recipe, int64, error) {
			return nil, 0, nil
		},
		listByAuthorsFn: func(context.Context, []uint, int) (map[uint][]models.Recipe, error) {
			return map[uint][]models.Recipe{}, nil
		},
		countByAuthorsFn: func(context.Context, []uint) (map[uint]int64, error) {
			return map[uint]int64{}, nil
		},
	}
}

type ingredientRepoStub struct {
	known    map[uint]models.Ingredient
	inserted []models.Ingredient
}

func newIngredientRepoStub(items ...models.Ingredient) *ingredientRepoStub {
	s := &ingredientRepoStub{known: make(map[uint]models.Ingredient)}
	for _, it := range items {
		s.known[it.ID] = it
	}
	return s
}

func (s *ingredientRepoStub) List(context.Context, string) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(s.known))
	for _, it := range s.known {
		out = append(out, it)
	}
	return out, nil
}
func (s *ingredientRepoStub) GetByID(_ context.Context, id uint) (*models.Ingredient, error) {
	it, ok := s.known[id]
	if !ok {
		return nil, models.NewNotFoundError("Ingredient", id)
	}
	return &it, nil
}
func (s *ingredientRepoStub) FindByIDs(_ context.Context, ids []uint) ([]models.Ingredient, error) {
	var out []models.Ingredient
	for _, id := range ids {
		if it, ok := s.known[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}
func (s *ingredientRepoStub) InsertIgnoringDuplicates(_ context.Context, items []models.Ingredient) (int64, error) {
	s.inserted = append(s.inserted, items...)
	return int64(len(items)), nil
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %#v", err)
	require.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
	return appErr
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertCode(t, err, models.CodeValidation)
	if field != "" {
		require.Contains(t, appErr.Fields, field)
	}
}
