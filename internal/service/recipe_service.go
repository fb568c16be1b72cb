package service

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/cache"
	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// IngredientAmountInput is one submitted recipe line.
type IngredientAmountInput struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"gte=1,lte=32000"`
}

// RecipeInput is the body of POST /api/recipes/.
type RecipeInput struct {
	Ingredients []IngredientAmountInput `json:"ingredients"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	CookingTime int                     `json:"cooking_time"`
}

// RecipePatch is the body of PATCH /api/recipes/{id}/. Nil fields keep
// their stored value; a nil ingredient list keeps the stored lines.
type RecipePatch struct {
	Ingredients *[]IngredientAmountInput `json:"ingredients"`
	Image       *string                  `json:"image"`
	Name        *string                  `json:"name"`
	Text        *string                  `json:"text"`
	CookingTime *int                     `json:"cooking_time"`
}

// recipeDraft is the fully merged state checked before any write.
type recipeDraft struct {
	Ingredients []IngredientAmountInput `json:"ingredients" validate:"required,min=1,dive"`
	Name        string                  `json:"name" validate:"required,max=200"`
	Text        string                  `json:"text" validate:"required"`
	CookingTime int                     `json:"cooking_time" validate:"gte=1,lte=525600"`
}

// RecipeQuery selects a page of recipes. Favorited and InCart only apply
// to an authenticated viewer.
type RecipeQuery struct {
	AuthorID  uint
	Favorited bool
	InCart    bool
	Name      string
	Limit     int
	Offset    int
}

// RecipeService builds recipe aggregates: validation, image storage,
// atomic persistence of the recipe with its lines, and read projection.
type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
	subRepo        repository.SubscriptionRepository
	images         *ImageService
	flags          *featureflags.Manager
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	subRepo repository.SubscriptionRepository,
	images *ImageService,
	flags *featureflags.Manager,
) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		subRepo:        subRepo,
		images:         images,
		flags:          flags,
	}
}

// Create validates the input, stores the image and persists the recipe with
// its lines in one transaction. The result is read back as authorID sees it.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	ctx, span := observability.StartSpan(ctx, "service", "RecipeService.Create", attribute.Int64("user.id", int64(authorID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	draft := recipeDraft{
		Ingredients: in.Ingredients,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}
	var pre *models.AppError
	if in.Image == "" {
		pre = models.NewFieldValidationError("image", "This field is required.")
	}
	if err = s.validateDraft(ctx, draft, pre); err != nil {
		return nil, err
	}

	var key string
	key, err = s.images.SaveDataURI(ctx, ImageKindRecipe, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        draft.Name,
		Text:        draft.Text,
		Image:       key,
		CookingTime: draft.CookingTime,
		Lines:       toLines(draft.Ingredients),
	}
	if err = s.recipeRepo.Create(ctx, recipe); err != nil {
		s.images.Delete(ctx, key)
		return nil, err
	}

	var out *models.Recipe
	out, err = s.Get(ctx, recipe.ID, authorID)
	return out, err
}

// Update applies patch to a recipe owned by actorID. A submitted ingredient
// list replaces the stored lines as a whole; an omitted one keeps them.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uint, patch RecipePatch) (*models.Recipe, error) {
	ctx, span := observability.StartSpan(ctx, "service", "RecipeService.Update", attribute.Int64("recipe.id", int64(recipeID)))
	var err error
	defer func() { observability.EndSpan(span, err) }()

	var current *models.Recipe
	current, err = s.recipeRepo.GetByID(ctx, recipeID, 0)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != actorID {
		err = models.NewPermissionDeniedError("You do not have permission to perform this action.")
		return nil, err
	}

	draft := recipeDraft{
		Name:        current.Name,
		Text:        current.Text,
		CookingTime: current.CookingTime,
	}
	replaceLines := patch.Ingredients != nil
	if replaceLines {
		draft.Ingredients = *patch.Ingredients
	} else {
		for _, l := range current.Lines {
			draft.Ingredients = append(draft.Ingredients, IngredientAmountInput{ID: l.IngredientID, Amount: l.Amount})
		}
	}
	if patch.Name != nil {
		draft.Name = *patch.Name
	}
	if patch.Text != nil {
		draft.Text = *patch.Text
	}
	if patch.CookingTime != nil {
		draft.CookingTime = *patch.CookingTime
	}

	var pre *models.AppError
	if patch.Image != nil && *patch.Image == "" {
		pre = models.NewFieldValidationError("image", "This field may not be blank.")
	}
	if err = s.validateDraft(ctx, draft, pre); err != nil {
		return nil, err
	}

	imageKey := current.Image
	if patch.Image != nil {
		imageKey, err = s.images.SaveDataURI(ctx, ImageKindRecipe, *patch.Image)
		if err != nil {
			return nil, err
		}
	}

	fields := repository.RecipeFields{
		Name:        draft.Name,
		Text:        draft.Text,
		Image:       imageKey,
		CookingTime: draft.CookingTime,
	}
	if err = s.recipeRepo.Update(ctx, recipeID, fields, toLines(draft.Ingredients), replaceLines); err != nil {
		if imageKey != current.Image {
			s.images.Delete(ctx, imageKey)
		}
		return nil, err
	}
	if imageKey != current.Image {
		s.images.Delete(ctx, current.Image)
	}
	cache.InvalidateRecipe(ctx, recipeID)

	var out *models.Recipe
	out, err = s.Get(ctx, recipeID, actorID)
	return out, err
}

// Delete removes a recipe owned by actorID together with its lines and
// relations, then drops its image.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uint) error {
	current, err := s.recipeRepo.GetByID(ctx, recipeID, 0)
	if err != nil {
		return err
	}
	if current.AuthorID != actorID {
		return models.NewPermissionDeniedError("You do not have permission to perform this action.")
	}
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, recipeID)
	cache.Invalidate(ctx, cache.ShortLinkKey(EncodeToken(recipeID)))
	s.images.Delete(ctx, current.Image)
	return nil
}

// Get returns the recipe aggregate as viewerID sees it. Anonymous reads go
// through the Redis cache when the recipe_cache flag is on.
func (s *RecipeService) Get(ctx context.Context, recipeID, viewerID uint) (*models.Recipe, error) {
	if viewerID != 0 || !s.flags.EnabledGlobally(featureflags.RecipeCache) {
		recipe, err := s.recipeRepo.GetByID(ctx, recipeID, viewerID)
		if err != nil {
			return nil, err
		}
		one := []models.Recipe{*recipe}
		if err := s.markAuthors(ctx, viewerID, one); err != nil {
			return nil, err
		}
		return &one[0], nil
	}

	var recipe models.Recipe
	missed := false
	err := cache.Aside(ctx, cache.RecipeKey(recipeID), &recipe, cache.RecipeTTL, func() error {
		missed = true
		fetched, err := s.recipeRepo.GetByID(ctx, recipeID, 0)
		if err != nil {
			return err
		}
		recipe = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	result := "hit"
	if missed {
		result = "miss"
	}
	observability.CacheLookups.WithLabelValues("recipe", result).Inc()
	return &recipe, nil
}

// List returns one page of recipes plus the filtered total.
func (s *RecipeService) List(ctx context.Context, viewerID uint, q RecipeQuery) ([]models.Recipe, int64, error) {
	filter := repository.RecipeFilter{AuthorID: q.AuthorID, Name: q.Name}
	if viewerID != 0 {
		if q.Favorited {
			filter.FavoritedBy = viewerID
		}
		if q.InCart {
			filter.InCartOf = viewerID
		}
	}

	recipes, total, err := s.recipeRepo.List(ctx, filter, q.Limit, q.Offset, viewerID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.markAuthors(ctx, viewerID, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ImageURL maps a stored image key to its public URL.
func (s *RecipeService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.images.URL(key)
}

// validateDraft runs the struct rules, then the duplicate and existence
// checks on ingredient ids. pre carries field errors found by the caller.
func (s *RecipeService) validateDraft(ctx context.Context, draft recipeDraft, pre *models.AppError) error {
	appErr := pre
	if err := validation.Struct(&draft); err != nil {
		var fieldErr *models.AppError
		if !errors.As(err, &fieldErr) {
			return err
		}
		if appErr == nil {
			appErr = fieldErr
		} else {
			for field, msgs := range fieldErr.Fields {
				for _, msg := range msgs {
					appErr.AddField(field, msg)
				}
			}
		}
	}
	if appErr != nil {
		return appErr
	}

	seen := make(map[uint]struct{}, len(draft.Ingredients))
	ids := make([]uint, 0, len(draft.Ingredients))
	for _, in := range draft.Ingredients {
		if _, dup := seen[in.ID]; dup {
			return models.NewFieldValidationError("ingredients", "Ingredients must not repeat.")
		}
		seen[in.ID] = struct{}{}
		ids = append(ids, in.ID)
	}

	found, err := s.ingredientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		known := make(map[uint]struct{}, len(found))
		for _, ing := range found {
			known[ing.ID] = struct{}{}
		}
		appErr := models.NewValidationError("Validation failed")
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				appErr.AddField("ingredients", fmt.Sprintf("Ingredient with id %d does not exist.", id))
			}
		}
		return appErr
	}
	return nil
}

// markAuthors sets Author.IsSubscribed for the viewer.
func (s *RecipeService) markAuthors(ctx context.Context, viewerID uint, recipes []models.Recipe) error {
	if viewerID == 0 || len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.AuthorID)
	}
	followed, err := s.subRepo.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for i := range recipes {
		recipes[i].Author.IsSubscribed = followed[recipes[i].AuthorID]
	}
	return nil
}

func toLines(in []IngredientAmountInput) []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, 0, len(in))
	for _, l := range in {
		lines = append(lines, models.RecipeIngredient{IngredientID: l.ID, Amount: l.Amount})
	}
	return lines
}
