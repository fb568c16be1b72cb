package repository

import (
	"context"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
	Name        string
}

// RecipeFields are the scalar columns a recipe update may change.
type RecipeFields struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
}

// RecipeRepository persists recipe aggregates (a recipe and its ingredient lines).
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, id uint, fields RecipeFields, lines []models.RecipeIngredient, replaceLines bool) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter RecipeFilter, limit, offset int, viewerID uint) ([]models.Recipe, int64, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe and its lines in one transaction. recipe.Lines
// must carry IngredientID and Amount; RecipeID is filled in here.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "recipes")
	defer observability.TrackQuery("insert", "recipes")()

	lines := recipe.Lines
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return insertLines(tx, recipe.ID, lines)
	})
	recipe.Lines = lines
	err = translateRecipeWriteError(err)
	observability.EndSpan(span, err)
	return err
}

// Update writes the scalar fields and, when replaceLines is set, swaps the
// entire line set for lines. Both happen in one transaction.
func (r *recipeRepository) Update(ctx context.Context, id uint, fields RecipeFields, lines []models.RecipeIngredient, replaceLines bool) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", "recipes")
	defer observability.TrackQuery("update", "recipes")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]any{
			"name":         fields.Name,
			"text":         fields.Text,
			"image":        fields.Image,
			"cooking_time": fields.CookingTime,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		if !replaceLines {
			return nil
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertLines(tx, id, lines)
	})
	err = translateRecipeWriteError(err)
	observability.EndSpan(span, err)
	return err
}

func insertLines(tx *gorm.DB, recipeID uint, lines []models.RecipeIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].RecipeID = recipeID
	}
	return tx.Omit(clause.Associations).Create(&lines).Error
}

func translateRecipeWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case models.ErrorCode(err) != "":
		return err
	case isUniqueConstraintError(err):
		return models.NewFieldValidationError("ingredients", "Ingredients must not repeat.")
	case isForeignKeyError(err):
		return models.NewFieldValidationError("ingredients", "Unknown ingredient.")
	case isCheckConstraintError(err):
		return models.NewValidationError("Recipe violates a value constraint")
	default:
		return models.NewInternalError(err)
	}
}

// Delete removes the recipe with its lines and every relation pointing at it.
func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "recipes")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
	if err != nil && models.ErrorCode(err) == "" {
		return models.NewInternalError(err)
	}
	return err
}

// GetByID loads the full aggregate: author, lines with ingredients, and the
// viewer's favorite/cart flags (false for viewerID 0).
func (r *recipeRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Recipe, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "recipes")
	defer observability.TrackQuery("select", "recipes")()

	var recipe models.Recipe
	err := r.preloadAggregate(r.applyViewerFlags(r.db.WithContext(ctx), viewerID)).
		Where("recipes.id = ?", id).
		First(&recipe).Error
	if err != nil {
		err = notFoundOrInternal(err, "Recipe", id)
		observability.EndSpan(span, err)
		return nil, err
	}
	observability.EndSpan(span, nil)
	return &recipe, nil
}

func (r *recipeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns one page of recipes, newest first, plus the filtered total.
func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, limit, offset int, viewerID uint) ([]models.Recipe, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "recipes")
	defer observability.TrackQuery("select", "recipes")()

	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Recipe{}), filter).Count(&total).Error; err != nil {
		err = models.NewInternalError(err)
		observability.EndSpan(span, err)
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := r.preloadAggregate(r.applyViewerFlags(r.applyFilter(r.db.WithContext(ctx), filter), viewerID)).
		Order("recipes.pub_date DESC").
		Order("recipes.name ASC").
		Order("recipes.id DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&recipes).Error
	if err != nil {
		err = models.NewInternalError(err)
		observability.EndSpan(span, err)
		return nil, 0, err
	}
	observability.EndSpan(span, nil)
	return recipes, total, nil
}

// ListByAuthors returns each author's recipes, newest first, keyed by author
// id and capped at limit per author in one query. A non-positive limit keeps
// all of them. Authors without recipes are absent from the map.
func (r *recipeRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]models.Recipe, error) {
	out := make(map[uint][]models.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	defer observability.TrackQuery("select", "recipes")()

	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("author_id ASC").
		Order("pub_date DESC").
		Order("name ASC").
		Order("id DESC").
		Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, recipe := range recipes {
		if limit > 0 && len(out[recipe.AuthorID]) >= limit {
			continue
		}
		out[recipe.AuthorID] = append(out[recipe.AuthorID], recipe)
	}
	return out, nil
}

// CountByAuthors returns recipe counts keyed by author id. Authors without
// recipes are absent from the map.
func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.AuthorID] = row.Total
	}
	return out, nil
}

func (r *recipeRepository) applyFilter(db *gorm.DB, f RecipeFilter) *gorm.DB {
	if f.AuthorID != 0 {
		db = db.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		db = db.Where(relationExistsSQL, models.RelationFavorite, f.FavoritedBy)
	}
	if f.InCartOf != 0 {
		db = db.Where(relationExistsSQL, models.RelationShoppingCart, f.InCartOf)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		db = db.Where("LOWER(recipes.name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(name))+"%")
	}
	return db
}

const relationExistsSQL = "EXISTS (SELECT 1 FROM recipe_relations rr WHERE rr.recipe_id = recipes.id AND rr.kind = ? AND rr.user_id = ?)"

func (r *recipeRepository) applyViewerFlags(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID == 0 {
		return db.Select("recipes.*, false AS is_favorited, false AS is_in_shopping_cart")
	}
	return db.Select(
		"recipes.*, "+relationExistsSQL+" AS is_favorited, "+relationExistsSQL+" AS is_in_shopping_cart",
		models.RelationFavorite, viewerID,
		models.RelationShoppingCart, viewerID,
	)
}

func (r *recipeRepository) preloadAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id ASC")
		}).
		Preload("Lines.Ingredient")
}
