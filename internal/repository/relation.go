package repository

import (
	"context"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationRepository stores favorite and shopping cart links between users
// and recipes, and aggregates a user's cart.
type RelationRepository interface {
	Add(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*models.RecipeRelation, error)
	Remove(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error
	Exists(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (bool, error)
	CartIngredientTotals(ctx context.Context, userID uint) ([]models.IngredientTotal, error)
	CartRecipes(ctx context.Context, userID uint) ([]models.CartRecipe, error)
}

type relationRepository struct {
	db *gorm.DB
}

// NewRelationRepository returns a new RelationRepository implementation.
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

// Add links the user to the recipe. The unique index on (kind, user, recipe)
// arbitrates races: a conflicting insert affects no rows and reports ALREADY_EXISTS.
func (r *relationRepository) Add(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (*models.RecipeRelation, error) {
	defer observability.TrackQuery("insert", "recipe_relations")()

	rel := &models.RecipeRelation{Kind: kind, UserID: userID, RecipeID: recipeID}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}, {Name: "user_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(rel)
	if res.Error != nil {
		switch {
		case isUniqueConstraintError(res.Error):
			return nil, alreadyRelated(kind)
		case isForeignKeyError(res.Error):
			return nil, models.NewNotFoundError("Recipe", recipeID)
		default:
			return nil, models.NewInternalError(res.Error)
		}
	}
	if res.RowsAffected == 0 {
		return nil, alreadyRelated(kind)
	}
	return rel, nil
}

func alreadyRelated(kind models.RelationKind) error {
	return models.NewAlreadyExistsError(fmt.Sprintf("Recipe is already in %s", kind.Label()))
}

// Remove deletes the link. Deleting a link that does not exist reports NOT_FOUND.
func (r *relationRepository) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID uint) error {
	defer observability.TrackQuery("delete", "recipe_relations")()

	res := r.db.WithContext(ctx).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", kind, userID, recipeID).
		Delete(&models.RecipeRelation{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessage(fmt.Sprintf("Recipe is not in %s", kind.Label()))
	}
	return nil
}

func (r *relationRepository) Exists(ctx context.Context, kind models.RelationKind, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RecipeRelation{}).
		Where("kind = ? AND user_id = ? AND recipe_id = ?", kind, userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// CartIngredientTotals sums line amounts over every recipe in the user's cart,
// grouped by (ingredient name, unit) and ordered by name.
func (r *relationRepository) CartIngredientTotals(ctx context.Context, userID uint) ([]models.IngredientTotal, error) {
	defer observability.TrackQuery("aggregate", "recipe_ingredients")()

	var totals []models.IngredientTotal
	err := r.db.WithContext(ctx).
		Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total_amount").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Joins("JOIN recipe_relations rr ON rr.recipe_id = ri.recipe_id").
		Where("rr.user_id = ? AND rr.kind = ?", userID, models.RelationShoppingCart).
		Group("i.name, i.measurement_unit").
		Order("LOWER(i.name) ASC").
		Order("i.measurement_unit ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return totals, nil
}

// CartRecipes lists the carted recipes with their authors, ordered by recipe name.
func (r *relationRepository) CartRecipes(ctx context.Context, userID uint) ([]models.CartRecipe, error) {
	var recipes []models.CartRecipe
	err := r.db.WithContext(ctx).
		Table("recipes AS rc").
		Select("rc.name AS name, u.username AS author_username").
		Joins("JOIN recipe_relations rr ON rr.recipe_id = rc.id").
		Joins("JOIN users u ON u.id = rc.author_id").
		Where("rr.user_id = ? AND rr.kind = ?", userID, models.RelationShoppingCart).
		Order("rc.name ASC").
		Order("rc.id ASC").
		Scan(&recipes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}
