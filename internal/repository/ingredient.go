package repository

import (
	"context"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository defines read access to the ingredient catalogue and bulk loading.
type IngredientRepository interface {
	List(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	InsertIgnoringDuplicates(ctx context.Context, items []models.Ingredient) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository returns a new IngredientRepository implementation.
func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// List returns ingredients ordered by name, optionally filtered by a
// case-insensitive name prefix.
func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	defer observability.TrackQuery("select", "ingredients")()

	q := r.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(prefix))+"%")
	}

	var items []models.Ingredient
	if err := q.Order("LOWER(name) ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var item models.Ingredient
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOrInternal(err, "Ingredient", id)
	}
	return &item, nil
}

// FindByIDs returns the ingredients that exist among ids. Missing ids are
// simply absent from the result.
func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

// InsertIgnoringDuplicates inserts items, skipping rows whose (name, unit)
// pair already exists. It returns the number of rows actually inserted.
func (r *ingredientRepository) InsertIgnoringDuplicates(ctx context.Context, items []models.Ingredient) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	defer observability.TrackQuery("insert", "ingredients")()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
			DoNothing: true,
		}).
		CreateInBatches(&items, 500)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
