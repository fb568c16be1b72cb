package service

import (
	"context"
	"strings"

	"foodgram/internal/cache"
	"foodgram/internal/models"
	"foodgram/internal/repository"
)

type IngredientService struct {
	repo repository.IngredientRepository
}

func NewIngredientService(repo repository.IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

// List returns ingredients ordered by name. The unfiltered catalogue is
// served from Redis when available.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var items []models.Ingredient
	var err error
	if strings.TrimSpace(namePrefix) != "" {
		items, err = s.repo.List(ctx, namePrefix)
	} else {
		err = cache.Aside(ctx, cache.IngredientKey, &items, cache.IngredientTTL, func() error {
			var err error
			items, err = s.repo.List(ctx, "")
			return err
		})
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Ingredient{}
	}
	return items, nil
}

func (s *IngredientService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.repo.GetByID(ctx, id)
}

// ImportResult reports what an ingredient import did.
type ImportResult struct {
	Received int
	Skipped  int
	Inserted int64
}

// Import trims names and units, skips blank rows and in-batch duplicates,
// and inserts the rest, ignoring pairs that already exist.
func (s *IngredientService) Import(ctx context.Context, items []models.Ingredient) (ImportResult, error) {
	res := ImportResult{Received: len(items)}

	type pair struct{ name, unit string }
	seen := make(map[pair]struct{}, len(items))
	clean := make([]models.Ingredient, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		unit := strings.TrimSpace(it.MeasurementUnit)
		if name == "" || unit == "" || len(name) > 200 || len(unit) > 200 {
			res.Skipped++
			continue
		}
		key := pair{name, unit}
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, models.Ingredient{Name: name, MeasurementUnit: unit})
	}

	inserted, err := s.repo.InsertIgnoringDuplicates(ctx, clean)
	if err != nil {
		return res, err
	}
	res.Inserted = inserted
	if inserted > 0 {
		cache.Invalidate(ctx, cache.IngredientKey)
	}
	return res, nil
}
