package main

import (
	"context"
	"log/slog"

	"foodgram/internal/middleware"
	"foodgram/internal/repository"
	"foodgram/internal/seed"
	"foodgram/internal/service"

	"gorm.io/gorm"
)

func importFixture(ctx context.Context, db *gorm.DB, path string) error {
	items, err := seed.LoadIngredientsFile(path)
	if err != nil {
		return err
	}
	res, err := service.NewIngredientService(repository.NewIngredientRepository(db)).Import(ctx, items)
	if err != nil {
		return err
	}
	middleware.Logger.Info("ingredient fixture imported",
		slog.String("file", path),
		slog.Int64("inserted", res.Inserted),
	)
	return nil
}
