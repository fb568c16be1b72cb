// Command loadingredients imports an ingredient fixture into the catalogue.
// Rows are trimmed, blank rows skipped and existing (name, unit) pairs left
// untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/repository"
	"foodgram/internal/seed"
	"foodgram/internal/service"
)

func main() {
	file := flag.String("file", "data/ingredients.csv", "Fixture path (.json, .csv, .yaml or .yml)")
	flag.Parse()

	if err := run(*file); err != nil {
		log.Fatal(err)
	}
}

func run(path string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	items, err := seed.LoadIngredientsFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	svc := service.NewIngredientService(repository.NewIngredientRepository(db))
	res, err := svc.Import(context.Background(), items)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	middleware.Logger.Info("ingredients loaded",
		slog.String("file", path),
		slog.Int("received", res.Received),
		slog.Int("skipped", res.Skipped),
		slog.Int64("inserted", res.Inserted),
	)
	fmt.Printf("Loaded %d ingredients from %s\n", res.Inserted, path)
	return nil
}
